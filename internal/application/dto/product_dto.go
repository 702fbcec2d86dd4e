package dto

import "time"

// CreateProductRequest entrada para crear un producto. El stock nace en 0.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	SKU         string `json:"sku" validate:"required,min=1,max=100"`
	Barcode     string `json:"barcode" validate:"omitempty,max=100"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Unit        string `json:"unit" validate:"omitempty,max=20"`
	MinStock    int64  `json:"min_stock" validate:"gte=0"`
	Description string `json:"description"`
}

// UpdateProductRequest solo campos descriptivos; SKU y UID son inmutables.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Barcode     *string `json:"barcode" validate:"omitempty,max=100"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Unit        *string `json:"unit" validate:"omitempty,min=1,max=20"`
	MinStock    *int64  `json:"min_stock" validate:"omitempty,gte=0"`
	Description *string `json:"description"`
}

// ProductSearchRequest filtros de GET /api/products.
type ProductSearchRequest struct {
	PageRequest
	Query      string `query:"q" validate:"omitempty,max=100"`
	CategoryID int64  `query:"category_id" validate:"omitempty,gte=0"`
}

// ProductResponse salida de un producto con su stock actual.
type ProductResponse struct {
	ID           int64     `json:"id"`
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Barcode      string    `json:"barcode"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Unit         string    `json:"unit"`
	MinStock     int64     `json:"min_stock"`
	Description  string    `json:"description"`
	CurrentQty   *int64    `json:"current_qty,omitempty"`
	IsLowStock   *bool     `json:"is_low_stock,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateCategoryRequest entrada para crear/editar una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
