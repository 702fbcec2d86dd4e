package entity

import "time"

// Unidad de medida por defecto.
const DefaultUnit = "dona"

// Product representa un producto del catálogo. Solo los campos descriptivos
// (nombre, descripción, unidad, categoría, código de barras, stock mínimo) son editables.
type Product struct {
	ID          int64
	UID         string // token opaco único (UUID) usado en etiquetas QR
	Name        string
	SKU         string // único
	Barcode     string // único, opcional
	CategoryID  int64
	Unit        string
	MinStock    int64 // umbral de stock bajo, >= 0
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// CategoryName se resuelve en lecturas con JOIN.
	CategoryName string
}

// ProductFilter criterios de búsqueda del catálogo.
type ProductFilter struct {
	Query      string // coincide con nombre, SKU o código de barras
	CategoryID int64
	Limit      int
	Offset     int
}
