package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo de productos. El stock solo cambia vía movimientos.
type ProductUseCase struct {
	txRunner  CatalogTxRunner
	repo      repository.ProductRepository
	stockRepo repository.StockRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner CatalogTxRunner, repo repository.ProductRepository, stockRepo repository.StockRepository) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, stockRepo: stockRepo}
}

// Create crea el producto con UID nuevo y su fila de stock en 0, en una sola transacción.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !actor.Can(entity.CapManageCatalog) {
		return nil, domain.ErrForbidden
	}
	if in.MinStock < 0 || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SKU) == "" {
		return nil, domain.ErrInvalidInput
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}
	now := time.Now()
	product := &entity.Product{
		UID:         uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		SKU:         strings.TrimSpace(in.SKU),
		Barcode:     strings.TrimSpace(in.Barcode),
		CategoryID:  in.CategoryID,
		Unit:        unit,
		MinStock:    in.MinStock,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.RunCatalog(ctx, func(productRepo repository.ProductRepository, stockRepo repository.StockRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		return stockRepo.EnsureExists(ctx, product.ID)
	})
	if err != nil {
		return nil, err
	}
	created, err := uc.repo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = product
	}
	return toProductResponse(created, &entity.Stock{ProductID: product.ID}), nil
}

// GetByID obtiene un producto con su stock actual.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withStock(ctx, product)
}

// Lookup busca un producto por código escaneado: código de barras, UID o SKU.
func (uc *ProductUseCase) Lookup(ctx context.Context, code string) (*dto.ProductResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withStock(ctx, product)
}

// Search lista productos por texto y categoría con paginación.
func (uc *ProductUseCase) Search(ctx context.Context, in dto.ProductSearchRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.Search(ctx, entity.ProductFilter{
		Query:      in.Query,
		CategoryID: in.CategoryID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	stock, err := uc.stockRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, stockOrZero(stock[p.ID], p.ID)))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Update actualiza los campos descriptivos. SKU y UID no se pueden modificar.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !actor.Can(entity.CapManageCatalog) {
		return nil, domain.ErrForbidden
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Barcode != nil {
		product.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.Unit != nil {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.MinStock = *in.MinStock
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Delete elimina un producto que nunca participó en movimientos.
func (uc *ProductUseCase) Delete(ctx context.Context, actor entity.Actor, id int64) error {
	if !actor.Can(entity.CapManageCatalog) {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) withStock(ctx context.Context, p *entity.Product) (*dto.ProductResponse, error) {
	s, err := uc.stockRepo.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p, stockOrZero(s, p.ID)), nil
}

func stockOrZero(s *entity.Stock, productID int64) *entity.Stock {
	if s == nil {
		return &entity.Stock{ProductID: productID}
	}
	return s
}

func toProductResponse(p *entity.Product, s *entity.Stock) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:           p.ID,
		UID:          p.UID,
		Name:         p.Name,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Unit:         p.Unit,
		MinStock:     p.MinStock,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if s != nil {
		qty := s.CurrentQty
		low := s.IsLowStock(p.MinStock)
		resp.CurrentQty = &qty
		resp.IsLowStock = &low
	}
	return resp
}
