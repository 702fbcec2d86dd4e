package repository

import (
	"context"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get* devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetByCode busca por código de barras, UID o SKU (en ese orden).
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Search(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error)
	// Delete devuelve domain.ErrConflict si el producto está referenciado por movimientos.
	Delete(ctx context.Context, id int64) error
}
