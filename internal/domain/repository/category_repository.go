package repository

import (
	"context"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	// Delete devuelve domain.ErrConflict si la categoría tiene productos.
	Delete(ctx context.Context, id int64) error
}
