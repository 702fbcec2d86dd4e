package repository

import (
	"context"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock (una fila por producto).
// Las escrituras solo ocurren dentro de la transacción del motor.
type StockRepository interface {
	Get(ctx context.Context, productID int64) (*entity.Stock, error)
	// GetMany devuelve el stock de varios productos indexado por ID (los que no tienen fila se omiten).
	GetMany(ctx context.Context, productIDs []int64) (map[int64]*entity.Stock, error)
	// EnsureExists crea la fila con cantidad 0 si no existe.
	EnsureExists(ctx context.Context, productID int64) error
	// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID int64) (*entity.Stock, error)
	SetQuantity(ctx context.Context, productID, qty int64) error
}
