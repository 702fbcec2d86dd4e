package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		employeeRepo repository.EmployeeRepository,
	) error) error
}

// Clock fuente de tiempo inyectable (tests).
type Clock func() time.Time
