package usecase

import (
	"context"

	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

// CatalogTxRunner ejecuta fn en una transacción con los repositorios de catálogo.
// El alta de producto crea su fila de stock en la misma transacción.
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
	) error) error
}
