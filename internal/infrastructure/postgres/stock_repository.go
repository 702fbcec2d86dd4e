package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto; nil si la fila no existe.
func (r *StockRepo) Get(ctx context.Context, productID int64) (*entity.Stock, error) {
	return r.get(ctx, `
		SELECT product_id, current_qty, last_updated
		FROM stock WHERE product_id = $1`, productID)
}

// GetMany obtiene el stock de varios productos en una sola consulta.
func (r *StockRepo) GetMany(ctx context.Context, productIDs []int64) (map[int64]*entity.Stock, error) {
	out := make(map[int64]*entity.Stock, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, current_qty, last_updated
		FROM stock WHERE product_id = ANY($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.CurrentQty, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[s.ProductID] = &s
	}
	return out, rows.Err()
}

// EnsureExists crea la fila con cantidad 0 si no existe (no bloquea filas existentes).
func (r *StockRepo) EnsureExists(ctx context.Context, productID int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, current_qty, last_updated)
		VALUES ($1, 0, now())
		ON CONFLICT (product_id) DO NOTHING`, productID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("ensure stock: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.Stock, error) {
	s, err := r.get(ctx, `
		SELECT product_id, current_qty, last_updated
		FROM stock WHERE product_id = $1
		FOR UPDATE`, productID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("stock del producto %d: %w", productID, domain.ErrNotFound)
	}
	return s, nil
}

// SetQuantity fija la cantidad; la restricción CHECK (current_qty >= 0) respalda al motor.
func (r *StockRepo) SetQuantity(ctx context.Context, productID, qty int64) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock SET current_qty = $2, last_updated = now()
		WHERE product_id = $1`, productID, qty)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("stock del producto %d: %w", productID, domain.ErrNotFound)
	}
	return nil
}

func (r *StockRepo) get(ctx context.Context, query string, productID int64) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.CurrentQty, &s.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}
