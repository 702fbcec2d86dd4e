package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para reportes y dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// lastInPriceJoin precio unitario de la última entrada VERIFIED del producto (las reversiones no cuentan).
const lastInPriceJoin = `
	LEFT JOIN LATERAL (
	    SELECT i.unit_price
	    FROM movement_items i
	    JOIN movements m ON m.id = i.movement_id
	    WHERE i.product_id = p.id
	      AND m.movement_type = 'IN'
	      AND m.status = 'VERIFIED'
	      AND m.reversed_movement_id IS NULL
	    ORDER BY m.face_verified_at DESC NULLS LAST, m.id DESC
	    LIMIT 1
	) lp ON TRUE`

const stockLevelColumns = `
	p.id, p.name, p.sku, COALESCE(p.barcode, ''), c.name, p.unit, p.min_stock,
	COALESCE(s.current_qty, 0), COALESCE(s.last_updated, p.created_at)`

const stockLevelFrom = `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN stock s ON s.product_id = p.id`

// GetStockReport lista el stock por producto con el valor a precio de última entrada.
func (r *AnalyticsRepo) GetStockReport(ctx context.Context, categoryID int64, lowOnly bool) ([]repository.StockReportRow, error) {
	query := `
	SELECT ` + stockLevelColumns + `,
	       COALESCE(lp.unit_price, 0) AS last_in_price
	` + stockLevelFrom + lastInPriceJoin + `
	WHERE ($1::bigint = 0 OR p.category_id = $1::bigint)
	  AND (NOT $2::boolean OR COALESCE(s.current_qty, 0) <= p.min_stock)
	ORDER BY c.name, p.name`

	rows, err := r.q.Query(ctx, query, categoryID, lowOnly)
	if err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}
	defer rows.Close()

	var out []repository.StockReportRow
	for rows.Next() {
		var row repository.StockReportRow
		l := &row.StockLevel
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.SKU, &l.Barcode, &l.CategoryName, &l.Unit,
			&l.MinStock, &l.CurrentQty, &l.LastUpdated, &row.LastInPrice); err != nil {
			return nil, fmt.Errorf("scan stock report: %w", err)
		}
		row.Value = row.LastInPrice.Mul(decimal.NewFromInt(l.CurrentQty))
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetMovementReport lista una fila por ítem de los movimientos del rango.
func (r *AnalyticsRepo) GetMovementReport(ctx context.Context, from, to time.Time, movementType, status string) ([]repository.MovementReportRow, error) {
	if status == "" {
		status = entity.MovementStatusVerified
	}
	const query = `
	SELECT m.id, m.created_at, m.movement_type, m.status, u.username,
	       COALESCE(e.name, ''), m.face_confidence,
	       p.id, p.name, p.sku, p.unit,
	       i.quantity, i.unit_price, i.quantity * i.unit_price,
	       m.note, m.reversed_movement_id
	FROM movements m
	JOIN movement_items i ON i.movement_id = m.id
	JOIN products p       ON p.id = i.product_id
	JOIN users u          ON u.id = m.performed_by
	LEFT JOIN employees e ON e.id = m.face_employee_id
	WHERE m.created_at BETWEEN $1 AND $2
	  AND ($3::text = '' OR m.movement_type = $3::text)
	  AND m.status = $4
	ORDER BY m.created_at DESC, m.id DESC, i.id`

	rows, err := r.q.Query(ctx, query, from, to, movementType, status)
	if err != nil {
		return nil, fmt.Errorf("movement report: %w", err)
	}
	defer rows.Close()

	var out []repository.MovementReportRow
	for rows.Next() {
		var row repository.MovementReportRow
		if err := rows.Scan(&row.MovementID, &row.Date, &row.Type, &row.Status, &row.PerformedBy,
			&row.FaceEmployee, &row.FaceConfidence,
			&row.ProductID, &row.ProductName, &row.SKU, &row.Unit,
			&row.Quantity, &row.UnitPrice, &row.Total,
			&row.Note, &row.ReversedMovementID); err != nil {
			return nil, fmt.Errorf("scan movement report: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetLowStock lista productos en o por debajo de su stock mínimo, los más críticos primero.
func (r *AnalyticsRepo) GetLowStock(ctx context.Context) ([]entity.StockLevel, error) {
	query := `SELECT ` + stockLevelColumns + stockLevelFrom + `
	WHERE COALESCE(s.current_qty, 0) <= p.min_stock
	ORDER BY COALESCE(s.current_qty, 0) ASC, p.name`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.StockLevel, error) {
		var l entity.StockLevel
		err := row.Scan(&l.ProductID, &l.ProductName, &l.SKU, &l.Barcode, &l.CategoryName, &l.Unit,
			&l.MinStock, &l.CurrentQty, &l.LastUpdated)
		return l, err
	})
}

// GetInventoryCounts contadores generales en una sola consulta.
func (r *AnalyticsRepo) GetInventoryCounts(ctx context.Context) (repository.InventoryCounts, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products),
	    (SELECT COUNT(*) FROM categories),
	    (SELECT COUNT(*) FROM employees WHERE is_active),
	    (SELECT COUNT(*) FROM products p LEFT JOIN stock s ON s.product_id = p.id
	      WHERE COALESCE(s.current_qty, 0) <= p.min_stock),
	    (SELECT COUNT(*) FROM movements WHERE status = 'PENDING')`

	var c repository.InventoryCounts
	if err := r.q.QueryRow(ctx, query).Scan(&c.Products, &c.Categories, &c.ActiveEmployees, &c.LowStock, &c.PendingDrafts); err != nil {
		return c, fmt.Errorf("inventory counts: %w", err)
	}
	return c, nil
}

// GetVerifiedCounts cuenta entradas y salidas VERIFIED del rango.
func (r *AnalyticsRepo) GetVerifiedCounts(ctx context.Context, from, to time.Time) (in, out int, err error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE movement_type = 'IN'),
	    COUNT(*) FILTER (WHERE movement_type = 'OUT')
	FROM movements
	WHERE status = 'VERIFIED' AND created_at BETWEEN $1 AND $2`

	if err = r.q.QueryRow(ctx, query, from, to).Scan(&in, &out); err != nil {
		return 0, 0, fmt.Errorf("verified counts: %w", err)
	}
	return in, out, nil
}

// GetTotalStockValue valor total del inventario a precio de última entrada.
func (r *AnalyticsRepo) GetTotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	query := `
	SELECT COALESCE(SUM(COALESCE(s.current_qty, 0) * COALESCE(lp.unit_price, 0)), 0)
	FROM products p
	LEFT JOIN stock s ON s.product_id = p.id` + lastInPriceJoin

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}
