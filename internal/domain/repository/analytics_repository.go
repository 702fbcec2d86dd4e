package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
)

// StockReportRow fila del reporte de stock.
// LastInPrice es el precio del último ítem de una entrada VERIFIED (0 si no hay).
type StockReportRow struct {
	entity.StockLevel
	LastInPrice decimal.Decimal
	Value       decimal.Decimal // CurrentQty * LastInPrice
}

// MovementReportRow fila del reporte de movimientos (una por ítem).
type MovementReportRow struct {
	MovementID         int64
	Date               time.Time
	Type               string
	Status             string
	PerformedBy        string // username
	FaceEmployee       string // nombre del empleado verificado
	FaceConfidence     *float64
	ProductID          int64
	ProductName        string
	SKU                string
	Unit               string
	Quantity           int64
	UnitPrice          decimal.Decimal
	Total              decimal.Decimal
	Note               string
	ReversedMovementID *int64
}

// InventoryCounts contadores generales del dashboard.
type InventoryCounts struct {
	Products        int
	Categories      int
	ActiveEmployees int
	LowStock        int
	PendingDrafts   int
}

// AnalyticsRepository consultas de solo lectura para reportes y dashboard.
// Solo leen datos confirmados: los movimientos PENDING no afectan stock ni totales.
type AnalyticsRepository interface {
	// GetStockReport lista el stock con valor; categoryID 0 = todas.
	GetStockReport(ctx context.Context, categoryID int64, lowOnly bool) ([]StockReportRow, error)

	// GetMovementReport lista los ítems de movimientos en [from, to].
	// movementType vacío = ambos; status vacío = VERIFIED.
	GetMovementReport(ctx context.Context, from, to time.Time, movementType, status string) ([]MovementReportRow, error)

	// GetLowStock lista productos con current_qty <= min_stock ordenados por cantidad.
	GetLowStock(ctx context.Context) ([]entity.StockLevel, error)

	GetInventoryCounts(ctx context.Context) (InventoryCounts, error)

	// GetVerifiedCounts cuenta movimientos VERIFIED por tipo en [from, to].
	GetVerifiedCounts(ctx context.Context, from, to time.Time) (in, out int, err error)

	// GetTotalStockValue suma current_qty * precio de la última entrada VERIFIED.
	GetTotalStockValue(ctx context.Context) (decimal.Decimal, error)
}
