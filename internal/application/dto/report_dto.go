package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockReportRequest filtros de GET /api/reports/stock.
type StockReportRequest struct {
	CategoryID int64 `query:"category_id" validate:"omitempty,gte=0"`
	LowOnly    bool  `query:"low_only"`
}

// StockReportItem fila del reporte de stock.
type StockReportItem struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode"`
	CategoryName string          `json:"category_name"`
	Unit         string          `json:"unit"`
	MinStock     int64           `json:"min_stock"`
	CurrentQty   int64           `json:"current_qty"`
	IsLowStock   bool            `json:"is_low_stock"`
	LastInPrice  decimal.Decimal `json:"last_in_price"`
	Value        decimal.Decimal `json:"value"`
	LastUpdated  time.Time       `json:"last_updated"`
}

// StockReportResponse reporte de stock con totales.
type StockReportResponse struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Items       []StockReportItem `json:"items"`
	TotalItems  int               `json:"total_items"`
	TotalQty    int64             `json:"total_qty"`
	TotalValue  decimal.Decimal   `json:"total_value"`
}

// MovementReportRequest filtros de GET /api/reports/movements (fechas YYYY-MM-DD).
type MovementReportRequest struct {
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Type   string `query:"type" validate:"omitempty,oneof=IN OUT"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING VERIFIED CANCELLED"`
}

// MovementReportItem fila del reporte de movimientos.
type MovementReportItem struct {
	MovementID         int64           `json:"movement_id"`
	Date               time.Time       `json:"date"`
	Type               string          `json:"type"`
	Status             string          `json:"status"`
	PerformedBy        string          `json:"performed_by"`
	FaceEmployee       string          `json:"face_employee"`
	FaceConfidence     *float64        `json:"face_confidence,omitempty"`
	ProductID          int64           `json:"product_id"`
	ProductName        string          `json:"product_name"`
	SKU                string          `json:"sku"`
	Unit               string          `json:"unit"`
	Quantity           int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Total              decimal.Decimal `json:"total"`
	Note               string          `json:"note"`
	ReversedMovementID *int64          `json:"reversed_movement_id,omitempty"`
}

// MovementReportResponse reporte de movimientos del período.
type MovementReportResponse struct {
	From        time.Time            `json:"from"`
	To          time.Time            `json:"to"`
	Type        string               `json:"type,omitempty"`
	Status      string               `json:"status"`
	Items       []MovementReportItem `json:"items"`
	TotalIn     int64                `json:"total_in"`
	TotalOut    int64                `json:"total_out"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
}

// LowStockItem fila del reporte de stock bajo.
type LowStockItem struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	SKU          string `json:"sku"`
	CategoryName string `json:"category_name"`
	Unit         string `json:"unit"`
	MinStock     int64  `json:"min_stock"`
	CurrentQty   int64  `json:"current_qty"`
	Deficit      int64  `json:"deficit"`
}

// LowStockReportResponse reporte de stock bajo.
type LowStockReportResponse struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Items       []LowStockItem `json:"items"`
	Total       int            `json:"total"`
}
