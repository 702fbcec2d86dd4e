package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	TotalProducts   int `json:"total_products"`
	TotalCategories int `json:"total_categories"`
	ActiveEmployees int `json:"active_employees"`
	LowStockCount   int `json:"low_stock_count"`
	PendingDrafts   int `json:"pending_drafts"`

	// Movimientos VERIFIED de hoy (00:00 – 23:59).
	TodayIn  int `json:"today_in"`
	TodayOut int `json:"today_out"`

	TotalStockValue decimal.Decimal    `json:"total_stock_value"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}
