package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	Type string `json:"type" validate:"required,oneof=IN OUT"`
	Note string `json:"note" validate:"omitempty,max=500"`
}

// AddMovementItemRequest body para POST /api/movements/:id/items.
type AddMovementItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// DiscardMovementsRequest body para POST /api/movements/discard.
type DiscardMovementsRequest struct {
	Type string `json:"type" validate:"required,oneof=IN OUT"`
}

// DiscardMovementsResponse cantidad de borradores cancelados.
type DiscardMovementsResponse struct {
	Discarded int64 `json:"discarded"`
}

// ReverseMovementRequest body para POST /api/movements/:id/reverse.
type ReverseMovementRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// MovementListRequest filtros de GET /api/movements.
type MovementListRequest struct {
	PageRequest
	Type   string `query:"type" validate:"omitempty,oneof=IN OUT"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING VERIFIED CANCELLED"`
}

// MovementItemResponse ítem de un movimiento.
type MovementItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Unit        string          `json:"unit"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// MovementResponse salida de un movimiento con sus ítems.
type MovementResponse struct {
	ID                 int64                  `json:"id"`
	Type               string                 `json:"type"`
	Status             string                 `json:"status"`
	PerformedBy        int64                  `json:"performed_by"`
	FaceVerified       bool                   `json:"face_verified"`
	FaceEmployeeID     *int64                 `json:"face_employee_id,omitempty"`
	FaceConfidence     *float64               `json:"face_confidence,omitempty"`
	FaceVerifiedAt     *time.Time             `json:"face_verified_at,omitempty"`
	Note               string                 `json:"note"`
	ReversedMovementID *int64                 `json:"reversed_movement_id,omitempty"`
	ReversedByID       *int64                 `json:"reversed_by_id,omitempty"`
	CanReverse         bool                   `json:"can_reverse"`
	Items              []MovementItemResponse `json:"items"`
	TotalQuantity      int64                  `json:"total_quantity"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
