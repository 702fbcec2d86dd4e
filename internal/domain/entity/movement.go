package entity

import (
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento. La dirección la da el tipo, nunca el signo de la cantidad.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Estados del movimiento.
const (
	MovementStatusPending   = "PENDING"
	MovementStatusVerified  = "VERIFIED"
	MovementStatusCancelled = "CANCELLED"
)

// IsValidMovementType indica si t es IN u OUT.
func IsValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// OppositeMovementType devuelve el tipo contrario (IN <-> OUT), usado por la reversión.
func OppositeMovementType(t string) string {
	if t == MovementTypeIN {
		return MovementTypeOUT
	}
	return MovementTypeIN
}

// Movement es la unidad de cambio de stock. Solo se agrega: nunca se borra ni cambia de tipo.
type Movement struct {
	ID             int64
	Type           string
	Status         string
	PerformedBy    int64 // cuenta que opera el sistema
	FaceEmployeeID *int64
	FaceVerified   bool
	FaceConfidence *float64
	FaceVerifiedAt *time.Time
	Note           string
	// ReversedMovementID no es nil solo si este movimiento es la reversión de otro.
	ReversedMovementID *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []MovementItem
}

// IsPending indica si el movimiento aún admite edición.
func (m *Movement) IsPending() bool { return m.Status == MovementStatusPending }

// IsReversal indica si el movimiento compensa a otro.
func (m *Movement) IsReversal() bool { return m.ReversedMovementID != nil }

// EnsureEditableBy valida que el actor pueda modificar el borrador.
func (m *Movement) EnsureEditableBy(userID int64) error {
	if m.PerformedBy != userID {
		return domain.ErrNotOwner
	}
	if !m.IsPending() {
		return domain.ErrMovementNotPending
	}
	return nil
}

// FindItemByProduct devuelve el ítem del producto o nil.
func (m *Movement) FindItemByProduct(productID int64) *MovementItem {
	for i := range m.Items {
		if m.Items[i].ProductID == productID {
			return &m.Items[i]
		}
	}
	return nil
}

// TotalQuantity suma las cantidades de los ítems.
func (m *Movement) TotalQuantity() int64 {
	var total int64
	for _, it := range m.Items {
		total += it.Quantity
	}
	return total
}

// TotalAmount suma cantidad * precio de los ítems.
func (m *Movement) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range m.Items {
		total = total.Add(it.Total())
	}
	return total
}

// MovementItem línea de un movimiento. Quantity siempre es positiva.
type MovementItem struct {
	ID         int64
	MovementID int64
	ProductID  int64
	Quantity   int64
	UnitPrice  decimal.Decimal // numeric(12,2), >= 0

	// Datos del producto resueltos por el repositorio para lectura.
	ProductName string
	ProductSKU  string
	ProductUnit string
}

// Total devuelve Quantity * UnitPrice.
func (i MovementItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// StockDelta devuelve el efecto firmado del ítem según el tipo del movimiento.
func StockDelta(movementType string, quantity int64) int64 {
	if movementType == MovementTypeOUT {
		return -quantity
	}
	return quantity
}

// MovementFilter criterios para listar movimientos.
type MovementFilter struct {
	Type        string
	Status      string
	PerformedBy int64
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
