package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Máquina de estados de movimientos.
	ErrMovementNotPending  = errors.New("el movimiento no está en estado PENDING")
	ErrMovementNotVerified = errors.New("solo se pueden revertir movimientos VERIFIED")
	ErrAlreadyReversed     = errors.New("el movimiento ya fue revertido")
	ErrReversalOfReversal  = errors.New("una reversión no se puede revertir")
	ErrEmptyMovement       = errors.New("el movimiento no tiene ítems")
	ErrNotOwner            = errors.New("el movimiento pertenece a otro usuario")
)

// InsufficientStockError detalla el producto que impide una salida.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	SKU         string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s (%s): disponible %d, solicitado %d",
		e.ProductName, e.SKU, e.Available, e.Requested)
}

// Unwrap permite comparar con ErrInsufficientStock.
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
