package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para Movement y sus ítems.
// Los movimientos nunca se eliminan.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID carga el movimiento con sus ítems; (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// GetForUpdate igual que GetByID pero bloquea la fila del movimiento.
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, int, error)
	// GetReversalOf devuelve el movimiento que revierte a id, o nil.
	GetReversalOf(ctx context.Context, id int64) (*entity.Movement, error)
	// CancelPending cancela los PENDING del usuario y tipo; devuelve cuántos.
	CancelPending(ctx context.Context, userID int64, movementType string) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkVerified(ctx context.Context, id int64, employeeID int64, confidence float64, at time.Time) error

	AddItem(ctx context.Context, item *entity.MovementItem) error
	UpdateItem(ctx context.Context, item *entity.MovementItem) error
	// DeleteItem elimina el ítem si pertenece al movimiento; domain.ErrNotFound si no.
	DeleteItem(ctx context.Context, movementID, itemID int64) error
}
