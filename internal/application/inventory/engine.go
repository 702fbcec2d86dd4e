package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// DefaultReverseReason nota usada cuando la reversión no indica motivo.
const DefaultReverseReason = "sin motivo indicado"

// Engine aplica movimientos al libro de stock de forma transaccional.
// Bloquea las filas de stock (SELECT FOR UPDATE) en orden ascendente de producto
// y hace Commit o Rollback de todo el movimiento.
type Engine struct {
	txRunner TxRunner
	log      *logger.Logger
	now      Clock
}

// NewEngine construye el motor.
func NewEngine(txRunner TxRunner, log *logger.Logger) *Engine {
	return &Engine{txRunner: txRunner, log: log.Named("engine"), now: time.Now}
}

// WithClock reemplaza la fuente de tiempo.
func (e *Engine) WithClock(c Clock) *Engine {
	e.now = c
	return e
}

// Commit pasa un movimiento PENDING a VERIFIED aplicando sus ítems al stock.
// Si algo falla el movimiento queda PENDING y ningún stock cambia.
func (e *Engine) Commit(ctx context.Context, movementID, employeeID int64, confidence float64) (*entity.Movement, error) {
	var committed *entity.Movement
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		employeeRepo repository.EmployeeRepository,
	) error {
		mov, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if !mov.IsPending() {
			return domain.ErrMovementNotPending
		}
		if len(mov.Items) == 0 {
			return domain.ErrEmptyMovement
		}
		emp, err := employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return fmt.Errorf("empleado %d: %w", employeeID, domain.ErrNotFound)
		}

		if err := applyItems(ctx, stockRepo, productRepo, mov.Type, mov.Items); err != nil {
			return err
		}

		now := e.now()
		if err := movRepo.MarkVerified(ctx, mov.ID, emp.ID, confidence, now); err != nil {
			return err
		}
		mov.Status = entity.MovementStatusVerified
		mov.FaceVerified = true
		mov.FaceEmployeeID = &emp.ID
		mov.FaceConfidence = &confidence
		mov.FaceVerifiedAt = &now
		mov.UpdatedAt = now
		committed = mov
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Int64("movement_id", movementID).Msg("commit rechazado")
		return nil, err
	}
	e.log.Info().
		Int64("movement_id", committed.ID).
		Str("type", committed.Type).
		Int("items", len(committed.Items)).
		Int64("employee_id", employeeID).
		Float64("confidence", confidence).
		Msg("movimiento verificado")
	return committed, nil
}

// Reverse crea el movimiento compensatorio de un movimiento VERIFIED y marca el original CANCELLED.
// El original nunca se modifica más allá de su estado; el efecto se contrarresta con el nuevo movimiento.
func (e *Engine) Reverse(ctx context.Context, actor entity.Actor, movementID int64, reason string) (*entity.Movement, error) {
	if !actor.CanReverse() {
		return nil, domain.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReverseReason
	}

	var reversal *entity.Movement
	err := e.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		_ repository.EmployeeRepository,
	) error {
		orig, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.Status != entity.MovementStatusVerified {
			return domain.ErrMovementNotVerified
		}
		if orig.IsReversal() {
			return domain.ErrReversalOfReversal
		}
		existing, err := movRepo.GetReversalOf(ctx, orig.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyReversed
		}
		if len(orig.Items) == 0 {
			return domain.ErrEmptyMovement
		}

		now := e.now()
		zero := 0.0
		origID := orig.ID
		rev := &entity.Movement{
			Type:               entity.OppositeMovementType(orig.Type),
			Status:             entity.MovementStatusVerified,
			PerformedBy:        actor.UserID,
			FaceEmployeeID:     orig.FaceEmployeeID,
			FaceVerified:       true,
			FaceConfidence:     &zero,
			FaceVerifiedAt:     &now,
			Note:               reason,
			ReversedMovementID: &origID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := movRepo.Create(ctx, rev); err != nil {
			return err
		}
		for _, it := range orig.Items {
			item := entity.MovementItem{
				MovementID:  rev.ID,
				ProductID:   it.ProductID,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				ProductName: it.ProductName,
				ProductSKU:  it.ProductSKU,
				ProductUnit: it.ProductUnit,
			}
			if err := movRepo.AddItem(ctx, &item); err != nil {
				return err
			}
			rev.Items = append(rev.Items, item)
		}

		if err := applyItems(ctx, stockRepo, productRepo, rev.Type, rev.Items); err != nil {
			return err
		}
		if err := movRepo.UpdateStatus(ctx, orig.ID, entity.MovementStatusCancelled); err != nil {
			return err
		}
		reversal = rev
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Int64("movement_id", movementID).Int64("user_id", actor.UserID).Msg("reversión rechazada")
		return nil, err
	}
	e.log.Info().
		Int64("movement_id", movementID).
		Int64("reversal_id", reversal.ID).
		Int64("user_id", actor.UserID).
		Str("reason", reason).
		Msg("movimiento revertido")
	return reversal, nil
}

// applyItems bloquea todas las filas de stock implicadas en orden ascendente de producto,
// valida las salidas contra las cantidades bloqueadas y luego escribe.
func applyItems(
	ctx context.Context,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movementType string,
	items []entity.MovementItem,
) error {
	requested := make(map[int64]int64, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		requested[it.ProductID] += it.Quantity
	}
	ids := make([]int64, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	locked := make(map[int64]*entity.Stock, len(ids))
	for _, id := range ids {
		if err := stockRepo.EnsureExists(ctx, id); err != nil {
			return err
		}
		s, err := stockRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		locked[id] = s
	}

	if movementType == entity.MovementTypeOUT {
		for _, id := range ids {
			if locked[id].CurrentQty >= requested[id] {
				continue
			}
			stockErr := &domain.InsufficientStockError{
				ProductID: id,
				Available: locked[id].CurrentQty,
				Requested: requested[id],
			}
			if p, err := productRepo.GetByID(ctx, id); err == nil && p != nil {
				stockErr.ProductName = p.Name
				stockErr.SKU = p.SKU
			}
			return stockErr
		}
	}

	for _, id := range ids {
		qty := locked[id].CurrentQty + entity.StockDelta(movementType, requested[id])
		if err := stockRepo.SetQuantity(ctx, id, qty); err != nil {
			return err
		}
	}
	return nil
}
