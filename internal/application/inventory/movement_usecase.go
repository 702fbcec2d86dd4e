package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// MovementUseCase máquina de estados de movimientos:
// PENDING (borrador del creador) -> VERIFIED (vía Engine.Commit) -> CANCELLED (vía reversión),
// o PENDING -> CANCELLED sin efecto en stock.
type MovementUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	engine   *Engine
	gate     faceid.Gate
	verdicts repository.VerdictStore
	log      *logger.Logger
	now      Clock
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	engine *Engine,
	gate faceid.Gate,
	verdicts repository.VerdictStore,
	log *logger.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner: txRunner,
		movRepo:  movRepo,
		engine:   engine,
		gate:     gate,
		verdicts: verdicts,
		log:      log.Named("movements"),
		now:      time.Now,
	}
}

// WithClock reemplaza la fuente de tiempo.
func (uc *MovementUseCase) WithClock(c Clock) *MovementUseCase {
	uc.now = c
	return uc
}

// Create abre un borrador PENDING. Cancela antes cualquier PENDING del mismo tipo del actor
// (a lo sumo un borrador vivo por actor y dirección).
func (uc *MovementUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	if !actor.Can(entity.CapMoveStock) {
		return nil, domain.ErrForbidden
	}
	if !entity.IsValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	mov := &entity.Movement{
		Type:        in.Type,
		Status:      entity.MovementStatusPending,
		PerformedBy: actor.UserID,
		Note:        in.Note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var cancelled int64
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.EmployeeRepository,
	) error {
		n, err := movRepo.CancelPending(ctx, actor.UserID, in.Type)
		if err != nil {
			return err
		}
		cancelled = n
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	if cancelled > 0 {
		uc.log.Info().Int64("user_id", actor.UserID).Str("type", in.Type).Int64("cancelled", cancelled).
			Msg("borradores previos cancelados")
	}
	resp := ToMovementResponse(mov, nil, actor)
	return &resp, nil
}

// AddItem agrega un producto al borrador. Si el producto ya está, acumula la cantidad
// y reemplaza el precio unitario. En salidas valida el stock actual como aviso temprano;
// el motor vuelve a validar bajo bloqueo al finalizar.
func (uc *MovementUseCase) AddItem(ctx context.Context, actor entity.Actor, movementID int64, in dto.AddMovementItemRequest) (*dto.MovementResponse, error) {
	if in.Quantity <= 0 || in.ProductID <= 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		_ repository.EmployeeRepository,
	) error {
		mov, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if err := mov.EnsureEditableBy(actor.UserID); err != nil {
			return err
		}
		product, err := productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		price := in.UnitPrice.Round(2)
		item := mov.FindItemByProduct(product.ID)
		newQty := in.Quantity
		if item != nil {
			newQty += item.Quantity
		}

		if mov.Type == entity.MovementTypeOUT {
			stock, err := stockRepo.Get(ctx, product.ID)
			if err != nil {
				return err
			}
			available := int64(0)
			if stock != nil {
				available = stock.CurrentQty
			}
			if newQty > available {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					SKU:         product.SKU,
					Available:   available,
					Requested:   newQty,
				}
			}
		}

		if item != nil {
			item.Quantity = newQty
			item.UnitPrice = price
			if err := movRepo.UpdateItem(ctx, item); err != nil {
				return err
			}
		} else {
			added := entity.MovementItem{
				MovementID:  mov.ID,
				ProductID:   product.ID,
				Quantity:    newQty,
				UnitPrice:   price,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
				ProductUnit: product.Unit,
			}
			if err := movRepo.AddItem(ctx, &added); err != nil {
				return err
			}
			mov.Items = append(mov.Items, added)
		}
		updated = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(updated, nil, actor)
	return &resp, nil
}

// RemoveItem quita una línea del borrador.
func (uc *MovementUseCase) RemoveItem(ctx context.Context, actor entity.Actor, movementID, itemID int64) (*dto.MovementResponse, error) {
	var updated *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.EmployeeRepository,
	) error {
		mov, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if err := mov.EnsureEditableBy(actor.UserID); err != nil {
			return err
		}
		if err := movRepo.DeleteItem(ctx, mov.ID, itemID); err != nil {
			return err
		}
		kept := mov.Items[:0]
		for _, it := range mov.Items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		mov.Items = kept
		updated = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(updated, nil, actor)
	return &resp, nil
}

// Cancel anula un borrador PENDING del actor sin tocar el stock.
func (uc *MovementUseCase) Cancel(ctx context.Context, actor entity.Actor, movementID int64) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.EmployeeRepository,
	) error {
		mov, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if err := mov.EnsureEditableBy(actor.UserID); err != nil {
			return err
		}
		return movRepo.UpdateStatus(ctx, mov.ID, entity.MovementStatusCancelled)
	})
}

// Discard cancela todos los borradores del actor para un tipo. Devuelve cuántos se cancelaron.
func (uc *MovementUseCase) Discard(ctx context.Context, actor entity.Actor, movementType string) (int64, error) {
	if !actor.Can(entity.CapMoveStock) {
		return 0, domain.ErrForbidden
	}
	if !entity.IsValidMovementType(movementType) {
		return 0, domain.ErrInvalidInput
	}
	return uc.movRepo.CancelPending(ctx, actor.UserID, movementType)
}

// Finalize confirma el borrador con la verificación facial vigente de la sesión.
// El binding solo se consume cuando pasa la validación; si el motor rechaza el commit
// se restituye con su tiempo restante.
func (uc *MovementUseCase) Finalize(ctx context.Context, actor entity.Actor, movementID int64) (*dto.MovementResponse, error) {
	mov, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if err := mov.EnsureEditableBy(actor.UserID); err != nil {
		return nil, err
	}
	if len(mov.Items) == 0 {
		return nil, domain.ErrEmptyMovement
	}

	binding, err := uc.verdicts.Get(ctx, actor.SessionID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.checkBinding(binding, actor, movementID); err != nil {
		return nil, err
	}
	// Otra petición pudo consumirlo entre Get y Take.
	binding, err = uc.verdicts.Take(ctx, actor.SessionID)
	if err != nil {
		return nil, err
	}
	employeeID, err := uc.checkBinding(binding, actor, movementID)
	if err != nil {
		return nil, err
	}

	committed, err := uc.engine.Commit(ctx, movementID, employeeID, binding.Confidence)
	if err != nil {
		if ttl := uc.gate.Remaining(*binding, uc.now()); ttl > 0 {
			if perr := uc.verdicts.Put(ctx, actor.SessionID, *binding, ttl); perr != nil {
				uc.log.Error().Err(perr).Int64("user_id", actor.UserID).Msg("restituir verificación facial")
			}
		}
		return nil, err
	}
	resp := ToMovementResponse(committed, nil, actor)
	return &resp, nil
}

func (uc *MovementUseCase) checkBinding(b *faceid.VerdictBinding, actor entity.Actor, movementID int64) (int64, error) {
	employeeID, err := uc.gate.Check(b, actor.UserID, actor.Station, uc.now())
	if err != nil {
		var ce *faceid.CheckError
		if errors.As(err, &ce) {
			uc.log.Warn().Int64("user_id", actor.UserID).Int64("movement_id", movementID).
				Str("reason", string(ce.Reason)).Msg("verificación facial rechazada")
		}
		return 0, err
	}
	return employeeID, nil
}

// Reverse revierte un movimiento VERIFIED. Solo para actores con la capacidad de reversión;
// no pasa por la verificación facial.
func (uc *MovementUseCase) Reverse(ctx context.Context, actor entity.Actor, movementID int64, reason string) (*dto.MovementResponse, error) {
	if !actor.CanReverse() {
		return nil, domain.ErrForbidden
	}
	rev, err := uc.engine.Reverse(ctx, actor, movementID, reason)
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(rev, nil, actor)
	return &resp, nil
}

// Get obtiene el detalle de un movimiento con su reversión (si existe).
func (uc *MovementUseCase) Get(ctx context.Context, actor entity.Actor, movementID int64) (*dto.MovementResponse, error) {
	mov, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	reversal, err := uc.movRepo.GetReversalOf(ctx, mov.ID)
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(mov, reversal, actor)
	return &resp, nil
}

// List lista movimientos (más recientes primero) con filtros de tipo y estado.
func (uc *MovementUseCase) List(ctx context.Context, actor entity.Actor, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.movRepo.List(ctx, entity.MovementFilter{
		Type:   in.Type,
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m, nil, actor))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// ToMovementResponse convierte un movimiento al DTO. reversal es el movimiento que lo revierte, si se conoce.
func ToMovementResponse(m *entity.Movement, reversal *entity.Movement, actor entity.Actor) dto.MovementResponse {
	items := make([]dto.MovementItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, dto.MovementItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.ProductSKU,
			Unit:        it.ProductUnit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total(),
		})
	}
	resp := dto.MovementResponse{
		ID:                 m.ID,
		Type:               m.Type,
		Status:             m.Status,
		PerformedBy:        m.PerformedBy,
		FaceVerified:       m.FaceVerified,
		FaceEmployeeID:     m.FaceEmployeeID,
		FaceConfidence:     m.FaceConfidence,
		FaceVerifiedAt:     m.FaceVerifiedAt,
		Note:               m.Note,
		ReversedMovementID: m.ReversedMovementID,
		Items:              items,
		TotalQuantity:      m.TotalQuantity(),
		TotalAmount:        m.TotalAmount(),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if reversal != nil {
		resp.ReversedByID = &reversal.ID
	}
	resp.CanReverse = actor.CanReverse() && m.Status == entity.MovementStatusVerified && !m.IsReversal() && reversal == nil
	return resp
}
