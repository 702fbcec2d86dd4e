package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// FaceIDUseCase verificación facial de la sesión: emite, consulta y descarta el binding.
type FaceIDUseCase struct {
	biometric ports.BiometricService
	employees repository.EmployeeRepository
	verdicts  repository.VerdictStore
	gate      faceid.Gate
	log       *logger.Logger
	now       func() time.Time
}

// NewFaceIDUseCase construye el caso de uso.
func NewFaceIDUseCase(
	biometric ports.BiometricService,
	employees repository.EmployeeRepository,
	verdicts repository.VerdictStore,
	gate faceid.Gate,
	log *logger.Logger,
) *FaceIDUseCase {
	return &FaceIDUseCase{
		biometric: biometric,
		employees: employees,
		verdicts:  verdicts,
		gate:      gate,
		log:       log.Named("faceid"),
		now:       time.Now,
	}
}

// WithClock reemplaza la fuente de tiempo.
func (uc *FaceIDUseCase) WithClock(now func() time.Time) *FaceIDUseCase {
	uc.now = now
	return uc
}

// Verify identifica al empleado frente a la cámara y guarda el binding de la sesión.
// Un veredicto nuevo reemplaza al anterior. Los empleados inactivos no se verifican.
func (uc *FaceIDUseCase) Verify(ctx context.Context, actor entity.Actor, in dto.FaceVerifyRequest) (*dto.FaceStatusResponse, error) {
	if !actor.Can(entity.CapMoveStock) {
		return nil, domain.ErrForbidden
	}
	frame, err := DecodeImage(in.Image)
	if err != nil {
		return nil, err
	}
	verdict, err := uc.biometric.Verify(ctx, frame)
	if err != nil {
		uc.log.Error().Err(err).Int64("user_id", actor.UserID).Msg("servicio biométrico")
		return nil, err
	}
	if !uc.gate.Accepts(verdict) {
		uc.log.Info().Int64("user_id", actor.UserID).Bool("matched", verdict.Matched).
			Float64("confidence", verdict.Confidence).Msg("rostro no reconocido")
		return nil, faceid.ErrNoMatch
	}
	emp, err := uc.employees.GetByFaceLabel(ctx, verdict.Label)
	if err != nil {
		return nil, err
	}
	if emp == nil || !emp.IsActive {
		uc.log.Warn().Int64("user_id", actor.UserID).Int("face_label", verdict.Label).
			Msg("etiqueta sin empleado activo")
		return nil, fmt.Errorf("etiqueta %d: %w", verdict.Label, faceid.ErrNoMatch)
	}

	now := uc.now()
	binding, err := uc.gate.Authorize(verdict, emp.ID, actor.UserID, actor.Station, now)
	if err != nil {
		return nil, err
	}
	if err := uc.verdicts.Put(ctx, actor.SessionID, binding, uc.gate.Timeout); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", actor.UserID).Int64("employee_id", emp.ID).
		Float64("confidence", verdict.Confidence).Str("station", actor.Station).Msg("rostro verificado")
	return statusResponse(binding, emp, uc.gate.Remaining(binding, now)), nil
}

// Status informa si la sesión tiene una verificación vigente para esta cuenta y estación.
func (uc *FaceIDUseCase) Status(ctx context.Context, actor entity.Actor) (*dto.FaceStatusResponse, error) {
	binding, err := uc.verdicts.Get(ctx, actor.SessionID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	employeeID, err := uc.gate.Check(binding, actor.UserID, actor.Station, now)
	if errors.Is(err, faceid.ErrVerdictInvalid) {
		return &dto.FaceStatusResponse{Verified: false}, nil
	}
	if err != nil {
		return nil, err
	}
	emp, err := uc.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return &dto.FaceStatusResponse{Verified: false}, nil
	}
	return statusResponse(*binding, emp, uc.gate.Remaining(*binding, now)), nil
}

// Clear descarta la verificación de la sesión.
func (uc *FaceIDUseCase) Clear(ctx context.Context, actor entity.Actor) error {
	return uc.verdicts.Delete(ctx, actor.SessionID)
}

func statusResponse(b faceid.VerdictBinding, emp *entity.Employee, remaining time.Duration) *dto.FaceStatusResponse {
	at := b.IssuedAt
	return &dto.FaceStatusResponse{
		Verified:         true,
		EmployeeID:       emp.ID,
		EmployeeName:     emp.Name,
		Confidence:       b.Confidence,
		VerifiedAt:       &at,
		RemainingSeconds: int(remaining / time.Second),
	}
}
