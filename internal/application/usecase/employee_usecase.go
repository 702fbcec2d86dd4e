package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// DefaultMinEnrollImages mínimo de imágenes válidas para registrar un rostro.
const DefaultMinEnrollImages = 10

// EmployeeUseCase alta, edición y registro facial de empleados.
// Los empleados no se eliminan: se desactivan.
type EmployeeUseCase struct {
	repo            repository.EmployeeRepository
	biometric       ports.BiometricService
	minEnrollImages int
	log             *logger.Logger
}

// NewEmployeeUseCase construye el caso de uso. minEnrollImages <= 0 usa DefaultMinEnrollImages.
func NewEmployeeUseCase(repo repository.EmployeeRepository, biometric ports.BiometricService, minEnrollImages int, log *logger.Logger) *EmployeeUseCase {
	if minEnrollImages <= 0 {
		minEnrollImages = DefaultMinEnrollImages
	}
	return &EmployeeUseCase{
		repo:            repo,
		biometric:       biometric,
		minEnrollImages: minEnrollImages,
		log:             log.Named("employees"),
	}
}

// Create registra un empleado activo. Sin etiqueta facial se asigna la siguiente libre.
func (uc *EmployeeUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if !actor.Can(entity.CapEnrollEmployee) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.EmployeeID)
	if name == "" || code == "" {
		return nil, domain.ErrInvalidInput
	}
	var label int
	if in.FaceLabel != nil {
		if *in.FaceLabel < 0 {
			return nil, domain.ErrInvalidInput
		}
		label = *in.FaceLabel
	} else {
		next, err := uc.nextFaceLabel(ctx)
		if err != nil {
			return nil, err
		}
		label = next
	}
	now := time.Now()
	e := &entity.Employee{
		Name:       name,
		EmployeeID: code,
		FaceLabel:  label,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return toEmployeeResponse(e), nil
}

// nextFaceLabel primera etiqueta >= 1 que no está en uso.
func (uc *EmployeeUseCase) nextFaceLabel(ctx context.Context) (int, error) {
	list, err := uc.repo.List(ctx, false)
	if err != nil {
		return 0, err
	}
	used := make(map[int]bool, len(list))
	for _, e := range list {
		used[e.FaceLabel] = true
	}
	label := 1
	for used[label] {
		label++
	}
	return label, nil
}

// GetByID obtiene un empleado.
func (uc *EmployeeUseCase) GetByID(ctx context.Context, id int64) (*dto.EmployeeResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return toEmployeeResponse(e), nil
}

// List lista empleados; onlyActive filtra los desactivados.
func (uc *EmployeeUseCase) List(ctx context.Context, onlyActive bool) ([]dto.EmployeeResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, *toEmployeeResponse(e))
	}
	return out, nil
}

// Update cambia nombre o estado. Desactivar no afecta movimientos ya verificados.
func (uc *EmployeeUseCase) Update(ctx context.Context, actor entity.Actor, id int64, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if !actor.Can(entity.CapEnrollEmployee) {
		return nil, domain.ErrForbidden
	}
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		e.Name = strings.TrimSpace(*in.Name)
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	e.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return toEmployeeResponse(e), nil
}

// Enroll envía las imágenes del empleado al servicio biométrico bajo su etiqueta.
// Las imágenes que no se pueden decodificar se descartan antes de contar el mínimo.
func (uc *EmployeeUseCase) Enroll(ctx context.Context, actor entity.Actor, id int64, in dto.EnrollFaceRequest) (*dto.EnrollFaceResponse, error) {
	if !actor.Can(entity.CapEnrollEmployee) {
		return nil, domain.ErrForbidden
	}
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	images := make([][]byte, 0, len(in.Images))
	for _, raw := range in.Images {
		img, err := DecodeImage(raw)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	if len(images) < uc.minEnrollImages {
		return nil, fmt.Errorf("se requieren al menos %d imágenes válidas (%d recibidas): %w",
			uc.minEnrollImages, len(images), domain.ErrInvalidInput)
	}
	if err := uc.biometric.Enroll(ctx, e.FaceLabel, images); err != nil {
		uc.log.Error().Err(err).Int64("employee_id", e.ID).Msg("registro facial fallido")
		return nil, err
	}
	uc.log.Info().Int64("employee_id", e.ID).Int("face_label", e.FaceLabel).Int("images", len(images)).
		Msg("rostro registrado")
	return &dto.EnrollFaceResponse{EmployeeID: e.ID, FaceLabel: e.FaceLabel, ImagesCount: len(images)}, nil
}

// DecodeImage decodifica una imagen base64; acepta el prefijo data URL (data:image/jpeg;base64,...).
func DecodeImage(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, ","); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+1:]
	}
	img, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(img) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return img, nil
}

func toEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:         e.ID,
		Name:       e.Name,
		EmployeeID: e.EmployeeID,
		FaceLabel:  e.FaceLabel,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
