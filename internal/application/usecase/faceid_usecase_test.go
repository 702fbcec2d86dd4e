package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

type faceFixture struct {
	ctx       context.Context
	store     *memory.Store
	verdicts  *memory.VerdictStore
	biometric *mockBiometric
	gate      faceid.Gate
	uc        *usecase.FaceIDUseCase
	now       time.Time
	active    *entity.Employee
	inactive  *entity.Employee
}

func newFaceFixture(t *testing.T) *faceFixture {
	t.Helper()
	f := &faceFixture{
		ctx:       context.Background(),
		store:     memory.NewStore(),
		verdicts:  memory.NewVerdictStore(),
		biometric: &mockBiometric{},
		gate:      faceid.NewGate(5*time.Minute, 80),
		now:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.active = &entity.Employee{Name: "Ana Torres", EmployeeID: "EMP001", FaceLabel: 1, IsActive: true}
	f.inactive = &entity.Employee{Name: "Bruno Díaz", EmployeeID: "EMP002", FaceLabel: 2, IsActive: false}
	require.NoError(t, f.store.Employees().Create(f.ctx, f.active))
	require.NoError(t, f.store.Employees().Create(f.ctx, f.inactive))

	f.uc = usecase.NewFaceIDUseCase(f.biometric, f.store.Employees(), f.verdicts, f.gate, logger.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func TestFaceID_VerificaYGuardaBinding(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, []byte("cara")).
		Return(faceid.Verdict{Matched: true, Label: 1, Confidence: 45.2}, nil).Once()

	out, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("cara")})
	require.NoError(t, err)
	assert.True(t, out.Verified)
	assert.Equal(t, f.active.ID, out.EmployeeID)
	assert.Equal(t, "Ana Torres", out.EmployeeName)
	assert.InDelta(t, 45.2, out.Confidence, 0.001)
	assert.Equal(t, 300, out.RemainingSeconds)

	b, err := f.verdicts.Get(f.ctx, operatorActor.SessionID)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, operatorActor.UserID, b.AccountID)
	assert.Equal(t, operatorActor.Station, b.Station)
	assert.Equal(t, f.now, b.IssuedAt)
	f.biometric.AssertExpectations(t)
}

func TestFaceID_AceptaDataURL(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, []byte("cara")).
		Return(faceid.Verdict{Matched: true, Label: 1, Confidence: 10}, nil).Once()

	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: "data:image/jpeg;base64," + frame("cara")})
	require.NoError(t, err)
}

func TestFaceID_ConfianzaSobreUmbral(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, mock.Anything).
		Return(faceid.Verdict{Matched: true, Label: 1, Confidence: 80}, nil).Once()

	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("cara")})
	assert.ErrorIs(t, err, faceid.ErrNoMatch, "confianza igual al umbral no es coincidencia")

	b, err := f.verdicts.Get(f.ctx, operatorActor.SessionID)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestFaceID_SinRostro(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, mock.Anything).Return(faceid.Verdict{}, nil).Once()

	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("pared")})
	assert.ErrorIs(t, err, faceid.ErrNoMatch)
}

func TestFaceID_EmpleadoInactivoOInexistente(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, []byte("inactivo")).
		Return(faceid.Verdict{Matched: true, Label: 2, Confidence: 20}, nil).Once()
	f.biometric.On("Verify", mock.Anything, []byte("desconocido")).
		Return(faceid.Verdict{Matched: true, Label: 99, Confidence: 20}, nil).Once()

	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("inactivo")})
	assert.ErrorIs(t, err, faceid.ErrNoMatch)
	_, err = f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("desconocido")})
	assert.ErrorIs(t, err, faceid.ErrNoMatch)
}

func TestFaceID_ServicioNoDisponible(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, mock.Anything).
		Return(faceid.Verdict{}, fmt.Errorf("%w: timeout", ports.ErrBiometricUnavailable)).Once()

	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("cara")})
	assert.ErrorIs(t, err, ports.ErrBiometricUnavailable)
}

func TestFaceID_ImagenInvalida(t *testing.T) {
	f := newFaceFixture(t)
	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: "%%%no-es-base64"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.biometric.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestFaceID_ViewerNoVerifica(t *testing.T) {
	f := newFaceFixture(t)
	_, err := f.uc.Verify(f.ctx, viewerActor, dto.FaceVerifyRequest{Image: frame("cara")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFaceID_EstadoSegunVigenciaYEstacion(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, mock.Anything).
		Return(faceid.Verdict{Matched: true, Label: 1, Confidence: 30}, nil).Once()
	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("cara")})
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Minute)
	st, err := f.uc.Status(f.ctx, operatorActor)
	require.NoError(t, err)
	assert.True(t, st.Verified)
	assert.Equal(t, 180, st.RemainingSeconds)

	otherStation := operatorActor
	otherStation.Station = "192.168.0.77"
	st, err = f.uc.Status(f.ctx, otherStation)
	require.NoError(t, err)
	assert.False(t, st.Verified)

	f.now = f.now.Add(4 * time.Minute)
	st, err = f.uc.Status(f.ctx, operatorActor)
	require.NoError(t, err)
	assert.False(t, st.Verified)
}

func TestFaceID_Descartar(t *testing.T) {
	f := newFaceFixture(t)
	f.biometric.On("Verify", mock.Anything, mock.Anything).
		Return(faceid.Verdict{Matched: true, Label: 1, Confidence: 30}, nil).Once()
	_, err := f.uc.Verify(f.ctx, operatorActor, dto.FaceVerifyRequest{Image: frame("cara")})
	require.NoError(t, err)

	require.NoError(t, f.uc.Clear(f.ctx, operatorActor))
	st, err := f.uc.Status(f.ctx, operatorActor)
	require.NoError(t, err)
	assert.False(t, st.Verified)
}
