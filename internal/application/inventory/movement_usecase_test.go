package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

var (
	operator  = entity.Actor{UserID: 10, Role: entity.RoleOperator, SessionID: "sess-operator", Station: "10.0.0.5"}
	operator2 = entity.Actor{UserID: 11, Role: entity.RoleOperator, SessionID: "sess-operator-2", Station: "10.0.0.6"}
	admin     = entity.Actor{UserID: 1, Role: entity.RoleAdmin, SessionID: "sess-admin", Station: "10.0.0.9"}
	viewer    = entity.Actor{UserID: 20, Role: entity.RoleViewer, SessionID: "sess-viewer", Station: "10.0.0.7"}
)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	verdicts *memory.VerdictStore
	gate     faceid.Gate
	uc       *inventory.MovementUseCase
	now      time.Time

	productA int64
	productB int64
	employee int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    memory.NewStore(),
		verdicts: memory.NewVerdictStore(),
		gate:     faceid.NewGate(5*time.Minute, 80),
		now:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	cat := &entity.Category{Name: "Electrónica"}
	require.NoError(t, f.store.Categories().Create(f.ctx, cat))
	f.productA = f.addProduct(t, cat.ID, "Laptop", "LAP-1")
	f.productB = f.addProduct(t, cat.ID, "Mouse", "MOU-1")

	emp := &entity.Employee{Name: "Ana Torres", EmployeeID: "EMP001", FaceLabel: 1, IsActive: true}
	require.NoError(t, f.store.Employees().Create(f.ctx, emp))
	f.employee = emp.ID

	log := logger.Nop()
	engine := inventory.NewEngine(f.store, log).WithClock(clock)
	f.uc = inventory.NewMovementUseCase(f.store, f.store.Movements(), engine, f.gate, f.verdicts, log).WithClock(clock)
	return f
}

func (f *fixture) addProduct(t *testing.T, categoryID int64, name, sku string) int64 {
	t.Helper()
	p := &entity.Product{UID: sku + "-uid", Name: name, SKU: sku, CategoryID: categoryID, Unit: entity.DefaultUnit}
	require.NoError(t, f.store.Products().Create(f.ctx, p))
	require.NoError(t, f.store.Stock().EnsureExists(f.ctx, p.ID))
	return p.ID
}

// bind simula una verificación facial vigente para la sesión del actor.
func (f *fixture) bind(t *testing.T, actor entity.Actor) {
	t.Helper()
	b := faceid.VerdictBinding{
		EmployeeID: f.employee,
		AccountID:  actor.UserID,
		Station:    actor.Station,
		IssuedAt:   f.now,
		Confidence: 42.5,
	}
	require.NoError(t, f.verdicts.Put(f.ctx, actor.SessionID, b, f.gate.Timeout))
}

func (f *fixture) qty(t *testing.T, productID int64) int64 {
	t.Helper()
	s, err := f.store.Stock().Get(f.ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s.CurrentQty
}

// move abre un borrador, agrega los ítems y lo finaliza con una verificación fresca.
func (f *fixture) move(t *testing.T, actor entity.Actor, movementType string, items map[int64]int64) (*dto.MovementResponse, error) {
	t.Helper()
	mov, err := f.uc.Create(f.ctx, actor, dto.CreateMovementRequest{Type: movementType})
	require.NoError(t, err)
	for productID, qty := range items {
		if _, err := f.uc.AddItem(f.ctx, actor, mov.ID, dto.AddMovementItemRequest{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: decimal.NewFromInt(1500),
		}); err != nil {
			return nil, err
		}
	}
	f.bind(t, actor)
	return f.uc.Finalize(f.ctx, actor, mov.ID)
}

func TestMovement_IngresoSalidaYReversion(t *testing.T) {
	f := newFixture(t)

	in, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 100})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVerified, in.Status)
	assert.True(t, in.FaceVerified)
	require.NotNil(t, in.FaceEmployeeID)
	assert.Equal(t, f.employee, *in.FaceEmployeeID)
	assert.Equal(t, int64(100), f.qty(t, f.productA))

	out, err := f.move(t, operator, entity.MovementTypeOUT, map[int64]int64{f.productA: 30})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVerified, out.Status)
	assert.Equal(t, int64(70), f.qty(t, f.productA))

	// Salida mayor al stock: rechazada al agregar el ítem.
	_, err = f.move(t, operator, entity.MovementTypeOUT, map[int64]int64{f.productA: 1000})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(70), stockErr.Available)
	assert.Equal(t, int64(1000), stockErr.Requested)
	assert.Equal(t, int64(70), f.qty(t, f.productA))

	rev, err := f.uc.Reverse(f.ctx, admin, out.ID, "conteo erróneo")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, rev.Type)
	assert.Equal(t, entity.MovementStatusVerified, rev.Status)
	require.NotNil(t, rev.ReversedMovementID)
	assert.Equal(t, out.ID, *rev.ReversedMovementID)
	require.NotNil(t, rev.FaceConfidence)
	assert.Zero(t, *rev.FaceConfidence)
	require.NotNil(t, rev.FaceEmployeeID)
	assert.Equal(t, f.employee, *rev.FaceEmployeeID, "la reversión conserva el empleado del original")
	assert.Equal(t, "conteo erróneo", rev.Note)
	assert.Equal(t, int64(100), f.qty(t, f.productA))

	orig, err := f.uc.Get(f.ctx, admin, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, orig.Status)
	require.NotNil(t, orig.ReversedByID)
	assert.Equal(t, rev.ID, *orig.ReversedByID)
	assert.False(t, orig.CanReverse)

	_, err = f.uc.Reverse(f.ctx, admin, out.ID, "")
	assert.Error(t, err, "un movimiento solo se revierte una vez")
	assert.Equal(t, int64(100), f.qty(t, f.productA))
}

func TestMovement_ReversionSinMotivoUsaNotaPorDefecto(t *testing.T) {
	f := newFixture(t)
	in, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 5})
	require.NoError(t, err)

	rev, err := f.uc.Reverse(f.ctx, admin, in.ID, "   ")
	require.NoError(t, err)
	assert.Equal(t, inventory.DefaultReverseReason, rev.Note)
	assert.Equal(t, entity.MovementTypeOUT, rev.Type)
	assert.Zero(t, f.qty(t, f.productA))
}

func TestMovement_ReversionDeIngresoSinStockFalla(t *testing.T) {
	f := newFixture(t)
	in, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 10})
	require.NoError(t, err)
	_, err = f.move(t, operator, entity.MovementTypeOUT, map[int64]int64{f.productA: 8})
	require.NoError(t, err)

	_, err = f.uc.Reverse(f.ctx, admin, in.ID, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	orig, err := f.uc.Get(f.ctx, admin, in.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVerified, orig.Status, "el original no cambia si la reversión falla")
	assert.Equal(t, int64(2), f.qty(t, f.productA))
}

func TestMovement_UnaReversionNoSeRevierte(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 100})
	require.NoError(t, err)
	out, err := f.move(t, operator, entity.MovementTypeOUT, map[int64]int64{f.productA: 30})
	require.NoError(t, err)

	rev, err := f.uc.Reverse(f.ctx, admin, out.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.qty(t, f.productA))

	detail, err := f.uc.Get(f.ctx, admin, rev.ID)
	require.NoError(t, err)
	assert.False(t, detail.CanReverse, "la reversión no ofrece revertirse")

	_, err = f.uc.Reverse(f.ctx, admin, rev.ID, "")
	assert.ErrorIs(t, err, domain.ErrReversalOfReversal)
	assert.Equal(t, int64(100), f.qty(t, f.productA))

	detail, err = f.uc.Get(f.ctx, admin, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVerified, detail.Status)
	assert.Nil(t, detail.ReversedByID)
}

func TestMovement_SoloAdminRevierte(t *testing.T) {
	f := newFixture(t)
	in, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 10})
	require.NoError(t, err)
	assert.False(t, in.CanReverse, "operator no ve la acción de revertir")

	_, err = f.uc.Reverse(f.ctx, operator, in.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMovement_NoSeRevierteUnPendiente(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)

	_, err = f.uc.Reverse(f.ctx, admin, mov.ID, "")
	assert.ErrorIs(t, err, domain.ErrMovementNotVerified)
}

func TestMovement_NuevoBorradorCancelaElAnteriorDelMismoTipo(t *testing.T) {
	f := newFixture(t)
	first, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	otherType, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	second, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)

	got, err := f.uc.Get(f.ctx, operator, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, got.Status)

	got, err = f.uc.Get(f.ctx, operator, otherType.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, got.Status, "solo se cancela el mismo tipo")

	got, err = f.uc.Get(f.ctx, operator, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, got.Status)
}

func TestMovement_AgregarMismoProductoAcumula(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)

	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 3, UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	resp, err := f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 4, UnitPrice: decimal.RequireFromString("12.50")})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(7), resp.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("12.50").Equal(resp.Items[0].UnitPrice), "el último precio reemplaza al anterior")
	assert.True(t, decimal.RequireFromString("87.50").Equal(resp.TotalAmount))
}

func TestMovement_QuitarItem(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 1})
	require.NoError(t, err)
	resp, err := f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productB, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	resp, err = f.uc.RemoveItem(f.ctx, operator, mov.ID, resp.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, f.productB, resp.Items[0].ProductID)

	_, err = f.uc.RemoveItem(f.ctx, operator, mov.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovement_ItemsInvalidos(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)

	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: 9999, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovement_SoloElCreadorEditaElBorrador(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)

	_, err = f.uc.AddItem(f.ctx, operator2, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	err = f.uc.Cancel(f.ctx, operator2, mov.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	f.bind(t, operator2)
	_, err = f.uc.Finalize(f.ctx, operator2, mov.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestMovement_ViewerNoMueveStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, viewer, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Discard(f.ctx, viewer, entity.MovementTypeIN)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMovement_FinalizarSinItems(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	f.bind(t, operator)

	_, err = f.uc.Finalize(f.ctx, operator, mov.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyMovement)

	b, err := f.verdicts.Get(f.ctx, operator.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, b, "los rechazos previos no consumen la verificación")
}

func TestMovement_FinalizarSinVerificacion(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 5})
	require.NoError(t, err)

	_, err = f.uc.Finalize(f.ctx, operator, mov.ID)
	var ce *faceid.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, faceid.ReasonMissing, ce.Reason)
	assert.ErrorIs(t, err, faceid.ErrVerdictInvalid)
	assert.Zero(t, f.qty(t, f.productA))

	got, err := f.uc.Get(f.ctx, operator, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, got.Status)
}

func TestMovement_VerificacionExpirada(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 5})
	require.NoError(t, err)
	f.bind(t, operator)

	f.now = f.now.Add(f.gate.Timeout + time.Second)
	_, err = f.uc.Finalize(f.ctx, operator, mov.ID)
	var ce *faceid.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, faceid.ReasonExpired, ce.Reason)
	assert.Zero(t, f.qty(t, f.productA))
}

func TestMovement_VerificacionDeOtraEstacion(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 5})
	require.NoError(t, err)
	f.bind(t, operator)

	moved := operator
	moved.Station = "192.168.1.50"
	_, err = f.uc.Finalize(f.ctx, moved, mov.ID)
	var ce *faceid.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, faceid.ReasonStationMismatch, ce.Reason)

	// El intento desde otra estación no consume la verificación de la estación legítima.
	b, err := f.verdicts.Get(f.ctx, operator.SessionID)
	require.NoError(t, err)
	require.NotNil(t, b)

	done, err := f.uc.Finalize(f.ctx, operator, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVerified, done.Status)
	assert.Equal(t, int64(5), f.qty(t, f.productA))
}

func TestMovement_VerificacionDeOtraCuenta(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 5})
	require.NoError(t, err)

	// Binding emitido para otra cuenta guardado bajo la sesión del operador.
	require.NoError(t, f.verdicts.Put(f.ctx, operator.SessionID, faceid.VerdictBinding{
		EmployeeID: f.employee, AccountID: operator2.UserID, Station: operator.Station, IssuedAt: f.now, Confidence: 30,
	}, f.gate.Timeout))

	_, err = f.uc.Finalize(f.ctx, operator, mov.ID)
	var ce *faceid.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, faceid.ReasonAccountMismatch, ce.Reason)
}

func TestMovement_VerificacionEsDeUnSoloUso(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 5})
	require.NoError(t, err)

	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 5})
	require.NoError(t, err)

	_, err = f.uc.Finalize(f.ctx, operator, mov.ID)
	assert.ErrorIs(t, err, faceid.ErrVerdictInvalid, "la verificación anterior ya se consumió")
	assert.Equal(t, int64(5), f.qty(t, f.productA))
}

func TestMovement_CommitFallidoRestituyeLaVerificacion(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 10})
	require.NoError(t, err)

	// Dos borradores de salida de distintos operadores compiten por el mismo stock.
	movA, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator, movA.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 8})
	require.NoError(t, err)
	movB, err := f.uc.Create(f.ctx, operator2, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	_, err = f.uc.AddItem(f.ctx, operator2, movB.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 8})
	require.NoError(t, err)

	f.bind(t, operator2)
	_, err = f.uc.Finalize(f.ctx, operator2, movB.ID)
	require.NoError(t, err)

	f.bind(t, operator)
	f.now = f.now.Add(time.Minute)
	_, err = f.uc.Finalize(f.ctx, operator, movA.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), f.qty(t, f.productA))

	b, err := f.verdicts.Get(f.ctx, operator.SessionID)
	require.NoError(t, err)
	require.NotNil(t, b, "la verificación vuelve a estar disponible tras un commit rechazado")
	assert.Equal(t, f.employee, b.EmployeeID)

	got, err := f.uc.Get(f.ctx, operator, movA.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, got.Status)
}

func TestMovement_CancelarYDescartar(t *testing.T) {
	f := newFixture(t)
	mov, err := f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.NoError(t, err)
	require.NoError(t, f.uc.Cancel(f.ctx, operator, mov.ID))

	err = f.uc.Cancel(f.ctx, operator, mov.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotPending)

	_, err = f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	n, err := f.uc.Discard(f.ctx, operator, entity.MovementTypeOUT)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.uc.Discard(f.ctx, operator, "SIDEWAYS")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovement_ListarFiltraPorTipoYEstado(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 10})
	require.NoError(t, err)
	_, err = f.move(t, operator, entity.MovementTypeOUT, map[int64]int64{f.productA: 1})
	require.NoError(t, err)
	_, err = f.uc.Create(f.ctx, operator, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
	require.NoError(t, err)

	out, err := f.uc.List(f.ctx, viewer, dto.MovementListRequest{Type: entity.MovementTypeOUT, Status: entity.MovementStatusVerified})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 1, out.Page.Total)
	assert.Equal(t, dto.DefaultPageSize, out.Page.Limit)

	all, err := f.uc.List(f.ctx, viewer, dto.MovementListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)
}

func TestMovement_SalidasConcurrentesNoDejanStockNegativo(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, operator, entity.MovementTypeIN, map[int64]int64{f.productA: 50})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, rejected int
	for i := range workers {
		actor := entity.Actor{
			UserID:    int64(100 + i),
			Role:      entity.RoleOperator,
			SessionID: fmt.Sprintf("sess-%d", i),
			Station:   "10.0.1.1",
		}
		mov, err := f.uc.Create(f.ctx, actor, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
		require.NoError(t, err)
		_, err = f.uc.AddItem(f.ctx, actor, mov.ID, dto.AddMovementItemRequest{ProductID: f.productA, Quantity: 10})
		require.NoError(t, err)
		f.bind(t, actor)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Finalize(f.ctx, actor, mov.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, rejected)
	assert.Zero(t, f.qty(t, f.productA))
}

// El stock de cada producto es siempre la suma firmada de los movimientos aplicados
// (verificados, incluidos los que luego fueron revertidos y sus reversiones).
func TestMovement_StockIgualASumaDeMovimientosAplicados(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewPCG(7, 11))
	var verified []int64

	for range 60 {
		productID := f.productA
		if rng.IntN(2) == 0 {
			productID = f.productB
		}
		switch rng.IntN(3) {
		case 0, 1:
			movementType := entity.MovementTypeIN
			if rng.IntN(2) == 0 {
				movementType = entity.MovementTypeOUT
			}
			resp, err := f.move(t, operator, movementType, map[int64]int64{productID: int64(rng.IntN(20) + 1)})
			if err == nil {
				verified = append(verified, resp.ID)
			} else {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				_, derr := f.uc.Discard(f.ctx, operator, movementType)
				require.NoError(t, derr)
			}
		case 2:
			if len(verified) == 0 {
				continue
			}
			target := verified[rng.IntN(len(verified))]
			if _, err := f.uc.Reverse(f.ctx, admin, target, ""); err != nil {
				require.True(t,
					errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrMovementNotVerified),
					"error inesperado: %v", err)
			}
		}
		f.now = f.now.Add(time.Second)
	}

	movements, _, err := f.store.Movements().List(f.ctx, entity.MovementFilter{})
	require.NoError(t, err)
	ledger := map[int64]int64{}
	for _, m := range movements {
		if !m.FaceVerified {
			continue
		}
		for _, it := range m.Items {
			ledger[it.ProductID] += entity.StockDelta(m.Type, it.Quantity)
		}
	}
	for _, id := range []int64{f.productA, f.productB} {
		got := f.qty(t, id)
		assert.Equal(t, ledger[id], got, "producto %d", id)
		assert.GreaterOrEqual(t, got, int64(0))
	}
}
