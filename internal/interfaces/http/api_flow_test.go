package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-faceid/internal/application/auth"
	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/almacen-faceid/internal/interfaces/http"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// stubBiometric reconoce siempre la misma etiqueta con confianza fija.
type stubBiometric struct {
	label      int
	confidence float64
	err        error
}

func (s *stubBiometric) Verify(context.Context, []byte) (faceid.Verdict, error) {
	if s.err != nil {
		return faceid.Verdict{}, s.err
	}
	return faceid.Verdict{Matched: true, Label: s.label, Confidence: s.confidence}, nil
}

func (s *stubBiometric) Enroll(context.Context, int, [][]byte) error { return s.err }

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type apiEnv struct {
	app       *fiber.App
	store     *memory.Store
	biometric *stubBiometric
}

func newAPIEnv(t *testing.T, checks map[string]apphttp.Pinger) *apiEnv {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	verdicts := memory.NewVerdictStore()
	gate := faceid.NewGate(5*time.Minute, 80)
	bio := &stubBiometric{label: 1, confidence: 35.5}

	for _, u := range []struct{ name, role string }{
		{"admin", entity.RoleAdmin},
		{"bodega", entity.RoleOperator},
		{"consulta", entity.RoleViewer},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.name+"-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, store.Users().Create(context.Background(), &entity.User{
			Username: u.name, PasswordHash: string(hash), Role: u.role, IsActive: true,
		}))
	}

	engine := inventory.NewEngine(store, log)
	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, log)
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, log),
		CategoryUC:   usecase.NewCategoryUseCase(store.Categories()),
		ProductUC:    usecase.NewProductUseCase(store, store.Products(), store.Stock()),
		EmployeeUC:   usecase.NewEmployeeUseCase(store.Employees(), bio, 1, log),
		FaceIDUC:     usecase.NewFaceIDUseCase(bio, store.Employees(), verdicts, gate, log),
		MovementUC:   inventory.NewMovementUseCase(store, store.Movements(), engine, gate, verdicts, log),
		JWTSecret:    testJWTSecret,
		HealthChecks: checks,
	})
	return &apiEnv{app: app, store: store, biometric: bio}
}

func (e *apiEnv) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (e *apiEnv) login(t *testing.T, username string) string {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: username + "-pass"})
	require.Equal(t, http.StatusOK, status, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

// seedCatalog crea categoría, producto y empleado con etiqueta 1 vía la API.
func (e *apiEnv) seedCatalog(t *testing.T, adminToken string) (productID, employeeID int64) {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/categories", adminToken, dto.CreateCategoryRequest{Name: "Bebidas"})
	require.Equal(t, http.StatusCreated, status, string(body))
	cat := decode[dto.CategoryResponse](t, body)

	status, body = e.call(t, http.MethodPost, "/api/products", adminToken, dto.CreateProductRequest{
		Name: "Agua 600ml", SKU: "BEB-001", Barcode: "7702001000011", CategoryID: cat.ID, MinStock: 10,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	product := decode[dto.ProductResponse](t, body)

	label := 1
	status, body = e.call(t, http.MethodPost, "/api/employees", adminToken, dto.CreateEmployeeRequest{
		Name: "Carla Ruiz", EmployeeID: "EMP010", FaceLabel: &label,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	employee := decode[dto.EmployeeResponse](t, body)
	return product.ID, employee.ID
}

func cameraFrame() fiber.Map {
	return fiber.Map{"image": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("frame"))}
}

func TestAPI_FlujoCompletoDeEntradaYReversion(t *testing.T) {
	env := newAPIEnv(t, nil)
	adminToken := env.login(t, "admin")
	operatorToken := env.login(t, "bodega")
	productID, employeeID := env.seedCatalog(t, adminToken)

	status, body := env.call(t, http.MethodPost, "/api/movements", operatorToken, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	require.Equal(t, http.StatusCreated, status, string(body))
	mov := decode[dto.MovementResponse](t, body)
	assert.Equal(t, entity.MovementStatusPending, mov.Status)

	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/items", mov.ID), operatorToken,
		fiber.Map{"product_id": productID, "quantity": 120, "unit_price": "1500.00"})
	require.Equal(t, http.StatusOK, status, string(body))

	// sin verificación facial no se confirma
	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/finalize", mov.ID), operatorToken, nil)
	require.Equal(t, http.StatusForbidden, status, string(body))
	assert.Equal(t, "FACE_NOT_VERIFIED", decode[dto.ErrorResponse](t, body).Code)

	status, body = env.call(t, http.MethodPost, "/api/faceid/verify", operatorToken, cameraFrame())
	require.Equal(t, http.StatusOK, status, string(body))
	face := decode[dto.FaceStatusResponse](t, body)
	assert.True(t, face.Verified)
	assert.Equal(t, employeeID, face.EmployeeID)

	status, body = env.call(t, http.MethodGet, "/api/faceid/status", operatorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.FaceStatusResponse](t, body).Verified)

	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/finalize", mov.ID), operatorToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	done := decode[dto.MovementResponse](t, body)
	assert.Equal(t, entity.MovementStatusVerified, done.Status)
	assert.True(t, done.FaceVerified)
	require.NotNil(t, done.FaceEmployeeID)
	assert.Equal(t, employeeID, *done.FaceEmployeeID)

	// el binding se consume al confirmar
	status, body = env.call(t, http.MethodGet, "/api/faceid/status", operatorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[dto.FaceStatusResponse](t, body).Verified)

	status, body = env.call(t, http.MethodGet, "/api/products/lookup?code=7702001000011", operatorToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	product := decode[dto.ProductResponse](t, body)
	require.NotNil(t, product.CurrentQty)
	assert.Equal(t, int64(120), *product.CurrentQty)

	// el operador no revierte
	status, _ = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/reverse", mov.ID), operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/reverse", mov.ID), adminToken,
		dto.ReverseMovementRequest{Reason: "conteo duplicado"})
	require.Equal(t, http.StatusCreated, status, string(body))
	rev := decode[dto.MovementResponse](t, body)
	assert.Equal(t, entity.MovementTypeOUT, rev.Type)
	require.NotNil(t, rev.ReversedMovementID)
	assert.Equal(t, mov.ID, *rev.ReversedMovementID)

	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/reverse", mov.ID), adminToken, nil)
	require.Equal(t, http.StatusConflict, status, string(body))

	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/reverse", rev.ID), adminToken, nil)
	require.Equal(t, http.StatusConflict, status, string(body))
	assert.Equal(t, "REVERSAL_NOT_REVERSIBLE", decode[dto.ErrorResponse](t, body).Code)

	status, body = env.call(t, http.MethodGet, fmt.Sprintf("/api/products/%d", productID), operatorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, *decode[dto.ProductResponse](t, body).CurrentQty)
}

func TestAPI_SalidaSinStockDevuelveDetalle(t *testing.T) {
	env := newAPIEnv(t, nil)
	adminToken := env.login(t, "admin")
	operatorToken := env.login(t, "bodega")
	productID, _ := env.seedCatalog(t, adminToken)

	status, body := env.call(t, http.MethodPost, "/api/movements", operatorToken, dto.CreateMovementRequest{Type: entity.MovementTypeOUT})
	require.Equal(t, http.StatusCreated, status, string(body))
	mov := decode[dto.MovementResponse](t, body)

	status, body = env.call(t, http.MethodPost, fmt.Sprintf("/api/movements/%d/items", mov.ID), operatorToken,
		fiber.Map{"product_id": productID, "quantity": 5})
	require.Equal(t, http.StatusConflict, status, string(body))
	out := decode[apphttp.InsufficientStockResponse](t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
	assert.Equal(t, productID, out.ProductID)
	assert.Equal(t, "BEB-001", out.SKU)
	assert.Zero(t, out.Available)
	assert.Equal(t, int64(5), out.Requested)
}

func TestAPI_RostroNoReconocido(t *testing.T) {
	env := newAPIEnv(t, nil)
	adminToken := env.login(t, "admin")
	operatorToken := env.login(t, "bodega")
	env.seedCatalog(t, adminToken)

	env.biometric.confidence = 95
	status, body := env.call(t, http.MethodPost, "/api/faceid/verify", operatorToken, cameraFrame())
	require.Equal(t, http.StatusUnprocessableEntity, status, string(body))
	assert.Equal(t, "FACE_NOT_RECOGNIZED", decode[dto.ErrorResponse](t, body).Code)

	env.biometric.err = fmt.Errorf("dial: %w", ports.ErrBiometricUnavailable)
	status, body = env.call(t, http.MethodPost, "/api/faceid/verify", operatorToken, cameraFrame())
	require.Equal(t, http.StatusServiceUnavailable, status, string(body))
	assert.Equal(t, "BIOMETRIC_UNAVAILABLE", decode[dto.ErrorResponse](t, body).Code)
}

func TestAPI_ValidacionPorCampo(t *testing.T) {
	env := newAPIEnv(t, nil)
	operatorToken := env.login(t, "bodega")

	status, body := env.call(t, http.MethodPost, "/api/movements", operatorToken, fiber.Map{"type": "TRANSFER"})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	out := decode[dto.ValidationErrorResponse](t, body)
	assert.Equal(t, "VALIDATION", out.Code)
	require.Len(t, out.Fields, 1)
	assert.Equal(t, "type", out.Fields[0].Field)
	assert.Equal(t, "debe ser uno de: IN OUT", out.Fields[0].Message)

	status, body = env.call(t, http.MethodGet, "/api/movements/abc", operatorToken, nil)
	require.Equal(t, http.StatusBadRequest, status, string(body))

	req := httptest.NewRequest(http.MethodPost, "/api/movements", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+operatorToken)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_PermisosPorRol(t *testing.T) {
	env := newAPIEnv(t, nil)
	viewerToken := env.login(t, "consulta")
	operatorToken := env.login(t, "bodega")

	status, _ := env.call(t, http.MethodGet, "/api/movements", viewerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.call(t, http.MethodPost, "/api/movements", viewerToken, dto.CreateMovementRequest{Type: entity.MovementTypeIN})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.call(t, http.MethodPost, "/api/categories", operatorToken, dto.CreateCategoryRequest{Name: "X"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.call(t, http.MethodGet, "/api/users", operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "bodega", Password: "mala"})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[dto.ErrorResponse](t, body).Code)
}

func TestAPI_Health(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("sin conexión") })

	env := newAPIEnv(t, map[string]apphttp.Pinger{"postgres": up})
	status, body := env.call(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	out := decode[map[string]any](t, body)
	assert.Equal(t, "ok", out["status"])

	env = newAPIEnv(t, map[string]apphttp.Pinger{"postgres": up, "redis": down})
	status, body = env.call(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	out = decode[map[string]any](t, body)
	assert.Equal(t, "degraded", out["status"])
	assert.Equal(t, map[string]any{"postgres": "up", "redis": "down"}, out["dependencies"])
}
