// Package faceid: compuerta de veredictos biométricos.
// Convierte un veredicto del reconocedor facial en un VerdictBinding atado a la cuenta,
// a la estación de origen y a un instante, y valida ese binding al finalizar un movimiento.
// No guarda estado: el almacenamiento del binding es un puerto externo (repository.VerdictStore).
package faceid

import (
	"errors"
	"fmt"
	"time"
)

// Valores por defecto.
const (
	DefaultTimeout   = 300 * time.Second
	DefaultThreshold = 80.0 // confianza estrictamente menor = coincidencia (menor es mejor)
)

// ErrVerdictInvalid error único hacia el usuario: "verifique su rostro de nuevo".
var ErrVerdictInvalid = errors.New("verificación facial requerida")

// ErrNoMatch el reconocedor no identificó a nadie con confianza suficiente.
var ErrNoMatch = errors.New("rostro no reconocido")

// Reason motivo interno del rechazo; solo para logs.
type Reason string

const (
	ReasonMissing         Reason = "missing"
	ReasonExpired         Reason = "expired"
	ReasonAccountMismatch Reason = "account_mismatch"
	ReasonStationMismatch Reason = "station_mismatch"
)

// CheckError rechazo del binding. errors.Is(err, ErrVerdictInvalid) siempre es verdadero.
type CheckError struct {
	Reason Reason
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrVerdictInvalid.Error(), e.Reason)
}

func (e *CheckError) Unwrap() error { return ErrVerdictInvalid }

// Verdict resultado crudo del reconocedor.
type Verdict struct {
	Matched    bool
	Label      int
	Confidence float64
}

// VerdictBinding autorización emitida tras un veredicto positivo.
type VerdictBinding struct {
	EmployeeID int64     `json:"employee_id"`
	AccountID  int64     `json:"account_id"`
	Station    string    `json:"station"`
	IssuedAt   time.Time `json:"issued_at"`
	Confidence float64   `json:"confidence"`
}

// Gate reglas de emisión y validación de bindings.
type Gate struct {
	Timeout   time.Duration
	Threshold float64
}

// NewGate construye la compuerta; valores no positivos usan los de por defecto.
func NewGate(timeout time.Duration, threshold float64) Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Gate{Timeout: timeout, Threshold: threshold}
}

// Accepts indica si el veredicto es una coincidencia válida.
func (g Gate) Accepts(v Verdict) bool {
	return v.Matched && v.Confidence >= 0 && v.Confidence < g.Threshold
}

// Authorize emite el binding para employeeID, ya resuelto a partir de v.Label.
func (g Gate) Authorize(v Verdict, employeeID, accountID int64, station string, now time.Time) (VerdictBinding, error) {
	if !g.Accepts(v) {
		return VerdictBinding{}, ErrNoMatch
	}
	return VerdictBinding{
		EmployeeID: employeeID,
		AccountID:  accountID,
		Station:    station,
		IssuedAt:   now,
		Confidence: v.Confidence,
	}, nil
}

// Check valida el binding para la cuenta y estación actuales y devuelve el empleado verificado.
// Orden: vigencia, cuenta, estación.
func (g Gate) Check(b *VerdictBinding, accountID int64, station string, now time.Time) (int64, error) {
	if b == nil {
		return 0, &CheckError{Reason: ReasonMissing}
	}
	if now.Sub(b.IssuedAt) > g.Timeout {
		return 0, &CheckError{Reason: ReasonExpired}
	}
	if b.AccountID != accountID {
		return 0, &CheckError{Reason: ReasonAccountMismatch}
	}
	if b.Station != station {
		return 0, &CheckError{Reason: ReasonStationMismatch}
	}
	return b.EmployeeID, nil
}

// Remaining tiempo de vida restante del binding (0 si expiró).
func (g Gate) Remaining(b VerdictBinding, now time.Time) time.Duration {
	left := g.Timeout - now.Sub(b.IssuedAt)
	if left < 0 {
		return 0
	}
	return left
}
