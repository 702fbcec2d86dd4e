package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
)

// VerdictStore guarda el binding de verificación facial por sesión.
// Get y Take devuelven (nil, nil) si no hay binding vigente.
type VerdictStore interface {
	Put(ctx context.Context, sessionID string, binding faceid.VerdictBinding, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*faceid.VerdictBinding, error)
	// Take obtiene y elimina el binding en una sola operación atómica.
	Take(ctx context.Context, sessionID string) (*faceid.VerdictBinding, error)
	Delete(ctx context.Context, sessionID string) error
}
