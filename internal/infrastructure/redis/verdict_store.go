package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
	"github.com/jhoicas/almacen-faceid/pkg/config"
)

var _ repository.VerdictStore = (*VerdictStore)(nil)

const defaultKeyPrefix = "faceid:binding:"

// VerdictStore guarda el binding facial de cada sesión en Redis con TTL.
// La expiración de la clave acompaña al timeout; la validez final la decide faceid.Gate.
type VerdictStore struct {
	client    *goredis.Client
	keyPrefix string
}

// NewVerdictStore conecta con Redis y verifica la conexión.
func NewVerdictStore(ctx context.Context, cfg config.RedisConfig) (*VerdictStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewVerdictStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewVerdictStoreWithClient usa un cliente existente.
func NewVerdictStoreWithClient(client *goredis.Client, keyPrefix string) *VerdictStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &VerdictStore{client: client, keyPrefix: keyPrefix}
}

// Put reemplaza el binding de la sesión.
func (s *VerdictStore) Put(ctx context.Context, sessionID string, b faceid.VerdictBinding, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("serializar binding: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("guardar binding: %w", err)
	}
	return nil
}

// Get lee el binding sin consumirlo.
func (s *VerdictStore) Get(ctx context.Context, sessionID string) (*faceid.VerdictBinding, error) {
	return decode(s.client.Get(ctx, s.key(sessionID)).Bytes())
}

// Take lee y elimina el binding con GETDEL.
func (s *VerdictStore) Take(ctx context.Context, sessionID string) (*faceid.VerdictBinding, error) {
	return decode(s.client.GetDel(ctx, s.key(sessionID)).Bytes())
}

// Delete elimina el binding de la sesión.
func (s *VerdictStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("eliminar binding: %w", err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (s *VerdictStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (s *VerdictStore) Close() error {
	return s.client.Close()
}

func (s *VerdictStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func decode(raw []byte, err error) (*faceid.VerdictBinding, error) {
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer binding: %w", err)
	}
	var b faceid.VerdictBinding
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("deserializar binding: %w", err)
	}
	return &b, nil
}
