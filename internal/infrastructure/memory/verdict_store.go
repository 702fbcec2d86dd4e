package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.VerdictStore = (*VerdictStore)(nil)

type verdictEntry struct {
	binding   faceid.VerdictBinding
	expiresAt time.Time
}

// VerdictStore bindings faciales en memoria con expiración, para una sola instancia.
type VerdictStore struct {
	mu      sync.Mutex
	entries map[string]verdictEntry
	now     func() time.Time
}

// NewVerdictStore crea el almacén vacío.
func NewVerdictStore() *VerdictStore {
	return &VerdictStore{entries: map[string]verdictEntry{}, now: time.Now}
}

func (s *VerdictStore) Put(_ context.Context, sessionID string, b faceid.VerdictBinding, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = verdictEntry{binding: b, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *VerdictStore) Get(_ context.Context, sessionID string) (*faceid.VerdictBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(sessionID), nil
}

func (s *VerdictStore) Take(_ context.Context, sessionID string) (*faceid.VerdictBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.lookup(sessionID)
	delete(s.entries, sessionID)
	return b, nil
}

func (s *VerdictStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *VerdictStore) lookup(sessionID string) *faceid.VerdictBinding {
	e, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return nil
	}
	b := e.binding
	return &b
}
