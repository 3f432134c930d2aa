package store

import (
	"context"
	"errors"
	"sync"

	"github.com/go-trading/tradestation-go/pkg/core"
)

var (
	// ErrNilToken is returned when attempting to save a nil token.
	ErrNilToken = errors.New("token cannot be nil")
)

// MemoryStore implements the core.TokenStore interface using process
// memory. It is the default backend: the token lives exactly as long as
// the process. Reads and writes are guarded so a concurrent refresh can
// never expose a half-updated token to an in-flight request.
type MemoryStore struct {
	mu    sync.RWMutex
	token *core.Token
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored token. It returns an error if the token is nil.
func (m *MemoryStore) Save(ctx context.Context, token *core.Token) error {
	if token == nil {
		return ErrNilToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *token
	m.token = &clone
	return nil
}

// Load returns a copy of the stored token.
// It returns core.ErrTokenNotFound if no token has been saved yet.
func (m *MemoryStore) Load(ctx context.Context) (*core.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return nil, core.ErrTokenNotFound
	}

	clone := *m.token
	return &clone, nil
}
