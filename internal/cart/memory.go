package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryStore держит корзины в памяти процесса. Корзина, которую не трогали дольше ttl,
// считается пустой. ttl <= 0 - без срока.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	carts map[string]memoryEntry
}

type memoryEntry struct {
	lines   []Line
	touched time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, carts: map[string]memoryEntry{}}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	if m.expired(e) {
		delete(m.carts, sessionID)
		return nil, nil
	}
	return append([]Line(nil), e.lines...), nil
}

func (m *MemoryStore) Put(_ context.Context, sessionID string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(lines) == 0 {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = memoryEntry{lines: append([]Line(nil), lines...), touched: m.now()}
	m.sweep()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.carts, sessionID)
	m.mu.Unlock()
	return nil
}

// Len — число живых корзин
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return len(m.carts)
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.touched) > m.ttl
}

// sweep вызывается под mu
func (m *MemoryStore) sweep() {
	for id, e := range m.carts {
		if m.expired(e) {
			delete(m.carts, id)
		}
	}
}
