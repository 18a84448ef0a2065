package sessions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yoockh/admission/internal/chatbot"
)

type memItem struct {
	data      []byte
	expiresAt time.Time
}

// memLock is removed from the map once no caller holds or waits on it.
type memLock struct {
	ch   chan struct{}
	refs int
}

// MemoryStore is the in-process Store used when Redis is not configured.
// Sessions are kept serialised so callers never share a mutable value.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]memItem
	locks map[string]*memLock
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		items: map[string]memItem{},
		locks: map[string]*memLock{},
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*chatbot.Session, error) {
	m.mu.Lock()
	it, ok := m.items[id]
	if ok && m.now().After(it.expiresAt) {
		delete(m.items, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var s chatbot.Session
	if err := json.Unmarshal(it.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *chatbot.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[s.ID] = memItem{data: b, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &memLock{ch: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(id, l)
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.release(id, l)
		})
	}, nil
}

func (m *MemoryStore) release(id string, l *memLock) {
	m.mu.Lock()
	l.refs--
	if l.refs == 0 && m.locks[id] == l {
		delete(m.locks, id)
	}
	m.mu.Unlock()
}

// Sweep drops expired sessions. Intended to run on a ticker.
func (m *MemoryStore) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, it := range m.items {
		if now.After(it.expiresAt) {
			delete(m.items, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
