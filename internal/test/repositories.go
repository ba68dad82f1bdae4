package test

import (
	"context"
	"strings"
	"sync"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

// MemoryKV is an in-memory key-value store with fault injection.
type MemoryKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	failOn map[string]error
	// Writes counts successful Put, Create, Update and Delete calls.
	Writes int
}

// NewMemoryKV returns an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte), failOn: make(map[string]error)}
}

// FailOn makes every operation on keys starting with prefix return err.
// A nil err clears the fault.
func (m *MemoryKV) FailOn(prefix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failOn, prefix)
		return
	}
	m.failOn[prefix] = err
}

// Raw returns the stored bytes for key without decoding.
func (m *MemoryKV) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// SetRaw stores bytes for key bypassing fault injection.
func (m *MemoryKV) SetRaw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}

// Keys returns the number of stored keys with the given prefix.
func (m *MemoryKV) Keys(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

func (m *MemoryKV) fault(key string) error {
	for prefix, err := range m.failOn {
		if strings.HasPrefix(key, prefix) {
			return err
		}
	}
	return nil
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(key); err != nil {
		return nil, err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(key); err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), value...)
	m.Writes++
	return nil
}

func (m *MemoryKV) Create(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(key); err != nil {
		return err
	}
	if _, ok := m.data[key]; ok {
		return domainErrors.ErrAlreadyExists
	}
	m.data[key] = append([]byte(nil), value...)
	m.Writes++
	return nil
}

func (m *MemoryKV) Update(_ context.Context, key string, fn repository.UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(key); err != nil {
		return err
	}
	var current []byte
	if v, ok := m.data[key]; ok {
		current = append([]byte(nil), v...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	m.data[key] = next
	m.Writes++
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(key); err != nil {
		return err
	}
	delete(m.data, key)
	m.Writes++
	return nil
}

func (m *MemoryKV) HealthCheck(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault("")
}

// SealerStub tags plaintext with the user id instead of encrypting it.
type SealerStub struct {
	Err error
}

func (s SealerStub) Seal(userID, plaintext string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return "sealed:" + userID + ":" + plaintext, nil
}

func (s SealerStub) Open(userID, sealed string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	prefix := "sealed:" + userID + ":"
	if !strings.HasPrefix(sealed, prefix) {
		return "", domainErrors.ErrInvalidInput
	}
	return strings.TrimPrefix(sealed, prefix), nil
}

var _ repository.KeyValueStore = (*MemoryKV)(nil)
