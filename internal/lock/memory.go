// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lock

import (
	"context"
	"sync"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/metrics"
	"github.com/google/uuid"
)

const backendMemory = "memory"

// MemoryService holds locks in process. Each key owns a one-slot semaphore.
type MemoryService struct {
	mu    sync.Mutex
	slots map[Key]*slot
}

type slot struct {
	sem   chan struct{}
	token string
}

// NewMemoryService creates an empty lock registry.
func NewMemoryService() *MemoryService {
	return &MemoryService{slots: make(map[Key]*slot)}
}

func (m *MemoryService) slotFor(key Key) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	return s
}

func (m *MemoryService) TryLock(ctx context.Context, key Key, timeout time.Duration) (Handle, error) {
	start := time.Now()
	s := m.slotFor(key)

	h, err := m.acquire(ctx, s, key, timeout)
	metrics.RecordLockAcquire(backendMemory, key.Scope, resultLabel(err), time.Since(start))
	return h, err
}

func (m *MemoryService) acquire(ctx context.Context, s *slot, key Key, timeout time.Duration) (Handle, error) {
	select {
	case s.sem <- struct{}{}:
		return m.held(s, key), nil
	default:
	}
	if timeout <= 0 {
		return nil, ErrTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case s.sem <- struct{}{}:
		return m.held(s, key), nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MemoryService) held(s *slot, key Key) *memoryHandle {
	token := uuid.NewString()
	m.mu.Lock()
	s.token = token
	m.mu.Unlock()
	return &memoryHandle{svc: m, slot: s, key: key, token: token}
}

type memoryHandle struct {
	svc   *MemoryService
	slot  *slot
	key   Key
	token string
}

func (h *memoryHandle) Key() Key      { return h.key }
func (h *memoryHandle) Token() string { return h.token }

func (h *memoryHandle) Release(ctx context.Context) error {
	h.svc.mu.Lock()
	if h.slot.token != h.token {
		h.svc.mu.Unlock()
		return ErrNotHeld
	}
	h.slot.token = ""
	h.svc.mu.Unlock()

	<-h.slot.sem
	metrics.RecordLockRelease(backendMemory)
	return nil
}
