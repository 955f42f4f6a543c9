package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"healthcare-admin-console/internal/domain/entity"
	domainRepo "healthcare-admin-console/internal/domain/repository"

	"github.com/google/uuid"
)

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

// memorySessionRepository keeps sessions in process memory. Values are stored
// serialized so callers never share state with the store.
type memorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]memorySession
	busy     map[uuid.UUID]time.Time
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) domainRepo.SessionRepository {
	return &memorySessionRepository{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]memorySession),
		busy:     make(map[uuid.UUID]time.Time),
		now:      time.Now,
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, session *entity.ScreenSession) error {
	return r.Save(ctx, session)
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ScreenSession, error) {
	r.mu.Lock()
	stored, ok := r.sessions[id]
	if ok && r.now().After(stored.expiresAt) {
		delete(r.sessions, id)
		delete(r.busy, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, nil
	}

	var session entity.ScreenSession
	if err := json.Unmarshal(stored.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *memorySessionRepository) Save(ctx context.Context, session *entity.ScreenSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = memorySession{data: data, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.busy, id)
	return nil
}

func (r *memorySessionRepository) AcquireBusy(ctx context.Context, id uuid.UUID, operation string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if until, ok := r.busy[id]; ok && r.now().Before(until) {
		return false, nil
	}
	r.busy[id] = r.now().Add(ttl)
	return true, nil
}

func (r *memorySessionRepository) ReleaseBusy(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, id)
	return nil
}
