package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthcare-admin-console/internal/domain/entity"
	domainRepo "healthcare-admin-console/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefixes for screen sessions
	RedisSessionKeyPrefix = "console:session:"
	RedisBusyKeyPrefix    = "console:session-busy:"
)

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) domainRepo.SessionRepository {
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id uuid.UUID) string {
	return RedisSessionKeyPrefix + id.String()
}

func busyKey(id uuid.UUID) string {
	return RedisBusyKeyPrefix + id.String()
}

func (r *redisSessionRepository) Create(ctx context.Context, session *entity.ScreenSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session %s: %w", session.ID, err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

func (r *redisSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ScreenSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var session entity.ScreenSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

// Save overwrites the session and refreshes its TTL
func (r *redisSessionRepository) Save(ctx context.Context, session *entity.ScreenSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id), busyKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// AcquireBusy uses SET NX so only one bulk operation per session runs across all instances
func (r *redisSessionRepository) AcquireBusy(ctx context.Context, id uuid.UUID, operation string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, busyKey(id), operation, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire busy flag for session %s: %w", id, err)
	}
	return ok, nil
}

func (r *redisSessionRepository) ReleaseBusy(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, busyKey(id)).Err(); err != nil {
		return fmt.Errorf("release busy flag for session %s: %w", id, err)
	}
	return nil
}
