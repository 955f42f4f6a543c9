package repository

import (
	"context"
	"time"

	"healthcare-admin-console/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionRepository keeps open screen sessions.
// FindByID returns (nil, nil) when the session does not exist or has expired.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.ScreenSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ScreenSession, error)
	Save(ctx context.Context, session *entity.ScreenSession) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AcquireBusy marks a bulk operation as running; false means one is already in flight
	AcquireBusy(ctx context.Context, id uuid.UUID, operation string, ttl time.Duration) (bool, error)
	ReleaseBusy(ctx context.Context, id uuid.UUID) error
}
