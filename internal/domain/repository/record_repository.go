package repository

import (
	"context"
	"io"

	"healthcare-admin-console/internal/domain/entity"
)

// RecordRepository talks to the platform REST API that owns the records
type RecordRepository interface {
	FindAll(ctx context.Context, screen *entity.Screen, scope entity.Scope) ([]entity.Record, error)
	UpdateStatus(ctx context.Context, screen *entity.Screen, id string, status string) error
	Delete(ctx context.Context, screen *entity.Screen, id string) error
	UploadAttachment(ctx context.Context, screen *entity.Screen, id string, kind entity.AttachmentKind, filename string, content io.Reader) error
}

// AttachmentFetcher downloads one attachment file as raw bytes
type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
