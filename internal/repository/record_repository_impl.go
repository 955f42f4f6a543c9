package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"healthcare-admin-console/internal/domain/entity"
	domainRepo "healthcare-admin-console/internal/domain/repository"
	"healthcare-admin-console/internal/infrastructure/upstream"

	"github.com/sirupsen/logrus"
)

type recordRepository struct {
	client      *upstream.Client
	fileBaseURL string
	log         *logrus.Logger
}

func NewRecordRepository(client *upstream.Client, fileBaseURL string, log *logrus.Logger) domainRepo.RecordRepository {
	return &recordRepository{
		client:      client,
		fileBaseURL: fileBaseURL,
		log:         log,
	}
}

// FindAll fetches the whole collection of a screen in one call: GET /<resource> -> { <listKey>: [...] }
func (r *recordRepository) FindAll(ctx context.Context, screen *entity.Screen, scope entity.Scope) ([]entity.Record, error) {
	path, err := screen.ListPath(scope)
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := r.client.GetJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	rawList, ok := payload[screen.ListKey]
	if !ok {
		return nil, fmt.Errorf("%w: response of %s has no %q list", upstream.ErrUpstream, path, screen.ListKey)
	}

	var items []map[string]any
	if string(rawList) != "null" {
		if err := json.Unmarshal(rawList, &items); err != nil {
			return nil, fmt.Errorf("%w: decode %q list: %w", upstream.ErrUpstream, screen.ListKey, err)
		}
	}

	records := make([]entity.Record, 0, len(items))
	for _, item := range items {
		record := entity.NewRecord(item, screen, r.fileBaseURL)
		if record.ID == "" {
			r.log.Warnf("Skipping %s record without %q", screen.Name, screen.IDField)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// UpdateStatus performs PUT /<resource>/update/{id} with { newStatus }
func (r *recordRepository) UpdateStatus(ctx context.Context, screen *entity.Screen, id string, status string) error {
	path := mutationPath(screen, "update", url.PathEscape(id))
	return r.client.SendJSON(ctx, http.MethodPut, path, map[string]string{"newStatus": status})
}

// Delete performs DELETE /<resource>/{id}
func (r *recordRepository) Delete(ctx context.Context, screen *entity.Screen, id string) error {
	return r.client.Delete(ctx, mutationPath(screen, url.PathEscape(id)))
}

// UploadAttachment performs POST /<resource>/upload-{kind}/{id}; the form field is named after the kind
func (r *recordRepository) UploadAttachment(ctx context.Context, screen *entity.Screen, id string, kind entity.AttachmentKind, filename string, content io.Reader) error {
	path := mutationPath(screen, "upload-"+string(kind), url.PathEscape(id))
	return r.client.PostMultipart(ctx, path, string(kind), filename, content)
}

func mutationPath(screen *entity.Screen, parts ...string) string {
	return strings.TrimRight(screen.MutationResource, "/") + "/" + strings.Join(parts, "/")
}
