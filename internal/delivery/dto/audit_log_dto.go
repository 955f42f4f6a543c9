package dto

import (
	"healthcare-admin-console/internal/domain/entity"
	"time"
)

// Request DTOs

type AuditLogQuery struct {
	Action  string `schema:"action" validate:"omitempty,max=100"`
	ActorID string `schema:"actor_id" validate:"omitempty,max=100"`
	Limit   int    `schema:"limit" validate:"omitempty,min=1,max=500"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	ActorID   string      `json:"actor_id"`
	ActorName string      `json:"actor_name,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
