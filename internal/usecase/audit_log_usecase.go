package usecase

import (
	"context"
	"errors"

	"healthcare-admin-console/internal/converter"
	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
	ErrAuditDisabled    = errors.New("audit trail is not configured")
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	if u.db == nil {
		return nil, ErrAuditDisabled
	}

	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), entity.AuditLogFilter{
		Action:  query.Action,
		ActorID: query.ActorID,
		Limit:   query.Limit,
	})
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	if u.db == nil {
		return nil, ErrAuditDisabled
	}

	auditLog, err := u.auditLogRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		u.log.Warnf("Failed to find audit log: %d", id)
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
