package service

import (
	"context"

	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService writes the export and mutation trail.
// Failures are logged and never fail the audited operation.
type AuditService interface {
	Record(ctx context.Context, scope entity.Scope, action string, metadata entity.JSON)
	Enabled() bool
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

// NewAuditService returns a service that only logs when db is nil
func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Enabled() bool {
	return s.db != nil && s.auditRepo != nil
}

// Record stores one audit entry for the acting scope
func (s *auditService) Record(ctx context.Context, scope entity.Scope, action string, metadata entity.JSON) {
	if !s.Enabled() {
		s.log.WithFields(logrus.Fields{
			"actor":  scope.ActorID,
			"action": action,
		}).Debug("Audit trail disabled, entry not stored")
		return
	}

	auditLog := &entity.AuditLog{
		ActorID:   scope.ActorID,
		ActorName: scope.ActorName,
		Action:    action,
		Metadata:  metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
	}
}
