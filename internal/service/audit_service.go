package service

import (
	"context"
	"encoding/json"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
	GetEntityHistory(ctx context.Context, entityID string) ([]AuditLogResponse, error)
	Record(ctx context.Context, user *model.User, action, entityID, entityName string, details any)
}

type auditService struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository, log *zap.Logger) AuditService {
	return &auditService{repo: repo, log: logger.OrNop(log).Named("service.audit")}
}

// GetAuditLogs retrieves strictly paginated records with Users pre-loaded joining details
func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toAuditResponses(logs), total, nil
}

func (s *auditService) GetEntityHistory(ctx context.Context, entityID string) ([]AuditLogResponse, error) {
	logs, err := s.repo.ListForEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return toAuditResponses(logs), nil
}

// Record writes an audit entry. Failures are logged and otherwise ignored so
// the audited operation is never undone by its audit trail. A nil user marks
// a system action.
func (s *auditService) Record(ctx context.Context, user *model.User, action, entityID, entityName string, details any) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		s.log.Warn("failed to encode audit details", zap.String("action", action), zap.Error(err))
	}

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if user != nil && user.ID != uuid.Nil {
		id := user.ID
		entry.UserID = &id
	}

	if err := s.repo.Log(ctx, &entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

func toAuditResponses(logs []model.AuditLog) []AuditLogResponse {
	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res
}
