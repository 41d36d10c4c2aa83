package service

import (
	"context"
	"fmt"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/permission"

	"go.uber.org/zap"
)

// PolicyService lets superusers inspect and edit the group permission matrix.
type PolicyService interface {
	ListGrants(ctx context.Context, user *model.User) ([]permission.Grant, error)
	AddGrant(ctx context.Context, user *model.User, grant permission.Grant) error
	RemoveGrant(ctx context.Context, user *model.User, grant permission.Grant) error
}

type policyService struct {
	perms *permission.Evaluator
	audit AuditService
	log   *zap.Logger
}

func NewPolicyService(perms *permission.Evaluator, audit AuditService, log *zap.Logger) PolicyService {
	return &policyService{perms: perms, audit: audit, log: logger.OrNop(log).Named("service.policy")}
}

func superuser(user *model.User) bool {
	return user != nil && user.IsActive && user.IsSuperuser
}

func (s *policyService) ListGrants(_ context.Context, user *model.User) ([]permission.Grant, error) {
	if !superuser(user) {
		return nil, ErrPermissionDenied
	}
	return s.perms.Grants()
}

func (s *policyService) AddGrant(ctx context.Context, user *model.User, grant permission.Grant) error {
	if !superuser(user) {
		return ErrPermissionDenied
	}
	if err := grant.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	added, err := s.perms.AddGrant(grant)
	if err != nil {
		return fmt.Errorf("failed to add grant: %w", err)
	}
	if !added {
		return fmt.Errorf("%w: grant already exists", ErrInvalidInput)
	}
	s.audit.Record(ctx, user, model.ActionAddGrant, string(grant.Group), grant.Object, grant)
	s.log.Info("grant added", zap.Any("grant", grant), zap.String("user", user.Username))
	return nil
}

func (s *policyService) RemoveGrant(ctx context.Context, user *model.User, grant permission.Grant) error {
	if !superuser(user) {
		return ErrPermissionDenied
	}
	removed, err := s.perms.RemoveGrant(grant)
	if err != nil {
		return fmt.Errorf("failed to remove grant: %w", err)
	}
	if !removed {
		return fmt.Errorf("grant: %w", ErrNotFound)
	}
	s.audit.Record(ctx, user, model.ActionRemoveGrant, string(grant.Group), grant.Object, grant)
	s.log.Info("grant removed", zap.Any("grant", grant), zap.String("user", user.Username))
	return nil
}
