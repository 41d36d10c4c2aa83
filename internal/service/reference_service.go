package service

import (
	"context"
	"fmt"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/permission"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type NamedRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type PortRequest struct {
	Name            string     `json:"name" binding:"required"`
	PortAuthorityID *uuid.UUID `json:"portauthority_id"`
}

type DisembarkmentSiteRequest struct {
	Name                    string             `json:"name" binding:"required"`
	Municipality            model.Municipality `json:"municipality" binding:"required"`
	IsOutsidePopulatedAreas bool               `json:"is_outside_populated_areas"`
}

// ReferenceService exposes the ports, agencies and landing sites forms refer to.
type ReferenceService interface {
	ListPortAuthorities(ctx context.Context, user *model.User) ([]model.PortAuthority, error)
	ListPorts(ctx context.Context, user *model.User) ([]model.Port, error)
	ListShippingAgents(ctx context.Context, user *model.User) ([]model.ShippingAgent, error)
	ListDisembarkmentSites(ctx context.Context, user *model.User) ([]model.DisembarkmentSite, error)

	CreatePortAuthority(ctx context.Context, user *model.User, req NamedRequest) (*model.PortAuthority, error)
	CreatePort(ctx context.Context, user *model.User, req PortRequest) (*model.Port, error)
	CreateShippingAgent(ctx context.Context, user *model.User, req NamedRequest) (*model.ShippingAgent, error)
	CreateDisembarkmentSite(ctx context.Context, user *model.User, req DisembarkmentSiteRequest) (*model.DisembarkmentSite, error)
}

type referenceService struct {
	repo  repository.ReferenceRepository
	perms *permission.Evaluator
	audit AuditService
	log   *zap.Logger
}

func NewReferenceService(repo repository.ReferenceRepository, perms *permission.Evaluator, audit AuditService, log *zap.Logger) ReferenceService {
	return &referenceService{
		repo:  repo,
		perms: perms,
		audit: audit,
		log:   logger.OrNop(log).Named("service.reference"),
	}
}

func (s *referenceService) ListPortAuthorities(ctx context.Context, user *model.User) ([]model.PortAuthority, error) {
	items, err := s.repo.ListPortAuthorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list port authorities: %w", err)
	}
	return permission.Filter(s.perms, items, user, permission.ActionView), nil
}

func (s *referenceService) ListPorts(ctx context.Context, user *model.User) ([]model.Port, error) {
	items, err := s.repo.ListPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	return permission.Filter(s.perms, items, user, permission.ActionView), nil
}

func (s *referenceService) ListShippingAgents(ctx context.Context, user *model.User) ([]model.ShippingAgent, error) {
	items, err := s.repo.ListShippingAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping agents: %w", err)
	}
	return permission.Filter(s.perms, items, user, permission.ActionView), nil
}

func (s *referenceService) ListDisembarkmentSites(ctx context.Context, user *model.User) ([]model.DisembarkmentSite, error) {
	items, err := s.repo.ListDisembarkmentSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list disembarkment sites: %w", err)
	}
	return permission.Filter(s.perms, items, user, permission.ActionView), nil
}

func (s *referenceService) CreatePortAuthority(ctx context.Context, user *model.User, req NamedRequest) (*model.PortAuthority, error) {
	if !s.perms.CanAct(user, model.ObjectPortAuthority, permission.ActionAdd) {
		return nil, ErrPermissionDenied
	}
	authority := &model.PortAuthority{Name: req.Name, Email: req.Email}
	if err := s.repo.CreatePortAuthority(ctx, authority); err != nil {
		return nil, fmt.Errorf("failed to create port authority: %w", err)
	}
	s.audit.Record(ctx, user, model.ActionCreateReference, authority.ID.String(), authority.Name, authority)
	return authority, nil
}

func (s *referenceService) CreatePort(ctx context.Context, user *model.User, req PortRequest) (*model.Port, error) {
	if !s.perms.CanAct(user, model.ObjectPort, permission.ActionAdd) {
		return nil, ErrPermissionDenied
	}
	port := &model.Port{Name: req.Name, PortAuthorityID: req.PortAuthorityID}
	if err := s.repo.CreatePort(ctx, port); err != nil {
		return nil, fmt.Errorf("failed to create port: %w", err)
	}
	s.audit.Record(ctx, user, model.ActionCreateReference, port.ID.String(), port.Name, port)
	return port, nil
}

func (s *referenceService) CreateShippingAgent(ctx context.Context, user *model.User, req NamedRequest) (*model.ShippingAgent, error) {
	if !s.perms.CanAct(user, model.ObjectShippingAgent, permission.ActionAdd) {
		return nil, ErrPermissionDenied
	}
	agent := &model.ShippingAgent{Name: req.Name, Email: req.Email}
	if err := s.repo.CreateShippingAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create shipping agent: %w", err)
	}
	s.audit.Record(ctx, user, model.ActionCreateReference, agent.ID.String(), agent.Name, agent)
	return agent, nil
}

func (s *referenceService) CreateDisembarkmentSite(ctx context.Context, user *model.User, req DisembarkmentSiteRequest) (*model.DisembarkmentSite, error) {
	if !s.perms.CanAct(user, model.ObjectDisembarkmentSite, permission.ActionAdd) {
		return nil, ErrPermissionDenied
	}
	if !req.Municipality.Valid() {
		return nil, fmt.Errorf("%w: unknown municipality %d", ErrInvalidInput, req.Municipality)
	}
	site := &model.DisembarkmentSite{
		Name:                    req.Name,
		Municipality:            req.Municipality,
		IsOutsidePopulatedAreas: req.IsOutsidePopulatedAreas,
	}
	if err := s.repo.CreateDisembarkmentSite(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to create disembarkment site: %w", err)
	}
	s.audit.Record(ctx, user, model.ActionCreateReference, site.ID.String(), site.Name, site)
	return site, nil
}
