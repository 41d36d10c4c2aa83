package repository

import (
	"context"

	"portfee/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceRepository holds the slowly changing reference data: port
// authorities, ports, shipping agents and disembarkment sites.
type ReferenceRepository interface {
	CreatePortAuthority(ctx context.Context, authority *model.PortAuthority) error
	CreatePort(ctx context.Context, port *model.Port) error
	CreateShippingAgent(ctx context.Context, agent *model.ShippingAgent) error
	CreateDisembarkmentSite(ctx context.Context, site *model.DisembarkmentSite) error

	FindPort(ctx context.Context, id uuid.UUID) (*model.Port, error)
	FindShippingAgent(ctx context.Context, id uuid.UUID) (*model.ShippingAgent, error)
	FindDisembarkmentSite(ctx context.Context, id uuid.UUID) (*model.DisembarkmentSite, error)

	ListPortAuthorities(ctx context.Context) ([]model.PortAuthority, error)
	ListPorts(ctx context.Context) ([]model.Port, error)
	ListShippingAgents(ctx context.Context) ([]model.ShippingAgent, error)
	ListDisembarkmentSites(ctx context.Context) ([]model.DisembarkmentSite, error)

	FindPortAuthorityByName(ctx context.Context, name string) (*model.PortAuthority, error)
	FindPortByName(ctx context.Context, name string) (*model.Port, error)
	FindShippingAgentByName(ctx context.Context, name string) (*model.ShippingAgent, error)
	FindDisembarkmentSiteByName(ctx context.Context, name string) (*model.DisembarkmentSite, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) CreatePortAuthority(ctx context.Context, authority *model.PortAuthority) error {
	return GetDB(ctx, r.db).Omit("Ports").Create(authority).Error
}

func (r *referenceRepository) CreatePort(ctx context.Context, port *model.Port) error {
	return GetDB(ctx, r.db).Omit("PortAuthority").Create(port).Error
}

func (r *referenceRepository) CreateShippingAgent(ctx context.Context, agent *model.ShippingAgent) error {
	return GetDB(ctx, r.db).Create(agent).Error
}

func (r *referenceRepository) CreateDisembarkmentSite(ctx context.Context, site *model.DisembarkmentSite) error {
	return GetDB(ctx, r.db).Create(site).Error
}

func findOne[T any](ctx context.Context, db *gorm.DB, query string, arg any) (*T, error) {
	var out T
	if err := GetDB(ctx, db).First(&out, query, arg).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var out []T
	if err := GetDB(ctx, db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *referenceRepository) FindPort(ctx context.Context, id uuid.UUID) (*model.Port, error) {
	var port model.Port
	if err := GetDB(ctx, r.db).Preload("PortAuthority").First(&port, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &port, nil
}

func (r *referenceRepository) FindShippingAgent(ctx context.Context, id uuid.UUID) (*model.ShippingAgent, error) {
	return findOne[model.ShippingAgent](ctx, r.db, "id = ?", id)
}

func (r *referenceRepository) FindDisembarkmentSite(ctx context.Context, id uuid.UUID) (*model.DisembarkmentSite, error) {
	return findOne[model.DisembarkmentSite](ctx, r.db, "id = ?", id)
}

func (r *referenceRepository) ListPortAuthorities(ctx context.Context) ([]model.PortAuthority, error) {
	return findAll[model.PortAuthority](ctx, r.db)
}

func (r *referenceRepository) ListPorts(ctx context.Context) ([]model.Port, error) {
	return findAll[model.Port](ctx, r.db)
}

func (r *referenceRepository) ListShippingAgents(ctx context.Context) ([]model.ShippingAgent, error) {
	return findAll[model.ShippingAgent](ctx, r.db)
}

func (r *referenceRepository) ListDisembarkmentSites(ctx context.Context) ([]model.DisembarkmentSite, error) {
	return findAll[model.DisembarkmentSite](ctx, r.db)
}

func (r *referenceRepository) FindPortAuthorityByName(ctx context.Context, name string) (*model.PortAuthority, error) {
	return findOne[model.PortAuthority](ctx, r.db, "name = ?", name)
}

func (r *referenceRepository) FindPortByName(ctx context.Context, name string) (*model.Port, error) {
	return findOne[model.Port](ctx, r.db, "name = ?", name)
}

func (r *referenceRepository) FindShippingAgentByName(ctx context.Context, name string) (*model.ShippingAgent, error) {
	return findOne[model.ShippingAgent](ctx, r.db, "name = ?", name)
}

func (r *referenceRepository) FindDisembarkmentSiteByName(ctx context.Context, name string) (*model.DisembarkmentSite, error) {
	return findOne[model.DisembarkmentSite](ctx, r.db, "name = ?", name)
}
