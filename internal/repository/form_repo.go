package repository

import (
	"context"
	"errors"
	"time"

	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrStatusConflict means the form left the expected status before the update landed.
var ErrStatusConflict = errors.New("form status changed concurrently")

type FormFilter struct {
	Status          model.Status
	PortOfCallID    *uuid.UUID
	ShippingAgentID *uuid.UUID
	VesselIMO       string
}

type FormRepository interface {
	Create(ctx context.Context, form *model.HarborDuesForm) error
	Update(ctx context.Context, form *model.HarborDuesForm) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.HarborDuesForm, error)
	List(ctx context.Context, filter FormFilter) ([]model.HarborDuesForm, error)
	ListByStatus(ctx context.Context, statuses ...model.Status) ([]model.HarborDuesForm, error)
	UpdateTaxes(ctx context.Context, form *model.HarborDuesForm) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, fields map[string]any) error
}

type formRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("PortOfCall").
		Preload("ShippingAgent").
		Preload("Disembarkments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC, id ASC") }).
		Preload("Disembarkments.DisembarkmentSite")
}

func (r *formRepository) Create(ctx context.Context, form *model.HarborDuesForm) error {
	for i := range form.Disembarkments {
		form.Disembarkments[i].Position = i
	}
	return GetDB(ctx, r.db).Omit("PortOfCall", "ShippingAgent").Create(form).Error
}

// Update saves the form's columns and replaces its disembarkments. The row is
// only written while it is still in form.Status; otherwise it fails with
// ErrStatusConflict and nothing is changed. Run it inside a transaction so
// the disembarkments are replaced together with the row.
func (r *formRepository) Update(ctx context.Context, form *model.HarborDuesForm) error {
	db := GetDB(ctx, r.db)
	res := db.Model(form).
		Where("status = ?", form.Status).
		Select("*").
		Omit("ID", "CreatedAt", "PortOfCall", "ShippingAgent", "Disembarkments").
		Updates(form)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	if err := db.Where("form_id = ?", form.ID).Delete(&model.Disembarkment{}).Error; err != nil {
		return err
	}
	for i := range form.Disembarkments {
		form.Disembarkments[i].ID = uuid.Nil
		form.Disembarkments[i].FormID = form.ID
		form.Disembarkments[i].Position = i
	}
	if len(form.Disembarkments) == 0 {
		return nil
	}
	return db.Omit("DisembarkmentSite").Create(&form.Disembarkments).Error
}

func (r *formRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("form_id = ?", id).Delete(&model.Disembarkment{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.HarborDuesForm{}).Error
}

func (r *formRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.HarborDuesForm, error) {
	var form model.HarborDuesForm
	if err := withRelations(GetDB(ctx, r.db)).First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// List returns the forms matching the filter, newest first. Permission
// filtering is left to the caller.
func (r *formRepository) List(ctx context.Context, filter FormFilter) ([]model.HarborDuesForm, error) {
	var forms []model.HarborDuesForm
	query := withRelations(GetDB(ctx, r.db))

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PortOfCallID != nil {
		query = query.Where("port_of_call_id = ?", *filter.PortOfCallID)
	}
	if filter.ShippingAgentID != nil {
		query = query.Where("shipping_agent_id = ?", *filter.ShippingAgentID)
	}
	if filter.VesselIMO != "" {
		query = query.Where("vessel_imo = ?", filter.VesselIMO)
	}

	if err := query.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *formRepository) ListByStatus(ctx context.Context, statuses ...model.Status) ([]model.HarborDuesForm, error) {
	var forms []model.HarborDuesForm
	query := withRelations(GetDB(ctx, r.db))
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Order("created_at ASC").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

// UpdateTaxes writes the three tax columns, nulls included.
func (r *formRepository) UpdateTaxes(ctx context.Context, form *model.HarborDuesForm) error {
	return GetDB(ctx, r.db).
		Model(&model.HarborDuesForm{}).
		Where("id = ?", form.ID).
		Select("harbour_tax", "pax_tax", "disembarkment_tax", "updated_at").
		Updates(map[string]any{
			"harbour_tax":       nullable(form.HarbourTax),
			"pax_tax":           nullable(form.PaxTax),
			"disembarkment_tax": nullable(form.DisembarkmentTax),
			"updated_at":        time.Now(),
		}).Error
}

func nullable(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

// UpdateStatus moves the form from one status to another, together with any
// extra columns. It fails with ErrStatusConflict when the form is no longer in from.
func (r *formRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, fields map[string]any) error {
	updates := map[string]any{"status": to, "updated_at": time.Now()}
	for k, v := range fields {
		updates[k] = v
	}
	res := GetDB(ctx, r.db).
		Model(&model.HarborDuesForm{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
