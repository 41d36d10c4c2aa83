package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfee/internal/calculation"
	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/permission"
	"portfee/internal/repository"
	"portfee/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Form events pushed to connected clients.
const (
	EventFormCreated = "form.created"
	EventFormUpdated = "form.updated"
	EventFormStatus  = "form.status"
	EventFormDeleted = "form.deleted"
	EventFormTaxes   = "form.taxes"
)

// EventPublisher broadcasts form events. The websocket hub implements it.
type EventPublisher interface {
	Publish(event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// --- DTOs ---

type DisembarkmentInput struct {
	DisembarkmentSiteID uuid.UUID `json:"disembarkment_site_id" binding:"required"`
	NumberOfPassengers  int       `json:"number_of_passengers" binding:"min=0"`
}

type FormRequest struct {
	PortOfCallID        *uuid.UUID           `json:"port_of_call_id"`
	NoPortOfCall        bool                 `json:"no_port_of_call"`
	VesselName          string               `json:"vessel_name"`
	VesselIMO           string               `json:"vessel_imo"`
	VesselOwner         string               `json:"vessel_owner"`
	VesselMaster        string               `json:"vessel_master"`
	ShippingAgentID     *uuid.UUID           `json:"shipping_agent_id"`
	VesselType          model.VesselType     `json:"vessel_type" binding:"required"`
	GrossTonnage        *int                 `json:"gross_tonnage"`
	DatetimeOfArrival   *time.Time           `json:"datetime_of_arrival"`
	DatetimeOfDeparture *time.Time           `json:"datetime_of_departure"`
	NumberOfPassengers  *int                 `json:"number_of_passengers"`
	Disembarkments      []DisembarkmentInput `json:"disembarkments" binding:"dive"`
}

// FormEvent is the payload of created and updated events.
type FormEvent struct {
	FormID uuid.UUID    `json:"form_id"`
	Status model.Status `json:"status"`
}

type StatusChange struct {
	FormID uuid.UUID    `json:"form_id"`
	From   model.Status `json:"from"`
	To     model.Status `json:"to"`
	Reason string       `json:"reason,omitempty"`
}

// --- Interface ---

type FormService interface {
	Create(ctx context.Context, user *model.User, req FormRequest) (*model.HarborDuesForm, error)
	Update(ctx context.Context, user *model.User, id uuid.UUID, req FormRequest) (*model.HarborDuesForm, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)
	List(ctx context.Context, user *model.User, filter repository.FormFilter, page, limit int) ([]model.HarborDuesForm, int64, error)
	Submit(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)
	Approve(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)
	Reject(ctx context.Context, user *model.User, id uuid.UUID, reason string) (*model.HarborDuesForm, error)
	Invoice(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)
	MarkPaid(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)
	Reopen(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error)
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
	Taxes(ctx context.Context, user *model.User, id uuid.UUID, save bool) (*calculation.Taxes, error)
	History(ctx context.Context, user *model.User, id uuid.UUID) ([]AuditLogResponse, error)
}

type formService struct {
	forms     repository.FormRepository
	reference repository.ReferenceRepository
	tx        repository.TransactionManager
	taxes     TaxService
	perms     *permission.Evaluator
	audit     AuditService
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewFormService(
	forms repository.FormRepository,
	reference repository.ReferenceRepository,
	tx repository.TransactionManager,
	taxes TaxService,
	perms *permission.Evaluator,
	audit AuditService,
	events EventPublisher,
	log *zap.Logger,
) FormService {
	if events == nil {
		events = nopPublisher{}
	}
	return &formService{
		forms:     forms,
		reference: reference,
		tx:        tx,
		taxes:     taxes,
		perms:     perms,
		audit:     audit,
		events:    events,
		log:       logger.OrNop(log).Named("service.form"),
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *formService) Create(ctx context.Context, user *model.User, req FormRequest) (*model.HarborDuesForm, error) {
	if !s.perms.CanAct(user, model.ObjectHarborDuesForm, permission.ActionAdd) {
		return nil, ErrPermissionDenied
	}

	form := &model.HarborDuesForm{Status: model.StatusDraft}
	if err := s.apply(ctx, user, form, req); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := s.forms.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.audit.Record(ctx, user, model.ActionCreateForm, form.ID.String(), form.VesselName, req)
	s.events.Publish(EventFormCreated, FormEvent{FormID: form.ID, Status: form.Status})
	return s.load(ctx, form.ID)
}

func (s *formService) Update(ctx context.Context, user *model.User, id uuid.UUID, req FormRequest) (*model.HarborDuesForm, error) {
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.perms.HasPermission(form, user, permission.ActionChange, true) {
		return nil, ErrPermissionDenied
	}
	switch form.Status {
	case model.StatusDraft, model.StatusNew, model.StatusRejected:
	default:
		return nil, fmt.Errorf("%w: status %s", ErrFormNotEditable, form.Status)
	}

	if err := s.apply(ctx, user, form, req); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	// The old totals belong to the old data.
	form.HarbourTax = decimal.NullDecimal{}
	form.PaxTax = decimal.NullDecimal{}
	form.DisembarkmentTax = decimal.NullDecimal{}
	if form.Status != model.StatusDraft {
		taxes, err := s.taxes.CalculateAll(ctx, form, false)
		if err != nil {
			return nil, err
		}
		taxes.Apply(form)
	}

	// The write only lands if no transition moved the form since it was loaded.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		err := s.forms.Update(txCtx, form)
		if errors.Is(err, repository.ErrStatusConflict) {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		if err != nil {
			return fmt.Errorf("failed to update form: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, user, model.ActionUpdateForm, id.String(), form.VesselName, req)
	s.events.Publish(EventFormUpdated, FormEvent{FormID: id, Status: form.Status})
	return s.load(ctx, id)
}

func (s *formService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error) {
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.perms.HasPermission(form, user, permission.ActionView, true) {
		return nil, ErrPermissionDenied
	}
	return form, nil
}

func (s *formService) List(ctx context.Context, user *model.User, filter repository.FormFilter, page, limit int) ([]model.HarborDuesForm, int64, error) {
	if !s.perms.CanAct(user, model.ObjectHarborDuesForm, permission.ActionView) {
		return nil, 0, ErrPermissionDenied
	}
	forms, err := s.forms.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch forms: %w", err)
	}
	visible := permission.Filter(s.perms, forms, user, permission.ActionView)
	return pagination.Slice(visible, pagination.New(page, limit)), int64(len(visible)), nil
}

// Submit hands a draft in: it is stamped, validated as NEW and its taxes are
// calculated and saved together with the status change.
func (s *formService) Submit(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error) {
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.perms.HasPermission(form, user, permission.ActionChange, true) {
		return nil, ErrPermissionDenied
	}
	if !form.Status.CanTransition(model.StatusNew) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, form.Status, model.StatusNew)
	}

	from := form.Status
	submitted := s.now().UTC()
	form.Status = model.StatusNew
	form.DateOfSubmission = &submitted
	if err := form.Validate(); err != nil {
		return nil, err
	}
	taxes, err := s.taxes.CalculateAll(ctx, form, false)
	if err != nil {
		return nil, err
	}
	taxes.Apply(form)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.moveStatus(txCtx, id, from, model.StatusNew, map[string]any{"date_of_submission": submitted}); err != nil {
			return err
		}
		if err := s.forms.UpdateTaxes(txCtx, form); err != nil {
			return fmt.Errorf("failed to save taxes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	change := StatusChange{FormID: id, From: from, To: model.StatusNew}
	s.audit.Record(ctx, user, model.ActionFormTransition, id.String(), form.VesselName, change)
	s.audit.Record(ctx, user, model.ActionCalculateTaxes, id.String(), form.VesselName, taxes)
	s.events.Publish(EventFormStatus, change)
	return s.load(ctx, id)
}

func (s *formService) Approve(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error) {
	return s.transition(ctx, user, id, permission.ActionApprove, model.StatusApproved, "")
}

func (s *formService) Reject(ctx context.Context, user *model.User, id uuid.UUID, reason string) (*model.HarborDuesForm, error) {
	return s.transition(ctx, user, id, permission.ActionReject, model.StatusRejected, reason)
}

func (s *formService) Invoice(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error) {
	return s.transition(ctx, user, id, permission.ActionInvoice, model.StatusInvoiced, "")
}

func (s *formService) MarkPaid(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error) {
	return s.transition(ctx, user, id, permission.ActionPay, model.StatusPaid, "")
}

func (s *formService) Reopen(ctx context.Context, user *model.User, id uuid.UUID) (*model.HarborDuesForm, error) {
	return s.transition(ctx, user, id, permission.ActionChange, model.StatusDraft, "")
}

func (s *formService) transition(ctx context.Context, user *model.User, id uuid.UUID, action permission.Action, to model.Status, reason string) (*model.HarborDuesForm, error) {
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.perms.HasPermission(form, user, action, true) {
		return nil, ErrPermissionDenied
	}
	from := form.Status
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	var fields map[string]any
	if to == model.StatusRejected {
		fields = map[string]any{"reason_text": reason}
	}
	if err := s.moveStatus(ctx, id, from, to, fields); err != nil {
		return nil, err
	}

	change := StatusChange{FormID: id, From: from, To: to, Reason: reason}
	s.audit.Record(ctx, user, model.ActionFormTransition, id.String(), form.VesselName, change)
	s.events.Publish(EventFormStatus, change)
	s.log.Info("form status changed",
		zap.Stringer("form_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("user", user.Username))
	return s.load(ctx, id)
}

func (s *formService) moveStatus(ctx context.Context, id uuid.UUID, from, to model.Status, fields map[string]any) error {
	err := s.forms.UpdateStatus(ctx, id, from, to, fields)
	if errors.Is(err, repository.ErrStatusConflict) {
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if err != nil {
		return fmt.Errorf("failed to update form status: %w", err)
	}
	return nil
}

func (s *formService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	form, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.perms.HasPermission(form, user, permission.ActionDelete, true) {
		return ErrPermissionDenied
	}
	if err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.forms.Delete(txCtx, id)
	}); err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}

	s.audit.Record(ctx, user, model.ActionDeleteForm, id.String(), form.VesselName, map[string]string{"deleted_id": id.String()})
	s.events.Publish(EventFormDeleted, FormEvent{FormID: id, Status: form.Status})
	return nil
}

// Taxes calculates the form's taxes. Without save it is a preview and only
// needs view access.
func (s *formService) Taxes(ctx context.Context, user *model.User, id uuid.UUID, save bool) (*calculation.Taxes, error) {
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	action := permission.ActionView
	if save {
		action = permission.ActionChange
	}
	if !s.perms.HasPermission(form, user, action, true) {
		return nil, ErrPermissionDenied
	}

	taxes, err := s.taxes.CalculateAll(ctx, form, save)
	if err != nil {
		return nil, err
	}
	if save {
		s.audit.Record(ctx, user, model.ActionCalculateTaxes, id.String(), form.VesselName, taxes)
		s.events.Publish(EventFormTaxes, FormEvent{FormID: id, Status: form.Status})
	}
	return taxes, nil
}

func (s *formService) History(ctx context.Context, user *model.User, id uuid.UUID) ([]AuditLogResponse, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.audit.GetEntityHistory(ctx, id.String())
}

// --- Helpers ---

func (s *formService) load(ctx context.Context, id uuid.UUID) (*model.HarborDuesForm, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "form")
	}
	return form, nil
}

// apply copies the request onto the form, resolving its references. Ship
// users always file for their own vessel and agents for their own agency.
func (s *formService) apply(ctx context.Context, user *model.User, form *model.HarborDuesForm, req FormRequest) error {
	if !req.VesselType.Valid() {
		return fmt.Errorf("%w: unknown vessel type %q", ErrInvalidInput, req.VesselType)
	}

	form.NoPortOfCall = req.NoPortOfCall
	form.VesselName = req.VesselName
	form.VesselIMO = req.VesselIMO
	form.VesselOwner = req.VesselOwner
	form.VesselMaster = req.VesselMaster
	form.ShippingAgentID = req.ShippingAgentID
	form.VesselType = req.VesselType
	form.GrossTonnage = req.GrossTonnage
	form.DatetimeOfArrival = utc(req.DatetimeOfArrival)
	form.DatetimeOfDeparture = utc(req.DatetimeOfDeparture)
	form.NumberOfPassengers = req.NumberOfPassengers

	switch {
	case user.InGroup(model.GroupShip) && !user.IsSuperuser:
		form.VesselIMO = user.Username
	case user.InGroup(model.GroupShippingAgent) && !user.IsSuperuser:
		form.ShippingAgentID = user.ShippingAgentID
	}

	form.PortOfCallID, form.PortOfCall = nil, nil
	if req.PortOfCallID != nil && !req.NoPortOfCall {
		port, err := s.reference.FindPort(ctx, *req.PortOfCallID)
		if err != nil {
			return s.badReference(err, "port_of_call_id")
		}
		form.PortOfCallID, form.PortOfCall = &port.ID, port
	}

	form.ShippingAgent = nil
	if form.ShippingAgentID != nil {
		agent, err := s.reference.FindShippingAgent(ctx, *form.ShippingAgentID)
		if err != nil {
			return s.badReference(err, "shipping_agent_id")
		}
		form.ShippingAgent = agent
	}

	form.Disembarkments = make([]model.Disembarkment, 0, len(req.Disembarkments))
	for i, in := range req.Disembarkments {
		site, err := s.reference.FindDisembarkmentSite(ctx, in.DisembarkmentSiteID)
		if err != nil {
			return s.badReference(err, fmt.Sprintf("disembarkments[%d].disembarkment_site_id", i))
		}
		form.Disembarkments = append(form.Disembarkments, model.Disembarkment{
			FormID:              form.ID,
			DisembarkmentSiteID: site.ID,
			DisembarkmentSite:   site,
			NumberOfPassengers:  in.NumberOfPassengers,
		})
	}
	return nil
}

func (s *formService) badReference(err error, field string) error {
	if errors.Is(notFound(err, field), ErrNotFound) {
		return fmt.Errorf("%w: %s does not exist", ErrInvalidInput, field)
	}
	return fmt.Errorf("failed to resolve %s: %w", field, err)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
