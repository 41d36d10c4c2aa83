package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/permission"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxDisembarkmentTax caps the per passenger disembarkment rate.
var MaxDisembarkmentTax = decimal.NewFromInt(50)

// ScheduleGuard serialises rate schedule changes against tax calculations.
// Calculations hold the read side while loading schedules; changes hold the
// write side for their whole transaction, so a calculation never sees one
// schedule moved and its neighbour not yet relinked.
type ScheduleGuard struct {
	sync.RWMutex
}

// --- DTOs ---

type PortTaxRateInput struct {
	PortID            *uuid.UUID        `json:"port_id"`
	VesselType        *model.VesselType `json:"vessel_type"`
	GTStart           int               `json:"gt_start" binding:"min=0"`
	GTEnd             *int              `json:"gt_end"`
	PortTaxRate       string            `json:"port_tax_rate" binding:"required"` // decimal string, e.g. "1.10"
	RoundGrossTonUpTo int               `json:"round_gross_ton_up_to" binding:"min=0"`
}

type DisembarkmentTaxRateInput struct {
	Municipality        model.Municipality `json:"municipality" binding:"required"`
	DisembarkmentSiteID *uuid.UUID         `json:"disembarkment_site_id"`
	DisembarkmentTax    string             `json:"disembarkment_tax_rate" binding:"required"`
}

type TaxRatesRequest struct {
	PaxTaxRate            *string                     `json:"pax_tax_rate"`
	StartDatetime         *time.Time                  `json:"start_datetime"` // null = since forever
	PortTaxRates          []PortTaxRateInput          `json:"port_tax_rates" binding:"dive"`
	DisembarkmentTaxRates []DisembarkmentTaxRateInput `json:"disembarkment_tax_rates" binding:"dive"`
}

// --- Interface ---

type TaxRatesService interface {
	List(ctx context.Context, user *model.User, page, limit int) ([]model.TaxRates, int64, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.TaxRates, error)
	Create(ctx context.Context, user *model.User, req TaxRatesRequest) (*model.TaxRates, error)
	Update(ctx context.Context, user *model.User, id uuid.UUID, req TaxRatesRequest) (*model.TaxRates, error)
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
	GetPortTaxRate(ctx context.Context, user *model.User, id uuid.UUID, portID *uuid.UUID, vesselType model.VesselType, grossTonnage int) (*model.PortTaxRate, error)
}

type taxRatesService struct {
	repo  repository.TaxRatesRepository
	tx    repository.TransactionManager
	guard *ScheduleGuard
	perms *permission.Evaluator
	audit AuditService
	log   *zap.Logger
}

func NewTaxRatesService(
	repo repository.TaxRatesRepository,
	tx repository.TransactionManager,
	guard *ScheduleGuard,
	perms *permission.Evaluator,
	audit AuditService,
	log *zap.Logger,
) TaxRatesService {
	return &taxRatesService{
		repo:  repo,
		tx:    tx,
		guard: guard,
		perms: perms,
		audit: audit,
		log:   logger.OrNop(log).Named("service.tax_rates"),
	}
}

// --- Implementation ---

func (s *taxRatesService) List(ctx context.Context, user *model.User, page, limit int) ([]model.TaxRates, int64, error) {
	if !s.perms.CanAct(user, model.ObjectTaxRates, permission.ActionView) {
		return nil, 0, ErrPermissionDenied
	}
	s.guard.RLock()
	defer s.guard.RUnlock()

	rates, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax rates: %w", err)
	}
	return rates, total, nil
}

func (s *taxRatesService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.TaxRates, error) {
	s.guard.RLock()
	rates, err := s.repo.FindByID(ctx, id)
	s.guard.RUnlock()
	if err != nil {
		return nil, notFound(err, "tax rates")
	}
	if !s.perms.HasPermission(rates, user, permission.ActionView, true) {
		return nil, ErrPermissionDenied
	}
	return rates, nil
}

func (s *taxRatesService) Create(ctx context.Context, user *model.User, req TaxRatesRequest) (*model.TaxRates, error) {
	if !s.perms.CanAct(user, model.ObjectTaxRates, permission.ActionAdd) {
		return nil, ErrPermissionDenied
	}
	rates, err := buildTaxRates(req)
	if err != nil {
		return nil, err
	}

	s.guard.Lock()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkStart(txCtx, rates.StartDatetime, nil); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, rates); err != nil {
			return fmt.Errorf("failed to create tax rates: %w", err)
		}
		return s.relink(txCtx)
	})
	s.guard.Unlock()
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, user, model.ActionCreateTaxRates, rates.ID.String(), describeSchedule(rates), req)
	s.log.Info("tax rates created", zap.Stringer("tax_rates_id", rates.ID), zap.String("start", describeSchedule(rates)))
	return s.reload(ctx, rates.ID)
}

func (s *taxRatesService) Update(ctx context.Context, user *model.User, id uuid.UUID, req TaxRatesRequest) (*model.TaxRates, error) {
	updated, err := buildTaxRates(req)
	if err != nil {
		return nil, err
	}

	s.guard.Lock()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "tax rates")
		}
		if !s.perms.HasPermission(existing, user, permission.ActionChange, true) {
			return ErrPermissionDenied
		}
		if err := s.checkStart(txCtx, updated.StartDatetime, &id); err != nil {
			return err
		}

		updated.ID = id
		updated.EndDatetime = existing.EndDatetime
		if err := s.repo.Update(txCtx, updated); err != nil {
			return fmt.Errorf("failed to update tax rates: %w", err)
		}
		if err := s.repo.ReplaceRates(txCtx, updated); err != nil {
			return fmt.Errorf("failed to replace rates: %w", err)
		}
		return s.relink(txCtx)
	})
	s.guard.Unlock()
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, user, model.ActionUpdateTaxRates, id.String(), describeSchedule(updated), req)
	return s.reload(ctx, id)
}

func (s *taxRatesService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	var deleted *model.TaxRates

	s.guard.Lock()
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "tax rates")
		}
		if !s.perms.HasPermission(existing, user, permission.ActionDelete, true) {
			return ErrPermissionDenied
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete tax rates: %w", err)
		}
		deleted = existing
		return s.relink(txCtx)
	})
	s.guard.Unlock()
	if err != nil {
		return err
	}

	s.audit.Record(ctx, user, model.ActionDeleteTaxRates, id.String(), describeSchedule(deleted), map[string]string{"deleted_id": id.String()})
	return nil
}

func (s *taxRatesService) GetPortTaxRate(ctx context.Context, user *model.User, id uuid.UUID, portID *uuid.UUID, vesselType model.VesselType, grossTonnage int) (*model.PortTaxRate, error) {
	rates, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	rate, ambiguous := rates.GetPortTaxRate(portID, vesselType, grossTonnage)
	if ambiguous {
		s.log.Warn("ambiguous port tax rate",
			zap.Stringer("tax_rates_id", id),
			zap.String("vessel_type", string(vesselType)),
			zap.Int("gross_tonnage", grossTonnage))
	}
	if rate == nil {
		return nil, fmt.Errorf("port tax rate: %w", ErrNotFound)
	}
	return rate, nil
}

// --- Helpers ---

func (s *taxRatesService) reload(ctx context.Context, id uuid.UUID) (*model.TaxRates, error) {
	s.guard.RLock()
	defer s.guard.RUnlock()
	rates, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "tax rates")
	}
	return rates, nil
}

func (s *taxRatesService) checkStart(ctx context.Context, start *time.Time, excludeID *uuid.UUID) error {
	count, err := s.repo.FindByStart(ctx, start, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check schedule start: %w", err)
	}
	if count > 0 {
		return ErrDuplicateStart
	}
	return nil
}

// relink re-derives every end datetime from the successor's start.
func (s *taxRatesService) relink(ctx context.Context) error {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	for _, i := range model.LinkTaxRates(all) {
		if err := s.repo.UpdateEnd(ctx, all[i].ID, all[i].EndDatetime); err != nil {
			return fmt.Errorf("failed to relink schedule %s: %w", all[i].ID, err)
		}
	}
	return nil
}

func describeSchedule(rates *model.TaxRates) string {
	if rates == nil || rates.StartDatetime == nil {
		return "since forever"
	}
	return "from " + rates.StartDatetime.Format(time.RFC3339)
}

func buildTaxRates(req TaxRatesRequest) (*model.TaxRates, error) {
	rates := &model.TaxRates{}
	if req.StartDatetime != nil {
		start := req.StartDatetime.UTC()
		rates.StartDatetime = &start
	}
	if req.PaxTaxRate != nil && *req.PaxTaxRate != "" {
		pax, err := parseRate("pax_tax_rate", *req.PaxTaxRate)
		if err != nil {
			return nil, err
		}
		rates.PaxTaxRate = decimal.NewNullDecimal(pax)
	}

	for i, in := range req.PortTaxRates {
		rate, err := parseRate(fmt.Sprintf("port_tax_rates[%d].port_tax_rate", i), in.PortTaxRate)
		if err != nil {
			return nil, err
		}
		if in.VesselType != nil && !in.VesselType.Valid() {
			return nil, fmt.Errorf("%w: port_tax_rates[%d].vessel_type %q", ErrInvalidInput, i, *in.VesselType)
		}
		if in.GTStart < 0 || in.RoundGrossTonUpTo < 0 {
			return nil, fmt.Errorf("%w: port_tax_rates[%d] has a negative tonnage", ErrInvalidInput, i)
		}
		rates.PortTaxRates = append(rates.PortTaxRates, model.PortTaxRate{
			PortID:            in.PortID,
			VesselType:        in.VesselType,
			GTStart:           in.GTStart,
			GTEnd:             in.GTEnd,
			PortTaxRate:       rate,
			RoundGrossTonUpTo: in.RoundGrossTonUpTo,
		})
	}
	if err := validateBrackets(rates.PortTaxRates); err != nil {
		return nil, err
	}

	for i, in := range req.DisembarkmentTaxRates {
		rate, err := parseRate(fmt.Sprintf("disembarkment_tax_rates[%d].disembarkment_tax_rate", i), in.DisembarkmentTax)
		if err != nil {
			return nil, err
		}
		if rate.GreaterThan(MaxDisembarkmentTax) {
			return nil, fmt.Errorf("%w: disembarkment_tax_rates[%d] exceeds %s", ErrInvalidInput, i, MaxDisembarkmentTax)
		}
		if !in.Municipality.Valid() {
			return nil, fmt.Errorf("%w: disembarkment_tax_rates[%d].municipality %d", ErrInvalidInput, i, in.Municipality)
		}
		rates.DisembarkmentTaxRates = append(rates.DisembarkmentTaxRates, model.DisembarkmentTaxRate{
			Municipality:        in.Municipality,
			DisembarkmentSiteID: in.DisembarkmentSiteID,
			DisembarkmentTax:    rate,
		})
	}
	return rates, nil
}

func parseRate(field, value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, field)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidInput, field)
	}
	return rate, nil
}

// validateBrackets checks that for every (port, vessel type) the tonnage
// brackets run from 0 to unbounded, each starting where the previous ends.
func validateBrackets(rates []model.PortTaxRate) error {
	groups := make(map[string][]model.PortTaxRate)
	var keys []string
	for _, r := range rates {
		key := "*"
		if r.PortID != nil {
			key = r.PortID.String()
		}
		key += "/"
		if r.VesselType != nil {
			key += string(*r.VesselType)
		} else {
			key += "*"
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], r)
	}

	for _, key := range keys {
		brackets := groups[key]
		sort.SliceStable(brackets, func(i, j int) bool { return brackets[i].GTStart < brackets[j].GTStart })

		if brackets[0].GTStart != 0 {
			return fmt.Errorf("%w: %s starts at %d", ErrInvalidBrackets, key, brackets[0].GTStart)
		}
		for i, b := range brackets {
			last := i == len(brackets)-1
			if b.GTEnd == nil {
				if !last {
					return fmt.Errorf("%w: %s has an unbounded bracket before %d", ErrInvalidBrackets, key, brackets[i+1].GTStart)
				}
				continue
			}
			if *b.GTEnd <= b.GTStart {
				return fmt.Errorf("%w: %s bracket %d-%d is empty", ErrInvalidBrackets, key, b.GTStart, *b.GTEnd)
			}
			if last {
				return fmt.Errorf("%w: %s stops at %d", ErrInvalidBrackets, key, *b.GTEnd)
			}
			if next := brackets[i+1].GTStart; next != *b.GTEnd {
				return fmt.Errorf("%w: %s jumps from %d to %d", ErrInvalidBrackets, key, *b.GTEnd, next)
			}
		}
	}
	return nil
}
