package service

import (
	"context"
	"fmt"
	"time"

	"portfee/internal/calculation"
	"portfee/internal/logger"
	"portfee/internal/metrics"
	"portfee/internal/model"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchFailure is one form the batch could not recalculate.
type BatchFailure struct {
	FormID uuid.UUID `json:"form_id"`
	Error  string    `json:"error"`
}

type BatchReport struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failures  []BatchFailure `json:"failures"`
}

// recalculated lists the statuses RecalculateAll visits.
var recalculated = []model.Status{
	model.StatusNew,
	model.StatusApproved,
	model.StatusRejected,
	model.StatusInvoiced,
	model.StatusPaid,
}

// --- Interface ---

// TaxService runs the calculation engine against the stored rate schedules.
// With save set, the computed total is written to the form.
type TaxService interface {
	HarbourTax(ctx context.Context, form *model.HarborDuesForm, save bool) (*calculation.HarbourTaxResult, error)
	PassengerTax(ctx context.Context, form *model.HarborDuesForm) (*calculation.PassengerTaxResult, error)
	DisembarkmentTax(ctx context.Context, form *model.HarborDuesForm, save bool) (*calculation.DisembarkmentTaxResult, error)
	CalculateAll(ctx context.Context, form *model.HarborDuesForm, save bool) (*calculation.Taxes, error)
	RecalculateAll(ctx context.Context) (*BatchReport, error)
}

type taxService struct {
	rates RateScheduleReader
	forms repository.FormRepository
	calc  *calculation.Calculator
	audit AuditService
	log   *zap.Logger
}

// RateScheduleReader is the part of the schedule store calculations read from.
type RateScheduleReader interface {
	ListAll(ctx context.Context) ([]model.TaxRates, error)
	ListOverlapping(ctx context.Context, from, to time.Time) ([]model.TaxRates, error)
}

func NewTaxService(
	rates repository.TaxRatesRepository,
	forms repository.FormRepository,
	guard *ScheduleGuard,
	calc *calculation.Calculator,
	audit AuditService,
	log *zap.Logger,
) TaxService {
	log = logger.OrNop(log).Named("service.tax")
	if calc == nil {
		calc = calculation.NewCalculator(log)
	}
	return &taxService{
		rates: &guardedSchedules{repo: rates, guard: guard},
		forms: forms,
		calc:  calc,
		audit: audit,
		log:   log,
	}
}

// guardedSchedules loads schedules under the read side of the guard.
type guardedSchedules struct {
	repo  repository.TaxRatesRepository
	guard *ScheduleGuard
}

func (g *guardedSchedules) ListAll(ctx context.Context) ([]model.TaxRates, error) {
	g.guard.RLock()
	defer g.guard.RUnlock()
	return g.repo.ListAll(ctx)
}

func (g *guardedSchedules) ListOverlapping(ctx context.Context, from, to time.Time) ([]model.TaxRates, error) {
	g.guard.RLock()
	defer g.guard.RUnlock()
	return g.repo.ListOverlapping(ctx, from, to)
}

// --- Implementation ---

func (s *taxService) schedules(ctx context.Context) ([]model.TaxRates, error) {
	schedules, err := s.rates.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rates: %w", err)
	}
	return schedules, nil
}

// stayingSchedules loads the schedules in force during the form's stay. A form
// without both stay dates needs none.
func (s *taxService) stayingSchedules(ctx context.Context, form *model.HarborDuesForm) ([]model.TaxRates, error) {
	if form == nil {
		return nil, nil
	}
	stay, ok := form.Stay()
	if !ok {
		return nil, nil
	}
	to := stay.End
	if to.Before(stay.Start) {
		to = stay.Start
	}
	schedules, err := s.rates.ListOverlapping(ctx, stay.Start, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rates: %w", err)
	}
	return schedules, nil
}

func (s *taxService) HarbourTax(ctx context.Context, form *model.HarborDuesForm, save bool) (*calculation.HarbourTaxResult, error) {
	schedules, err := s.stayingSchedules(ctx, form)
	if err != nil {
		return nil, err
	}
	result, err := s.calc.HarbourTax(schedules, form)
	if err != nil {
		return nil, err
	}
	if save && result != nil {
		form.HarbourTax = decimal.NewNullDecimal(result.HarbourTax)
		if err := s.forms.UpdateTaxes(ctx, form); err != nil {
			return nil, fmt.Errorf("failed to save harbour tax: %w", err)
		}
	}
	return result, nil
}

func (s *taxService) PassengerTax(ctx context.Context, form *model.HarborDuesForm) (*calculation.PassengerTaxResult, error) {
	schedules, err := s.schedules(ctx)
	if err != nil {
		return nil, err
	}
	return s.calc.PassengerTax(schedules, form)
}

func (s *taxService) DisembarkmentTax(ctx context.Context, form *model.HarborDuesForm, save bool) (*calculation.DisembarkmentTaxResult, error) {
	schedules, err := s.schedules(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.calc.DisembarkmentTax(schedules, form)
	if err != nil {
		return nil, err
	}
	if save && result != nil {
		form.DisembarkmentTax = decimal.NewNullDecimal(result.DisembarkmentTax)
		if err := s.forms.UpdateTaxes(ctx, form); err != nil {
			return nil, fmt.Errorf("failed to save disembarkment tax: %w", err)
		}
	}
	return result, nil
}

func (s *taxService) CalculateAll(ctx context.Context, form *model.HarborDuesForm, save bool) (*calculation.Taxes, error) {
	schedules, err := s.schedules(ctx)
	if err != nil {
		return nil, err
	}
	return s.calculateAll(ctx, schedules, form, save)
}

func (s *taxService) calculateAll(ctx context.Context, schedules []model.TaxRates, form *model.HarborDuesForm, save bool) (*calculation.Taxes, error) {
	taxes, err := s.calc.CalculateAll(schedules, form)
	if err != nil {
		return nil, err
	}
	if !save {
		return taxes, nil
	}
	taxes.Apply(form)
	if err := s.forms.UpdateTaxes(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to save taxes: %w", err)
	}
	return taxes, nil
}

// RecalculateAll recalculates and saves the taxes of every submitted form
// against one snapshot of the schedules. A failing form is reported and
// skipped; only failing to load the work aborts the batch.
func (s *taxService) RecalculateAll(ctx context.Context) (*BatchReport, error) {
	schedules, err := s.schedules(ctx)
	if err != nil {
		return nil, err
	}
	forms, err := s.forms.ListByStatus(ctx, recalculated...)
	if err != nil {
		return nil, fmt.Errorf("failed to load forms: %w", err)
	}

	report := &BatchReport{Total: len(forms), Failures: []BatchFailure{}}
	for i := range forms {
		form := &forms[i]
		if err := s.recalculateOne(ctx, schedules, form); err != nil {
			metrics.BatchFailures.Inc()
			s.log.Error("recalculation failed", zap.Stringer("form_id", form.ID), zap.Error(err))
			report.Failures = append(report.Failures, BatchFailure{FormID: form.ID, Error: err.Error()})
			continue
		}
		report.Succeeded++
	}

	s.audit.Record(ctx, nil, model.ActionCalculateTaxes, "", "recalculate all", report)
	s.log.Info("recalculation finished",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}

func (s *taxService) recalculateOne(ctx context.Context, schedules []model.TaxRates, form *model.HarborDuesForm) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = s.calculateAll(ctx, schedules, form, true)
	return err
}
