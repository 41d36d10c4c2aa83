package calculation

import (
	"portfee/internal/metrics"
	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HarbourTaxDetail is the charge for the part of a stay under one schedule.
type HarbourTaxDetail struct {
	TaxRatesID  uuid.UUID           `json:"tax_rates_id"`
	PortTaxRate *model.PortTaxRate  `json:"port_tax_rate"`
	DateRange   model.DateTimeRange `json:"date_range"`
	StartedDays int                 `json:"started_days"`
	Tonnage     int                 `json:"tonnage"` // after rounding up
	HarbourTax  decimal.Decimal     `json:"harbour_tax"`
}

type HarbourTaxResult struct {
	HarbourTax decimal.Decimal    `json:"harbour_tax"`
	Details    []HarbourTaxDetail `json:"details"`
}

// HarbourTax charges started days × rounded tonnage × rate for every part of
// the stay, using the schedule in force for that part. The total is rounded to
// two decimals once, after summing.
//
// The result is nil when the form has no port of call, or is a draft still
// missing tonnage or stay dates.
func (c *Calculator) HarbourTax(schedules []model.TaxRates, form *model.HarborDuesForm) (result *HarbourTaxResult, err error) {
	defer func() { c.record(TaxHarbour, result != nil, err) }()

	if form == nil || !form.HasPortOfCall() {
		return nil, nil
	}
	if field := missingHarbourField(form); field != "" {
		if form.Status == model.StatusDraft {
			return nil, nil
		}
		return nil, &InvalidInputError{Tax: TaxHarbour, Field: field}
	}

	grossTonnage := *form.GrossTonnage
	stay, _ := form.Stay()
	segments, uncovered := splitStay(sortedCopy(schedules), stay)
	for _, gap := range uncovered {
		c.fault(metrics.FaultUncoveredStay, form, zap.Stringer("range", gap))
	}

	result = &HarbourTaxResult{HarbourTax: decimal.Zero, Details: make([]HarbourTaxDetail, 0, len(segments))}
	for _, seg := range segments {
		rate, ambiguous := seg.rates.GetPortTaxRate(form.PortOfCallID, form.VesselType, grossTonnage)
		if ambiguous {
			c.fault(metrics.FaultAmbiguousPortTaxRate, form,
				zap.Stringer("tax_rates_id", seg.rates.ID),
				zap.String("vessel_type", string(form.VesselType)),
				zap.Int("gross_tonnage", grossTonnage))
		}
		if rate == nil {
			c.fault(metrics.FaultNoPortTaxRate, form,
				zap.Stringer("tax_rates_id", seg.rates.ID),
				zap.String("vessel_type", string(form.VesselType)),
				zap.Int("gross_tonnage", grossTonnage))
			continue
		}

		tonnage := rate.EffectiveTonnage(grossTonnage)
		days := seg.rng.StartedDays()
		tax := rate.PortTaxRate.
			Mul(decimal.NewFromInt(int64(tonnage))).
			Mul(decimal.NewFromInt(int64(days)))

		result.Details = append(result.Details, HarbourTaxDetail{
			TaxRatesID:  seg.rates.ID,
			PortTaxRate: rate,
			DateRange:   seg.rng,
			StartedDays: days,
			Tonnage:     tonnage,
			HarbourTax:  tax,
		})
		result.HarbourTax = result.HarbourTax.Add(tax)
	}
	result.HarbourTax = result.HarbourTax.Round(2)
	return result, nil
}

func missingHarbourField(form *model.HarborDuesForm) string {
	switch {
	case form.GrossTonnage == nil:
		return "gross_tonnage"
	case form.DatetimeOfArrival == nil:
		return "datetime_of_arrival"
	case form.DatetimeOfDeparture == nil:
		return "datetime_of_departure"
	}
	return ""
}
