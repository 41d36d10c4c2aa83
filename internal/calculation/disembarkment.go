package calculation

import (
	"time"

	"portfee/internal/metrics"
	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DisembarkmentTaxDetail struct {
	Disembarkment        *model.Disembarkment        `json:"disembarkment"`
	Date                 time.Time                   `json:"date"`
	DisembarkmentTaxRate *model.DisembarkmentTaxRate `json:"disembarkment_tax_rate"`
	DisembarkmentTax     decimal.Decimal             `json:"disembarkment_tax"`
}

type DisembarkmentTaxResult struct {
	TaxRatesID       uuid.UUID                `json:"tax_rates_id"`
	DisembarkmentTax decimal.Decimal          `json:"disembarkment_tax"`
	Details          []DisembarkmentTaxDetail `json:"details"`
}

// DisembarkmentTax charges every disembarkment line of a cruise call at the
// rate for its site on the tax reference date. Lines appear in the details in
// form order; a line with no matching rate contributes zero.
//
// A cruise call without disembarkments yields a zero total. The result is nil
// for non-cruise vessels, when the reference date is unknown, or when no
// schedule covers it.
func (c *Calculator) DisembarkmentTax(schedules []model.TaxRates, form *model.HarborDuesForm) (result *DisembarkmentTaxResult, err error) {
	defer func() { c.record(TaxDisembarkment, result != nil, err) }()

	if form == nil || !form.IsCruise() {
		return nil, nil
	}
	if len(form.Disembarkments) == 0 {
		return &DisembarkmentTaxResult{DisembarkmentTax: decimal.Zero, Details: []DisembarkmentTaxDetail{}}, nil
	}
	at := form.TaxReferenceDate()
	if at == nil {
		return nil, nil
	}
	rates := scheduleAt(sortedCopy(schedules), *at)
	if rates == nil {
		c.fault(metrics.FaultNoTaxRatesAtDate, form, zap.Time("date", *at))
		return nil, nil
	}

	result = &DisembarkmentTaxResult{
		TaxRatesID:       rates.ID,
		DisembarkmentTax: decimal.Zero,
		Details:          make([]DisembarkmentTaxDetail, 0, len(form.Disembarkments)),
	}
	for i := range form.Disembarkments {
		line := &form.Disembarkments[i]
		if line.DisembarkmentSite == nil {
			return nil, &InvalidInputError{Tax: TaxDisembarkment, Field: "disembarkment_site"}
		}
		detail := DisembarkmentTaxDetail{Disembarkment: line, Date: *at, DisembarkmentTax: decimal.Zero}

		rate, ambiguous := rates.GetDisembarkmentTaxRate(line.DisembarkmentSite)
		if ambiguous {
			c.fault(metrics.FaultAmbiguousDisembarkment, form,
				zap.Stringer("tax_rates_id", rates.ID),
				zap.Stringer("disembarkment_site_id", line.DisembarkmentSiteID))
		}
		if rate == nil {
			c.fault(metrics.FaultNoDisembarkmentTaxRate, form,
				zap.Stringer("tax_rates_id", rates.ID),
				zap.Stringer("disembarkment_site_id", line.DisembarkmentSiteID))
		} else {
			detail.DisembarkmentTaxRate = rate
			detail.DisembarkmentTax = rate.DisembarkmentTax.
				Mul(decimal.NewFromInt(int64(line.NumberOfPassengers))).
				Round(2)
		}
		result.Details = append(result.Details, detail)
		result.DisembarkmentTax = result.DisembarkmentTax.Add(detail.DisembarkmentTax)
	}
	return result, nil
}
