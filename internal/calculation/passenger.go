package calculation

import (
	"time"

	"portfee/internal/metrics"
	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PassengerTaxResult struct {
	TaxRatesID  uuid.UUID       `json:"tax_rates_id"`
	Date        time.Time       `json:"date"`
	NumberOfPax int             `json:"number_of_passengers"`
	PaxTaxRate  decimal.Decimal `json:"pax_tax_rate"`
	PaxTax      decimal.Decimal `json:"pax_tax"`
}

// PassengerTax charges every passenger of a cruise call at the passenger rate
// in force on the tax reference date.
//
// The result is nil for non-cruise vessels, when the passenger count or the
// reference date is unknown, when no schedule covers the date, or when that
// schedule has no passenger rate.
func (c *Calculator) PassengerTax(schedules []model.TaxRates, form *model.HarborDuesForm) (result *PassengerTaxResult, err error) {
	defer func() { c.record(TaxPassenger, result != nil, err) }()

	if form == nil || !form.IsCruise() {
		return nil, nil
	}
	if form.NumberOfPassengers == nil {
		if form.RequiresNumberOfPassengers() {
			return nil, &InvalidInputError{Tax: TaxPassenger, Field: "number_of_passengers"}
		}
		return nil, nil
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
	if !rates.PaxTaxRate.Valid {
		return nil, nil
	}

	pax := *form.NumberOfPassengers
	return &PassengerTaxResult{
		TaxRatesID:  rates.ID,
		Date:        *at,
		NumberOfPax: pax,
		PaxTaxRate:  rates.PaxTaxRate.Decimal,
		PaxTax:      rates.PaxTaxRate.Decimal.Mul(decimal.NewFromInt(int64(pax))).Round(2),
	}, nil
}
