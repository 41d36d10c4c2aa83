package calculation

import (
	"portfee/internal/model"

	"github.com/shopspring/decimal"
)

// Taxes holds the three tax results for one form. A nil member means that
// tax does not apply.
type Taxes struct {
	Harbour       *HarbourTaxResult       `json:"harbour"`
	Passenger     *PassengerTaxResult     `json:"passenger"`
	Disembarkment *DisembarkmentTaxResult `json:"disembarkment"`
}

// CalculateAll runs all three calculations against the same schedules.
func (c *Calculator) CalculateAll(schedules []model.TaxRates, form *model.HarborDuesForm) (*Taxes, error) {
	harbour, err := c.HarbourTax(schedules, form)
	if err != nil {
		return nil, err
	}
	pax, err := c.PassengerTax(schedules, form)
	if err != nil {
		return nil, err
	}
	disembarkment, err := c.DisembarkmentTax(schedules, form)
	if err != nil {
		return nil, err
	}
	return &Taxes{Harbour: harbour, Passenger: pax, Disembarkment: disembarkment}, nil
}

// Apply copies the computed totals onto the form's tax fields. Fields of
// taxes that do not apply are left as they are.
func (t *Taxes) Apply(form *model.HarborDuesForm) {
	if t.Harbour != nil {
		form.HarbourTax = decimal.NewNullDecimal(t.Harbour.HarbourTax)
	}
	if t.Passenger != nil {
		form.PaxTax = decimal.NewNullDecimal(t.Passenger.PaxTax)
	}
	if t.Disembarkment != nil {
		form.DisembarkmentTax = decimal.NewNullDecimal(t.Disembarkment.DisembarkmentTax)
	}
}
