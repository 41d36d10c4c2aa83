package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxTotals sums the stored taxes of a set of forms. Forms without a value for
// a tax do not contribute to it.
type TaxTotals struct {
	Forms            int             `json:"forms"`
	HarbourTax       decimal.Decimal `json:"harbour_tax"`
	PaxTax           decimal.Decimal `json:"pax_tax"`
	DisembarkmentTax decimal.Decimal `json:"disembarkment_tax"`
	Total            decimal.Decimal `json:"total"`
}

// Add folds one form into the totals.
func (t *TaxTotals) Add(form *HarborDuesForm) {
	t.Forms++
	for _, v := range []struct {
		into *decimal.Decimal
		from decimal.NullDecimal
	}{
		{&t.HarbourTax, form.HarbourTax},
		{&t.PaxTax, form.PaxTax},
		{&t.DisembarkmentTax, form.DisembarkmentTax},
	} {
		if v.from.Valid {
			*v.into = v.into.Add(v.from.Decimal)
			t.Total = t.Total.Add(v.from.Decimal)
		}
	}
}

type StatusTotals struct {
	Status Status `json:"status"`
	TaxTotals
}

type PortTotals struct {
	PortID   *uuid.UUID `json:"port_id"` // nil for forms without a port of call
	PortName string     `json:"port_name"`
	TaxTotals
}

// TaxStatistics aggregates submitted forms over a submission window.
type TaxStatistics struct {
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Overall  TaxTotals      `json:"overall"`
	ByStatus []StatusTotals `json:"by_status"`
	ByPort   []PortTotals   `json:"by_port"`
}
