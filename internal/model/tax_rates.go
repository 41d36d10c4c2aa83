package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRates is a rate schedule: the set of rates in force from StartDatetime
// until the next schedule starts. EndDatetime is derived, never entered.
type TaxRates struct {
	Base
	PaxTaxRate            decimal.NullDecimal    `gorm:"type:decimal(12,2)" json:"pax_tax_rate"`
	StartDatetime         *time.Time             `gorm:"index" json:"start_datetime"` // nil = since forever
	EndDatetime           *time.Time             `gorm:"index" json:"end_datetime"`   // nil = until further notice
	PortTaxRates          []PortTaxRate          `gorm:"foreignKey:TaxRatesID;constraint:OnDelete:CASCADE" json:"port_tax_rates"`
	DisembarkmentTaxRates []DisembarkmentTaxRate `gorm:"foreignKey:TaxRatesID;constraint:OnDelete:CASCADE" json:"disembarkment_tax_rates"`
}

func (TaxRates) PermissionObject() string { return ObjectTaxRates }

// Range is the effective interval of the schedule with open edges mapped to MinTime/MaxTime.
func (t *TaxRates) Range() DateTimeRange {
	return BoundedRange(t.StartDatetime, t.EndDatetime)
}

// GetOverlap intersects the schedule with [from, to).
func (t *TaxRates) GetOverlap(from, to time.Time) (DateTimeRange, bool) {
	return t.Range().Overlap(NewDateTimeRange(from, to))
}

func (t *TaxRates) Covers(at time.Time) bool {
	return t.Range().Contains(at)
}

// GetPortTaxRate picks the most specific entry for the port, vessel type and
// gross tonnage: an exact port beats any port, then an exact vessel type beats
// any type, then a bracket holding the tonnage strictly inside beats one that
// merely ends on it. Remaining ties resolve to the first entry in stored order
// and are flagged as ambiguous. The result is nil when nothing matches.
func (t *TaxRates) GetPortTaxRate(portID *uuid.UUID, vesselType VesselType, grossTonnage int) (rate *PortTaxRate, ambiguous bool) {
	best := -1
	for i := range t.PortTaxRates {
		candidate := &t.PortTaxRates[i]
		score, ok := candidate.matchScore(portID, vesselType, grossTonnage)
		if !ok {
			continue
		}
		switch {
		case score > best:
			rate, best, ambiguous = candidate, score, false
		case score == best:
			ambiguous = true
		}
	}
	return rate, ambiguous
}

// GetDisembarkmentTaxRate picks the entry for the site's municipality,
// preferring one naming the site itself over a municipality-wide entry.
func (t *TaxRates) GetDisembarkmentTaxRate(site *DisembarkmentSite) (rate *DisembarkmentTaxRate, ambiguous bool) {
	if site == nil {
		return nil, false
	}
	best := -1
	for i := range t.DisembarkmentTaxRates {
		candidate := &t.DisembarkmentTaxRates[i]
		if candidate.Municipality != site.Municipality {
			continue
		}
		score := 0
		if candidate.DisembarkmentSiteID != nil {
			if *candidate.DisembarkmentSiteID != site.ID {
				continue
			}
			score = 1
		}
		switch {
		case score > best:
			rate, best, ambiguous = candidate, score, false
		case score == best:
			ambiguous = true
		}
	}
	return rate, ambiguous
}

// SortTaxRates orders schedules by start, open starts first. Equal starts keep their order.
func SortTaxRates(rates []TaxRates) {
	sort.SliceStable(rates, func(i, j int) bool {
		a, b := rates[i].StartDatetime, rates[j].StartDatetime
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
}

// LinkTaxRates derives every EndDatetime from the successor's start. The input
// must already be sorted. It returns the indexes whose end changed.
func LinkTaxRates(rates []TaxRates) []int {
	var changed []int
	for i := range rates {
		var next *time.Time
		if i+1 < len(rates) && rates[i+1].StartDatetime != nil {
			n := *rates[i+1].StartDatetime
			next = &n
		}
		if !sameTime(rates[i].EndDatetime, next) {
			rates[i].EndDatetime = next
			changed = append(changed, i)
		}
	}
	return changed
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// PortTaxRate is one tonnage bracket of harbour tax, optionally narrowed to a
// port and a vessel type.
type PortTaxRate struct {
	Base
	TaxRatesID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tax_rates_id"`
	PortID            *uuid.UUID      `gorm:"type:uuid;index" json:"port_id"` // nil = any port
	Port              *Port           `gorm:"foreignKey:PortID" json:"port,omitempty"`
	VesselType        *VesselType     `gorm:"type:varchar(20)" json:"vessel_type"` // nil = any type
	GTStart           int             `gorm:"not null;default:0" json:"gt_start"`
	GTEnd             *int            `json:"gt_end"` // nil = no upper bound
	PortTaxRate       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"port_tax_rate"`
	RoundGrossTonUpTo int             `gorm:"not null;default:0" json:"round_gross_ton_up_to"`
	Position          int             `gorm:"not null;default:0" json:"-"` // entry order, breaks match ties
}

func (PortTaxRate) PermissionObject() string { return ObjectPortTaxRate }

func (r *PortTaxRate) ContainsTonnage(grossTonnage int) bool {
	return grossTonnage >= r.GTStart && (r.GTEnd == nil || grossTonnage <= *r.GTEnd)
}

// EffectiveTonnage rounds the gross tonnage up to the next multiple of RoundGrossTonUpTo.
func (r *PortTaxRate) EffectiveTonnage(grossTonnage int) int {
	n := r.RoundGrossTonUpTo
	if n <= 0 || grossTonnage <= 0 {
		return grossTonnage
	}
	return ((grossTonnage + n - 1) / n) * n
}

func (r *PortTaxRate) matchScore(portID *uuid.UUID, vesselType VesselType, grossTonnage int) (int, bool) {
	if !r.ContainsTonnage(grossTonnage) {
		return 0, false
	}
	score := 0
	if r.PortID != nil {
		if !sameID(r.PortID, portID) {
			return 0, false
		}
		score += 4
	}
	if r.VesselType != nil {
		if *r.VesselType != vesselType {
			return 0, false
		}
		score += 2
	}
	if r.GTEnd == nil || grossTonnage < *r.GTEnd {
		score++
	}
	return score, true
}

// DisembarkmentTaxRate is the per passenger rate for landing in a
// municipality, optionally narrowed to a single site.
type DisembarkmentTaxRate struct {
	Base
	TaxRatesID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"tax_rates_id"`
	Municipality        Municipality       `gorm:"not null" json:"municipality"`
	DisembarkmentSiteID *uuid.UUID         `gorm:"type:uuid;index" json:"disembarkment_site_id"` // nil = any site in the municipality
	DisembarkmentSite   *DisembarkmentSite `gorm:"foreignKey:DisembarkmentSiteID" json:"disembarkment_site,omitempty"`
	DisembarkmentTax    decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"disembarkment_tax_rate"`
	Position            int                `gorm:"not null;default:0" json:"-"`
}

func (DisembarkmentTaxRate) PermissionObject() string { return ObjectDisembarkmentTaxRate }
