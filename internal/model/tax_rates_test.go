package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func bracket(port *uuid.UUID, vessel *VesselType, start int, end *int, rate string) PortTaxRate {
	return PortTaxRate{
		Base:        Base{ID: uuid.New()},
		PortID:      port,
		VesselType:  vessel,
		GTStart:     start,
		GTEnd:       end,
		PortTaxRate: decimal.RequireFromString(rate),
	}
}

func TestTaxRates_GetPortTaxRateSpecificity(t *testing.T) {
	nuuk, sisimiut := uuid.New(), uuid.New()
	cruise := VesselTypeCruise
	schedule := TaxRates{PortTaxRates: []PortTaxRate{
		bracket(nil, nil, 0, nil, "1.00"),
		bracket(nil, &cruise, 0, nil, "2.00"),
		bracket(&nuuk, nil, 0, nil, "3.00"),
		bracket(&nuuk, &cruise, 0, nil, "4.00"),
	}}

	tests := []struct {
		name   string
		port   *uuid.UUID
		vessel VesselType
		want   string
	}{
		{"exact port and type", &nuuk, VesselTypeCruise, "4"},
		{"exact port beats exact type", &nuuk, VesselTypeFreighter, "3"},
		{"exact type at other port", &sisimiut, VesselTypeCruise, "2"},
		{"fallback", &sisimiut, VesselTypeFreighter, "1"},
		{"no port", nil, VesselTypeCruise, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ambiguous := schedule.GetPortTaxRate(tt.port, tt.vessel, 500)
			require.NotNil(t, rate)
			assert.False(t, ambiguous)
			assert.True(t, rate.PortTaxRate.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestTaxRates_GetPortTaxRateBrackets(t *testing.T) {
	schedule := TaxRates{PortTaxRates: []PortTaxRate{
		bracket(nil, nil, 0, ptr(30), "0.50"),
		bracket(nil, nil, 30, ptr(1000), "0.70"),
		bracket(nil, nil, 1000, nil, "1.00"),
	}}

	rate, ambiguous := schedule.GetPortTaxRate(nil, VesselTypeOther, 10)
	assert.False(t, ambiguous)
	assert.True(t, rate.PortTaxRate.Equal(decimal.RequireFromString("0.50")))

	rate, ambiguous = schedule.GetPortTaxRate(nil, VesselTypeOther, 30)
	assert.False(t, ambiguous, "shared edge resolves to the upper bracket")
	assert.True(t, rate.PortTaxRate.Equal(decimal.RequireFromString("0.70")))

	rate, _ = schedule.GetPortTaxRate(nil, VesselTypeOther, 5000)
	assert.True(t, rate.PortTaxRate.Equal(decimal.RequireFromString("1.00")))

	narrow := TaxRates{PortTaxRates: []PortTaxRate{bracket(nil, nil, 100, ptr(200), "1")}}
	rate, ambiguous = narrow.GetPortTaxRate(nil, VesselTypeOther, 50)
	assert.Nil(t, rate)
	assert.False(t, ambiguous)
}

func TestTaxRates_GetPortTaxRateAmbiguousPicksFirst(t *testing.T) {
	first := bracket(nil, nil, 0, nil, "1.00")
	second := bracket(nil, nil, 0, nil, "9.00")
	schedule := TaxRates{PortTaxRates: []PortTaxRate{first, second}}

	for range 2 {
		rate, ambiguous := schedule.GetPortTaxRate(nil, VesselTypeFisher, 100)
		assert.True(t, ambiguous)
		assert.Equal(t, first.ID, rate.ID)
	}
}

func TestPortTaxRate_EffectiveTonnage(t *testing.T) {
	r := PortTaxRate{RoundGrossTonUpTo: 70}
	assert.Equal(t, 70, r.EffectiveTonnage(10))
	assert.Equal(t, 70, r.EffectiveTonnage(70))
	assert.Equal(t, 140, r.EffectiveTonnage(71))
	assert.Equal(t, 71, (&PortTaxRate{}).EffectiveTonnage(71))
}

func TestTaxRates_GetDisembarkmentTaxRate(t *testing.T) {
	site := &DisembarkmentSite{Base: Base{ID: uuid.New()}, Municipality: MunicipalityQeqertalik}
	general := DisembarkmentTaxRate{Base: Base{ID: uuid.New()}, Municipality: MunicipalityQeqertalik}
	specific := DisembarkmentTaxRate{Base: Base{ID: uuid.New()}, Municipality: MunicipalityQeqertalik, DisembarkmentSiteID: &site.ID}
	other := DisembarkmentTaxRate{Base: Base{ID: uuid.New()}, Municipality: MunicipalityKujalleq}

	schedule := TaxRates{DisembarkmentTaxRates: []DisembarkmentTaxRate{other, specific, general}}
	rate, ambiguous := schedule.GetDisembarkmentTaxRate(site)
	assert.False(t, ambiguous)
	assert.Equal(t, specific.ID, rate.ID)

	otherSite := &DisembarkmentSite{Base: Base{ID: uuid.New()}, Municipality: MunicipalityQeqertalik}
	rate, _ = schedule.GetDisembarkmentTaxRate(otherSite)
	assert.Equal(t, general.ID, rate.ID)

	rate, _ = schedule.GetDisembarkmentTaxRate(nil)
	assert.Nil(t, rate)
}

func TestSortAndLinkTaxRates(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rates := []TaxRates{
		{StartDatetime: &feb},
		{StartDatetime: nil},
		{StartDatetime: &jan, EndDatetime: &jan},
	}
	SortTaxRates(rates)
	assert.Nil(t, rates[0].StartDatetime)
	assert.Equal(t, jan, *rates[1].StartDatetime)
	assert.Equal(t, feb, *rates[2].StartDatetime)

	changed := LinkTaxRates(rates)
	assert.Equal(t, []int{0, 1}, changed)
	assert.Equal(t, jan, *rates[0].EndDatetime)
	assert.Equal(t, feb, *rates[1].EndDatetime)
	assert.Nil(t, rates[2].EndDatetime)

	assert.Empty(t, LinkTaxRates(rates), "linking is idempotent")
}

func TestTaxRates_Covers(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	schedule := TaxRates{StartDatetime: &jan, EndDatetime: &feb}
	assert.True(t, schedule.Covers(jan))
	assert.False(t, schedule.Covers(feb))
	assert.True(t, (&TaxRates{}).Covers(feb))

	got, ok := schedule.GetOverlap(jan.AddDate(0, 0, 20), feb.AddDate(0, 0, 5))
	require.True(t, ok)
	assert.Equal(t, feb, got.End)
}
