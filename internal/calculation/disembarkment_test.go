package calculation

import (
	"testing"

	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func site(m model.Municipality) *model.DisembarkmentSite {
	return &model.DisembarkmentSite{Base: base(), Name: "site", Municipality: m}
}

func disembarkmentRate(m model.Municipality, siteID *uuid.UUID, rate string) model.DisembarkmentTaxRate {
	return model.DisembarkmentTaxRate{Base: base(), Municipality: m, DisembarkmentSiteID: siteID, DisembarkmentTax: dec(rate)}
}

func landing(s *model.DisembarkmentSite, passengers int) model.Disembarkment {
	return model.Disembarkment{Base: base(), DisembarkmentSiteID: s.ID, DisembarkmentSite: s, NumberOfPassengers: passengers}
}

func TestDisembarkmentTax_SingleLine(t *testing.T) {
	nuuk := site(model.MunicipalitySermersooq)
	rates := schedule(nil)
	rates.DisembarkmentTaxRates = []model.DisembarkmentTaxRate{disembarkmentRate(model.MunicipalitySermersooq, nil, "30")}
	schedules := linked(rates)

	form := cruiseForm(nil)
	form.DateOfSubmission = at("2025-06-01 00:00")
	form.Disembarkments = []model.Disembarkment{landing(nuuk, 10)}

	calc := NewCalculator(nil)
	taxes, err := calc.CalculateAll(schedules, form)
	require.NoError(t, err)
	assert.Nil(t, taxes.Harbour)
	assert.Nil(t, taxes.Passenger)
	require.NotNil(t, taxes.Disembarkment)
	assert.True(t, taxes.Disembarkment.DisembarkmentTax.Equal(dec("300.00")))

	taxes.Apply(form)
	assert.False(t, form.HarbourTax.Valid)
	assert.False(t, form.PaxTax.Valid)
	require.True(t, form.DisembarkmentTax.Valid)
	assert.True(t, form.DisembarkmentTax.Decimal.Equal(dec("300")))
}

func TestDisembarkmentTax_SiteRateBeatsMunicipalityRate(t *testing.T) {
	special := site(model.MunicipalityAvannaata)
	ordinary := site(model.MunicipalityAvannaata)
	elsewhere := site(model.MunicipalityKujalleq)

	rates := schedule(nil)
	rates.DisembarkmentTaxRates = []model.DisembarkmentTaxRate{
		disembarkmentRate(model.MunicipalityAvannaata, nil, "20"),
		disembarkmentRate(model.MunicipalityAvannaata, &special.ID, "45.555"),
	}
	form := cruiseForm(nil)
	form.DatetimeOfArrival = at("2025-06-01 00:00")
	form.Disembarkments = []model.Disembarkment{
		landing(ordinary, 5),
		landing(special, 2),
		landing(elsewhere, 7),
	}

	result, err := NewCalculator(nil).DisembarkmentTax(linked(rates), form)
	require.NoError(t, err)
	require.Len(t, result.Details, 3)

	assert.Equal(t, ordinary.ID, result.Details[0].Disembarkment.DisembarkmentSiteID)
	assert.True(t, result.Details[0].DisembarkmentTax.Equal(dec("100")))
	assert.True(t, result.Details[1].DisembarkmentTax.Equal(dec("91.11")), result.Details[1].DisembarkmentTax.String())
	assert.Nil(t, result.Details[2].DisembarkmentTaxRate)
	assert.True(t, result.Details[2].DisembarkmentTax.IsZero())
	assert.True(t, result.DisembarkmentTax.Equal(dec("191.11")))
}

func TestDisembarkmentTax_NoLinesIsZeroForCruise(t *testing.T) {
	form := cruiseForm(nil)
	result, err := NewCalculator(nil).DisembarkmentTax(nil, form)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.DisembarkmentTax.IsZero())
	assert.Empty(t, result.Details)
}

func TestDisembarkmentTax_NotApplicable(t *testing.T) {
	s := site(model.MunicipalityQeqqata)
	rates := schedule(at("2025-01-01 00:00"))
	rates.DisembarkmentTaxRates = []model.DisembarkmentTaxRate{disembarkmentRate(model.MunicipalityQeqqata, nil, "10")}
	schedules := linked(rates)
	calc := NewCalculator(nil)

	freighter := cruiseForm(nil)
	freighter.VesselType = model.VesselTypeFreighter
	result, err := calc.DisembarkmentTax(schedules, freighter)
	require.NoError(t, err)
	assert.Nil(t, result)

	undated := cruiseForm(nil)
	undated.Disembarkments = []model.Disembarkment{landing(s, 1)}
	result, err = calc.DisembarkmentTax(schedules, undated)
	require.NoError(t, err)
	assert.Nil(t, result)

	early := cruiseForm(nil)
	early.DateOfSubmission = at("2024-01-01 00:00")
	early.Disembarkments = []model.Disembarkment{landing(s, 1)}
	result, err = calc.DisembarkmentTax(schedules, early)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDisembarkmentTax_UnloadedSiteIsInvalidInput(t *testing.T) {
	form := cruiseForm(nil)
	form.DateOfSubmission = at("2025-06-01 00:00")
	form.Disembarkments = []model.Disembarkment{{Base: base(), DisembarkmentSiteID: uuid.New(), NumberOfPassengers: 1}}

	_, err := NewCalculator(nil).DisembarkmentTax(linked(schedule(nil)), form)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "disembarkment_site", invalid.Field)
}
