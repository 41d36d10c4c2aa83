package calculation

import (
	"testing"

	"portfee/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paxSchedules() []model.TaxRates {
	first := schedule(nil)
	first.PaxTaxRate = decimal.NewNullDecimal(dec("50"))
	second := schedule(at("2025-01-01 00:00"))
	second.PaxTaxRate = decimal.NewNullDecimal(dec("70.5"))
	third := schedule(at("2026-01-01 00:00"))
	return linked(first, second, third)
}

func cruiseForm(passengers *int) *model.HarborDuesForm {
	return &model.HarborDuesForm{
		Base:               base(),
		Status:             model.StatusNew,
		VesselType:         model.VesselTypeCruise,
		NoPortOfCall:       true,
		NumberOfPassengers: passengers,
	}
}

func TestPassengerTax_UsesScheduleAtArrival(t *testing.T) {
	form := cruiseForm(intPtr(100))
	form.DatetimeOfArrival = at("2024-12-31 23:00")
	form.DatetimeOfDeparture = at("2025-01-03 10:00")
	form.DateOfSubmission = at("2025-02-01 00:00")

	result, err := NewCalculator(nil).PassengerTax(paxSchedules(), form)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.PaxTaxRate.Equal(dec("50")))
	assert.True(t, result.PaxTax.Equal(dec("5000.00")))
	assert.Equal(t, 100, result.NumberOfPax)
}

func TestPassengerTax_FallsBackToSubmissionDate(t *testing.T) {
	form := cruiseForm(intPtr(3))
	form.DateOfSubmission = at("2025-06-01 00:00")

	result, err := NewCalculator(nil).PassengerTax(paxSchedules(), form)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.PaxTax.Equal(dec("211.50")), result.PaxTax.String())
}

func TestPassengerTax_NotApplicable(t *testing.T) {
	calc := NewCalculator(nil)
	schedules := paxSchedules()

	tests := []struct {
		name string
		form func() *model.HarborDuesForm
	}{
		{"not a cruise", func() *model.HarborDuesForm {
			f := cruiseForm(intPtr(10))
			f.VesselType = model.VesselTypePassenger
			f.DateOfSubmission = at("2025-06-01 00:00")
			return f
		}},
		{"no passenger count on a no-port-of-call cruise", func() *model.HarborDuesForm {
			f := cruiseForm(nil)
			f.DateOfSubmission = at("2025-06-01 00:00")
			return f
		}},
		{"no reference date", func() *model.HarborDuesForm {
			return cruiseForm(intPtr(10))
		}},
		{"schedule without passenger rate", func() *model.HarborDuesForm {
			f := cruiseForm(intPtr(10))
			f.DateOfSubmission = at("2026-06-01 00:00")
			return f
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.PassengerTax(schedules, tt.form())
			require.NoError(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestPassengerTax_NoScheduleAtDate(t *testing.T) {
	only := schedule(at("2025-01-01 00:00"))
	only.PaxTaxRate = decimal.NewNullDecimal(dec("50"))
	form := cruiseForm(intPtr(10))
	form.DateOfSubmission = at("2024-06-01 00:00")

	result, err := NewCalculator(nil).PassengerTax([]model.TaxRates{only}, form)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestPassengerTax_RequiredCountMissing(t *testing.T) {
	form := cruiseForm(nil)
	form.NoPortOfCall = false
	form.DateOfSubmission = at("2025-06-01 00:00")

	_, err := NewCalculator(nil).PassengerTax(paxSchedules(), form)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "number_of_passengers", invalid.Field)
}
