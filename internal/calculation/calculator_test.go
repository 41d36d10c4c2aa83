package calculation

import (
	"testing"
	"time"

	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func at(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intPtr(n int) *int { return &n }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func base() model.Base { return model.Base{ID: uuid.New()} }

func schedule(start *time.Time, rates ...model.PortTaxRate) model.TaxRates {
	return model.TaxRates{Base: base(), StartDatetime: start, PortTaxRates: rates}
}

func portRate(port *uuid.UUID, vessel *model.VesselType, gtStart int, gtEnd *int, rate string) model.PortTaxRate {
	return model.PortTaxRate{
		Base:        base(),
		PortID:      port,
		VesselType:  vessel,
		GTStart:     gtStart,
		GTEnd:       gtEnd,
		PortTaxRate: dec(rate),
	}
}

// linked returns the schedules sorted and with their ends derived.
func linked(schedules ...model.TaxRates) []model.TaxRates {
	model.SortTaxRates(schedules)
	model.LinkTaxRates(schedules)
	return schedules
}

func harbourForm(port uuid.UUID, vessel model.VesselType, gt int, arrival, departure *time.Time) *model.HarborDuesForm {
	return &model.HarborDuesForm{
		Base:                base(),
		Status:              model.StatusNew,
		PortOfCallID:        &port,
		VesselType:          vessel,
		GrossTonnage:        intPtr(gt),
		DatetimeOfArrival:   arrival,
		DatetimeOfDeparture: departure,
	}
}

func TestHarbourTax_CrossesTwoScheduleBoundaries(t *testing.T) {
	port := uuid.New()
	schedules := linked(
		schedule(at("2024-01-01 00:00"), portRate(&port, nil, 0, nil, "1.10")),
		schedule(at("2025-01-01 00:00"), portRate(&port, nil, 0, nil, "2.20")),
		schedule(at("2025-02-01 00:00"), portRate(&port, nil, 0, nil, "1.10")),
	)
	form := harbourForm(port, model.VesselTypeCruise, 40000, at("2024-12-15 08:00"), at("2025-02-15 16:00"))

	result, err := NewCalculator(zaptest.NewLogger(t)).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Details, 3)

	assert.Equal(t, 17, result.Details[0].StartedDays)
	assert.Equal(t, 31, result.Details[1].StartedDays)
	assert.Equal(t, 15, result.Details[2].StartedDays)
	assert.True(t, result.HarbourTax.Equal(dec("4136000.00")), result.HarbourTax.String())

	assert.Equal(t, schedules[0].ID, result.Details[0].TaxRatesID)
	assert.Equal(t, schedules[2].ID, result.Details[2].TaxRatesID)
}

func TestHarbourTax_StraddlingSegmentsPartitionTheStay(t *testing.T) {
	port := uuid.New()
	schedules := linked(
		schedule(nil, portRate(nil, nil, 0, nil, "1.00")),
		schedule(at("2025-03-01 00:00"), portRate(nil, nil, 0, nil, "2.00")),
	)
	arrival, departure := at("2025-02-27 12:00"), at("2025-03-02 06:00")
	form := harbourForm(port, model.VesselTypeFreighter, 100, arrival, departure)

	result, err := NewCalculator(nil).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 2)

	first, second := result.Details[0].DateRange, result.Details[1].DateRange
	assert.True(t, first.Start.Equal(*arrival))
	assert.True(t, first.End.Equal(second.Start))
	assert.True(t, second.End.Equal(*departure))
	_, overlapping := first.Overlap(second)
	assert.False(t, overlapping)
}

func TestHarbourTax_FisherTonnageRoundedUp(t *testing.T) {
	port := uuid.New()
	fisher := model.VesselTypeFisher
	rate := portRate(nil, &fisher, 0, nil, "0.70")
	rate.RoundGrossTonUpTo = 70
	schedules := linked(schedule(nil, rate))
	form := harbourForm(port, fisher, 10, at("2025-05-01 10:00"), at("2025-05-08 10:00"))

	result, err := NewCalculator(nil).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.Equal(t, 70, result.Details[0].Tonnage)
	assert.Equal(t, 8, result.Details[0].StartedDays)
	assert.True(t, result.HarbourTax.Equal(dec("392.00")), result.HarbourTax.String())
}

func TestHarbourTax_ZeroLengthStayCountsOneDay(t *testing.T) {
	port := uuid.New()
	schedules := linked(schedule(nil, portRate(nil, nil, 0, nil, "2.00")))
	form := harbourForm(port, model.VesselTypeOther, 50, at("2025-05-01 10:00"), at("2025-05-01 10:00"))

	result, err := NewCalculator(nil).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.Equal(t, 1, result.Details[0].StartedDays)
	assert.True(t, result.HarbourTax.Equal(dec("100")))
}

func TestHarbourTax_RoundsOnlyTheTotal(t *testing.T) {
	port := uuid.New()
	schedules := linked(
		schedule(nil, portRate(nil, nil, 0, nil, "0.005")),
		schedule(at("2025-01-02 00:00"), portRate(nil, nil, 0, nil, "0.005")),
	)
	// 1 day × 1 ton × 0.005 per segment: 0.01 rounded per segment would give 0.02.
	form := harbourForm(port, model.VesselTypeOther, 1, at("2025-01-01 12:00"), at("2025-01-02 12:00"))

	result, err := NewCalculator(nil).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 2)
	assert.True(t, result.HarbourTax.Equal(dec("0.01")), result.HarbourTax.String())
}

func TestHarbourTax_NotApplicable(t *testing.T) {
	port := uuid.New()
	schedules := linked(schedule(nil, portRate(nil, nil, 0, nil, "1.00")))
	calc := NewCalculator(nil)

	t.Run("no port of call", func(t *testing.T) {
		form := harbourForm(port, model.VesselTypeCruise, 100, at("2025-01-01 00:00"), at("2025-01-02 00:00"))
		form.PortOfCallID = nil
		form.NoPortOfCall = true
		result, err := calc.HarbourTax(schedules, form)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("draft missing tonnage", func(t *testing.T) {
		form := harbourForm(port, model.VesselTypeCruise, 100, at("2025-01-01 00:00"), nil)
		form.Status = model.StatusDraft
		result, err := calc.HarbourTax(schedules, form)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("nil form", func(t *testing.T) {
		result, err := calc.HarbourTax(schedules, nil)
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestHarbourTax_SubmittedFormMissingTonnageIsInvalidInput(t *testing.T) {
	port := uuid.New()
	form := harbourForm(port, model.VesselTypeFreighter, 0, at("2025-01-01 00:00"), at("2025-01-02 00:00"))
	form.GrossTonnage = nil

	_, err := NewCalculator(nil).HarbourTax(nil, form)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "gross_tonnage", invalid.Field)
	assert.Equal(t, TaxHarbour, invalid.Tax)
}

func TestHarbourTax_MissingBracketContributesNothing(t *testing.T) {
	port := uuid.New()
	schedules := linked(
		schedule(nil, portRate(nil, nil, 0, intPtr(1000), "1.00")),
		schedule(at("2025-01-02 00:00"), portRate(nil, nil, 0, nil, "1.00")),
	)
	form := harbourForm(port, model.VesselTypeOther, 5000, at("2025-01-01 00:00"), at("2025-01-03 00:00"))

	result, err := NewCalculator(zaptest.NewLogger(t)).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.Equal(t, schedules[1].ID, result.Details[0].TaxRatesID)
	assert.True(t, result.HarbourTax.Equal(dec("5000")))
}

func TestHarbourTax_UncoveredStayIsSkipped(t *testing.T) {
	port := uuid.New()
	schedules := linked(schedule(at("2025-01-02 00:00"), portRate(nil, nil, 0, nil, "1.00")))
	form := harbourForm(port, model.VesselTypeOther, 10, at("2025-01-01 00:00"), at("2025-01-03 00:00"))

	result, err := NewCalculator(nil).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.Equal(t, 1, result.Details[0].StartedDays)
	assert.True(t, result.HarbourTax.Equal(dec("10")))
}

func TestHarbourTax_OverlappingSchedulesLaterStartWins(t *testing.T) {
	port := uuid.New()
	early := schedule(at("2025-01-01 00:00"), portRate(nil, nil, 0, nil, "1.00"))
	early.EndDatetime = at("2025-01-10 00:00")
	late := schedule(at("2025-01-05 00:00"), portRate(nil, nil, 0, nil, "3.00"))
	// deliberately unlinked and out of order
	schedules := []model.TaxRates{late, early}
	form := harbourForm(port, model.VesselTypeOther, 1, at("2025-01-03 00:00"), at("2025-01-07 00:00"))

	result, err := NewCalculator(nil).HarbourTax(schedules, form)
	require.NoError(t, err)
	require.Len(t, result.Details, 2)
	assert.Equal(t, early.ID, result.Details[0].TaxRatesID)
	assert.Equal(t, late.ID, result.Details[1].TaxRatesID)
	assert.True(t, result.HarbourTax.Equal(dec("8")), result.HarbourTax.String()) // 2×1 + 2×3
	assert.Equal(t, late.ID, schedules[0].ID, "caller's slice must not be reordered")
}

func TestHarbourTax_Idempotent(t *testing.T) {
	port := uuid.New()
	schedules := linked(
		schedule(nil, portRate(&port, nil, 0, nil, "1.10")),
		schedule(at("2025-01-01 00:00"), portRate(&port, nil, 0, nil, "2.20")),
	)
	form := harbourForm(port, model.VesselTypeCruise, 1234, at("2024-12-30 08:00"), at("2025-01-04 09:30"))
	calc := NewCalculator(nil)

	first, err := calc.HarbourTax(schedules, form)
	require.NoError(t, err)
	second, err := calc.HarbourTax(schedules, form)
	require.NoError(t, err)
	assert.True(t, first.HarbourTax.Equal(second.HarbourTax))
	assert.Equal(t, len(first.Details), len(second.Details))
}
