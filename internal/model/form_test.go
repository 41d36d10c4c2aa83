package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:    {StatusNew},
		StatusNew:      {StatusApproved, StatusRejected, StatusInvoiced},
		StatusApproved: {StatusInvoiced},
		StatusRejected: {StatusDraft},
		StatusInvoiced: {StatusPaid},
		StatusPaid:     nil,
	}
	all := []Status{StatusDraft, StatusNew, StatusApproved, StatusRejected, StatusInvoiced, StatusPaid}
	for from, targets := range allowed {
		for _, to := range all {
			assert.Equal(t, contains(targets, to), from.CanTransition(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, Status("BOGUS").Valid())
	assert.True(t, StatusPaid.IsInvoiced())
	assert.False(t, StatusApproved.IsInvoiced())
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestHarborDuesForm_Validate(t *testing.T) {
	arrival := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	departure := arrival.Add(48 * time.Hour)
	port := uuid.New()

	t.Run("draft requires nothing", func(t *testing.T) {
		f := &HarborDuesForm{Status: StatusDraft, VesselType: VesselTypeFreighter}
		assert.NoError(t, f.Validate())
	})

	t.Run("submitted freighter needs port tonnage and dates", func(t *testing.T) {
		f := &HarborDuesForm{Status: StatusNew, VesselType: VesselTypeFreighter}
		var verr *ValidationError
		require.ErrorAs(t, f.Validate(), &verr)
		assert.ElementsMatch(t, []string{"port_of_call", "gross_tonnage", "datetime_of_arrival", "datetime_of_departure"}, verr.Fields)
	})

	t.Run("cruise with port needs passengers", func(t *testing.T) {
		f := &HarborDuesForm{
			Status: StatusNew, VesselType: VesselTypeCruise, PortOfCallID: &port,
			GrossTonnage: ptr(1000), DatetimeOfArrival: &arrival, DatetimeOfDeparture: &departure,
		}
		var verr *ValidationError
		require.ErrorAs(t, f.Validate(), &verr)
		assert.Equal(t, []string{"number_of_passengers"}, verr.Fields)

		f.NumberOfPassengers = ptr(200)
		assert.NoError(t, f.Validate())
	})

	t.Run("cruise without port needs disembarkments only", func(t *testing.T) {
		f := &HarborDuesForm{Status: StatusNew, VesselType: VesselTypeCruise, NoPortOfCall: true}
		var verr *ValidationError
		require.ErrorAs(t, f.Validate(), &verr)
		assert.Equal(t, []string{"disembarkments"}, verr.Fields)

		f.Disembarkments = []Disembarkment{{NumberOfPassengers: 5}}
		assert.NoError(t, f.Validate())
	})

	t.Run("departure before arrival", func(t *testing.T) {
		f := &HarborDuesForm{Status: StatusDraft, VesselType: VesselTypeOther, DatetimeOfArrival: &departure, DatetimeOfDeparture: &arrival}
		assert.Error(t, f.Validate())
	})
}

func TestHarborDuesForm_TaxReferenceDate(t *testing.T) {
	arrival := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	submitted := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	f := &HarborDuesForm{DateOfSubmission: &submitted}
	assert.Equal(t, &submitted, f.TaxReferenceDate())
	f.DatetimeOfArrival = &arrival
	assert.Equal(t, &arrival, f.TaxReferenceDate())
	assert.Nil(t, (&HarborDuesForm{}).TaxReferenceDate())
}
