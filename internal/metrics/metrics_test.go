package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFault(t *testing.T) {
	before := testutil.ToFloat64(IntegrityFaults.WithLabelValues(FaultUncoveredStay))
	RecordFault(FaultUncoveredStay)
	assert.Equal(t, before+1, testutil.ToFloat64(IntegrityFaults.WithLabelValues(FaultUncoveredStay)))
}

func TestRecordCalculation(t *testing.T) {
	before := testutil.ToFloat64(TaxCalculations.WithLabelValues("harbour", OutcomeComputed))
	RecordCalculation("harbour", OutcomeComputed)
	assert.Equal(t, before+1, testutil.ToFloat64(TaxCalculations.WithLabelValues("harbour", OutcomeComputed)))
}
