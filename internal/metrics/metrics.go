package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Integrity fault kinds.
const (
	FaultNoPortTaxRate          = "no_port_tax_rate"
	FaultAmbiguousPortTaxRate   = "ambiguous_port_tax_rate"
	FaultNoDisembarkmentTaxRate = "no_disembarkment_tax_rate"
	FaultAmbiguousDisembarkment = "ambiguous_disembarkment_tax_rate"
	FaultUncoveredStay          = "uncovered_stay"
	FaultNoTaxRatesAtDate       = "no_tax_rates_at_date"
)

// Calculation outcomes.
const (
	OutcomeComputed      = "computed"
	OutcomeNotApplicable = "not_applicable"
	OutcomeError         = "error"
)

var (
	TaxCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfee",
		Name:      "tax_calculations_total",
		Help:      "Tax calculations by tax kind and outcome.",
	}, []string{"tax", "outcome"})

	IntegrityFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfee",
		Name:      "rate_integrity_faults_total",
		Help:      "Rate schedule data problems met while calculating taxes.",
	}, []string{"kind"})

	BatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portfee",
		Name:      "recalculation_failures_total",
		Help:      "Forms that failed during batch recalculation.",
	})
)

func RecordCalculation(tax, outcome string) {
	TaxCalculations.WithLabelValues(tax, outcome).Inc()
}

func RecordFault(kind string) {
	IntegrityFaults.WithLabelValues(kind).Inc()
}
