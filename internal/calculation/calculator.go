// Package calculation computes harbour, passenger and disembarkment tax for a
// harbour dues form against a set of rate schedules. It does no I/O: callers
// load the schedules and persist the results.
package calculation

import (
	"fmt"
	"sort"
	"time"

	"portfee/internal/logger"
	"portfee/internal/metrics"
	"portfee/internal/model"

	"go.uber.org/zap"
)

const (
	TaxHarbour       = "harbour"
	TaxPassenger     = "passenger"
	TaxDisembarkment = "disembarkment"
)

// InvalidInputError reports a field that upstream validation should have
// required before the form reached the calculator.
type InvalidInputError struct {
	Tax   string
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("cannot calculate %s tax: %s is missing", e.Tax, e.Field)
}

// Calculator is safe for concurrent use.
type Calculator struct {
	log *zap.Logger
}

func NewCalculator(log *zap.Logger) *Calculator {
	return &Calculator{log: logger.OrNop(log).Named("calculation")}
}

// fault reports a rate data problem. The calculation carries on with its fallback.
func (c *Calculator) fault(kind string, form *model.HarborDuesForm, fields ...zap.Field) {
	metrics.RecordFault(kind)
	c.log.Warn("rate schedule integrity fault",
		append([]zap.Field{zap.String("kind", kind), zap.Stringer("form_id", form.ID)}, fields...)...)
}

func (c *Calculator) record(tax string, computed bool, err error) {
	switch {
	case err != nil:
		metrics.RecordCalculation(tax, metrics.OutcomeError)
	case !computed:
		metrics.RecordCalculation(tax, metrics.OutcomeNotApplicable)
	default:
		metrics.RecordCalculation(tax, metrics.OutcomeComputed)
	}
}

// sortedCopy returns the schedules in start order without touching the caller's slice.
func sortedCopy(schedules []model.TaxRates) []model.TaxRates {
	out := make([]model.TaxRates, len(schedules))
	copy(out, schedules)
	model.SortTaxRates(out)
	return out
}

// scheduleAt returns the schedule in force at t. With overlapping schedules
// the latest starting one wins.
func scheduleAt(sorted []model.TaxRates, t time.Time) *model.TaxRates {
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Covers(t) {
			return &sorted[i]
		}
	}
	return nil
}

type segment struct {
	rates *model.TaxRates
	rng   model.DateTimeRange
}

// splitStay cuts the stay at every schedule boundary inside it and assigns
// each piece to the schedule in force, merging neighbouring pieces of the same
// schedule. Pieces no schedule covers are returned separately. An empty stay
// becomes a single point segment at arrival.
func splitStay(sorted []model.TaxRates, stay model.DateTimeRange) (segments []segment, uncovered []model.DateTimeRange) {
	if stay.IsEmpty() {
		point := model.NewDateTimeRange(stay.Start, stay.Start)
		if rates := scheduleAt(sorted, stay.Start); rates != nil {
			return []segment{{rates: rates, rng: point}}, nil
		}
		return nil, []model.DateTimeRange{point}
	}

	points := []time.Time{stay.Start, stay.End}
	for i := range sorted {
		r := sorted[i].Range()
		for _, p := range []time.Time{r.Start, r.End} {
			if p.After(stay.Start) && p.Before(stay.End) {
				points = append(points, p)
			}
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	for k := 0; k+1 < len(points); k++ {
		if !points[k].Before(points[k+1]) {
			continue
		}
		piece := model.NewDateTimeRange(points[k], points[k+1])
		rates := scheduleAt(sorted, piece.Start)
		if rates == nil {
			if n := len(uncovered); n > 0 && uncovered[n-1].End.Equal(piece.Start) {
				uncovered[n-1].End = piece.End
			} else {
				uncovered = append(uncovered, piece)
			}
			continue
		}
		if n := len(segments); n > 0 && segments[n-1].rates == rates && segments[n-1].rng.End.Equal(piece.Start) {
			segments[n-1].rng.End = piece.End
			continue
		}
		segments = append(segments, segment{rates: rates, rng: piece})
	}
	return segments, uncovered
}
