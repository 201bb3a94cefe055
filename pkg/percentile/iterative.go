/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package percentile

import (
	"context"
	"math"

	"github.com/siglens/pctlserver/pkg/datastore"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MaxIterations = 20
	// absolute band, in percentage points, around the requested percentile
	Tolerance = 0.5
	// threshold of the first counting query; only min and max matter for the next guess
	SeedGuess = 0.0
)

// Iterative searches for a threshold whose empirical CDF is within Tolerance
// of p, using only Count, CountAbove, Min and Max. The first real guess
// interpolates p across [min, max]; every later guess is a secant step
// through the two latest iteration records.
//
// Not converging is not an error: the last evaluated guess is returned with
// the trace, whose StopReason tells the caller how it ended. Guesses are not
// clamped to [min, max], so a diverging search shows up in the trace; a secant
// step that leaves the float64 range ends the search before it is evaluated.
type Iterative struct{}

func (Iterative) Estimate(ctx context.Context, ds datastore.DataStore, p int) (float64, *Trace, error) {
	if err := ValidatePercentile(p); err != nil {
		return 0, nil, err
	}

	ctx, span := tracer.Start(ctx, "percentile.Iterative")
	defer span.End()

	sum, err := datastore.Summarize(ctx, ds, SeedGuess)
	if err != nil {
		return 0, nil, err
	}
	n := sum.Count
	target := float64(p)

	trace := newTrace()
	prev := trace.add(SeedGuess, estimatedPercentile(n, sum.CountAbove))

	guess := interpolate(sum.Min, sum.Max, target/100)
	for i := 1; i <= MaxIterations; i++ {
		countAbove, err := ds.CountAbove(ctx, guess)
		if err != nil {
			return 0, nil, err
		}
		cur := trace.add(guess, estimatedPercentile(n, countAbove))

		if math.Abs(cur.Estimated-target) <= Tolerance {
			trace.StopReason = StopConverged
			break
		}

		// a zero-width value range is a degenerate denominator as well
		slope := 0.0
		if cur.Guess != prev.Guess && sum.Max != sum.Min {
			slope = (cur.Estimated - prev.Estimated) / (cur.Guess - prev.Guess)
		}
		if slope == 0 {
			trace.StopReason = StopPlateau
			break
		}

		intercept := prev.Estimated - slope*prev.Guess
		next := (target - intercept) / slope
		if math.IsNaN(next) || math.IsInf(next, 0) {
			trace.StopReason = StopDiverged
			break
		}
		guess = next
		prev = cur
	}
	if trace.StopReason == "" {
		trace.StopReason = StopIterationCap
	}

	final := trace.Last()
	if err := CheckFinite(final.Guess); err != nil {
		return 0, nil, err
	}
	span.SetAttributes(
		attribute.String("dataset", ds.Name()),
		attribute.Int64("count", int64(n)),
		attribute.Int("iterations", final.Iteration),
		attribute.String("stop_reason", string(trace.StopReason)),
	)
	log.Debugf("Iterative.Estimate: dataset=%v p=%v stop=%v iterations=%v guess=%v estimated=%v",
		ds.Name(), p, trace.StopReason, final.Iteration, final.Guess, final.Estimated)

	return final.Guess, trace, nil
}

// interpolate places frac of the way from lo to hi. The weighted form keeps the
// result finite for ranges wider than math.MaxFloat64, where hi-lo overflows.
func interpolate(lo float64, hi float64, frac float64) float64 {
	if lo == hi {
		return lo
	}
	return lo*(1-frac) + hi*frac
}

// estimatedPercentile is the share of values at or below the guess, in
// percent. count-below is derived rather than queried. n must be positive.
func estimatedPercentile(n uint64, countAbove uint64) float64 {
	var countBelow uint64
	if countAbove < n {
		countBelow = n - countAbove
	}
	return float64(countBelow) / float64(n) * 100
}
