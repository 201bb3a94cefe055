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

// StopReason tells why the iterative estimator stopped.
type StopReason string

const (
	// the estimated percentile of the returned guess is within Tolerance
	StopConverged StopReason = "converged"
	// two successive guesses gave no usable slope
	StopPlateau StopReason = "plateau"
	// MaxIterations were spent without converging
	StopIterationCap StopReason = "iteration_cap"
	// the next secant step is not a finite float64
	StopDiverged StopReason = "diverged"
)

type IterationRecord struct {
	Iteration int     `json:"iteration"`
	Guess     float64 `json:"guess"`
	Estimated float64 `json:"estimated_percentile"`
}

// Trace is the diagnostic output of the iterative estimator. Records are only
// ever appended, in increasing iteration order.
type Trace struct {
	Iterations []IterationRecord `json:"iterations"`
	StopReason StopReason        `json:"stop_reason"`
}

func newTrace() *Trace {
	return &Trace{Iterations: make([]IterationRecord, 0, MaxIterations+1)}
}

func (t *Trace) add(guess float64, estimated float64) IterationRecord {
	rec := IterationRecord{
		Iteration: len(t.Iterations),
		Guess:     guess,
		Estimated: estimated,
	}
	t.Iterations = append(t.Iterations, rec)
	return rec
}

// Last returns the most recent record. The trace must not be empty.
func (t *Trace) Last() IterationRecord {
	return t.Iterations[len(t.Iterations)-1]
}

func (t *Trace) Converged() bool {
	return t.StopReason == StopConverged
}
