// Package pipeline runs the configured sequence of cluster-refinement
// operators over shared manager state. The scheduling model is
// single-threaded and cooperative: operators run strictly in the
// configured order against a shared cluster/track/calo-hit population,
// and a failing operator never blocks the rest of the pass — its error
// is logged and the driver moves on to the next step.
package pipeline

import (
	"fmt"

	"github.com/caloflow/pfreco/internal/logging"
)

// Step is one named operator invocation. Run is a closure over whatever
// managers, config, and plugins that operator needs; Pipeline itself
// stays ignorant of every package it schedules.
type Step struct {
	Name string
	Run  func() error
}

// StepResult records the outcome of a single step within a pass.
type StepResult struct {
	Name string
	Err  error
}

// Pass is an ordered, named sequence of steps run once over the current
// state. Building a Pass per event (rather than threading raw Step
// slices through Run) lets a caller log which configured pass is in
// flight.
type Pass struct {
	Name  string
	Steps []Step
}

// Run executes every step of every pass in order. A step's error is
// logged and does not prevent later steps or passes from running,
// matching the framework-level driver behaviour described for this
// core: operators always get a turn, and failure is local to the
// operator that produced it. Run returns every step's outcome for a
// caller that wants to inspect or assert on pass-level results (e.g.
// diagnostics, tests).
func Run(passes []Pass) []StepResult {
	var results []StepResult
	for _, pass := range passes {
		logging.Logf("pipeline: starting pass %q (%d steps)", pass.Name, len(pass.Steps))
		for _, step := range pass.Steps {
			err := step.Run()
			results = append(results, StepResult{Name: fmt.Sprintf("%s/%s", pass.Name, step.Name), Err: err})
			if err != nil {
				logging.Logf("pipeline: step %s/%s failed: %v", pass.Name, step.Name, err)
				continue
			}
			logging.Logf("pipeline: step %s/%s ok", pass.Name, step.Name)
		}
	}
	return results
}

// Failures filters results down to the ones that returned an error, the
// shape a caller typically wants to report or assert on.
func Failures(results []StepResult) []StepResult {
	var out []StepResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
