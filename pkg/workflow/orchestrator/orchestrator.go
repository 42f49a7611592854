// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package orchestrator chains several workflow runs into one pipeline. Each
// step parses, validates and executes its own workflow; outputs accumulate
// in a shared data store and can be remapped into the paths the next step
// reads. A failing step stops the pipeline.
package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/engine"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/retry"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/validator"
)

// Mode selects how a step joins the chain.
type Mode string

const (
	// Sequential steps always run.
	Sequential Mode = "sequential"

	// Conditional steps run only when their condition path holds a
	// truthy value in the accumulated data.
	Conditional Mode = "conditional"
)

// Step is one workflow in the chain.
type Step struct {
	// Name identifies the step in results and logs.
	Name string

	// Source is the workflow DSL source for this step.
	Source string

	// Mode defaults to Sequential.
	Mode Mode

	// Condition is the accumulated-data path gating a Conditional step.
	Condition string

	// Retry overrides the retry policy for this step's operations.
	// Zero value means retry.APIRetry.
	Retry retry.Policy

	// InputMapping copies accumulated data between paths before the step
	// runs: target path <- source path.
	InputMapping map[string]string
}

// StepResult is the outcome of one step.
type StepResult struct {
	Name     string
	Success  bool
	Skipped  bool
	Reason   string
	Duration time.Duration
	Error    string
	RunID    string
}

// Result is the outcome of a whole orchestration.
type Result struct {
	Success        bool
	StepsCompleted int
	StepsTotal     int
	Steps          []StepResult
	Duration       time.Duration
	Data           map[string]interface{}
	Error          string
}

// Summary renders the pipeline outcome for human consumption.
func (r *Result) Summary() string {
	status := "failed"
	if r.Success {
		status = "succeeded"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Orchestration %s\n", status)
	fmt.Fprintf(&sb, "Steps: %d/%d completed\n", r.StepsCompleted, r.StepsTotal)
	fmt.Fprintf(&sb, "Duration: %.1fms\n", float64(r.Duration.Microseconds())/1000)
	sb.WriteString(strings.Repeat("─", 50))
	for _, sr := range r.Steps {
		mark := "✗"
		if sr.Success {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "\n  %s %s [%.1fms]", mark, sr.Name, float64(sr.Duration.Microseconds())/1000)
		if sr.Skipped {
			fmt.Fprintf(&sb, " (skipped: %s)", sr.Reason)
		}
		if sr.Error != "" {
			fmt.Fprintf(&sb, "\n     └─ %s", sr.Error)
		}
	}
	if r.Error != "" {
		fmt.Fprintf(&sb, "\n\n  %s", r.Error)
	}
	return sb.String()
}

// Orchestrator accumulates steps and runs them in order.
type Orchestrator struct {
	steps []Step
	log   *zap.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a zap logger for step-level diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithClock replaces the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithSleep replaces the sleep function passed to step engines.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// New creates an empty Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:   zap.NewNop(),
		now:   time.Now,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AddStep appends a step and returns the orchestrator for chaining.
func (o *Orchestrator) AddStep(step Step) *Orchestrator {
	if step.Mode == "" {
		step.Mode = Sequential
	}
	o.steps = append(o.steps, step)
	return o
}

// Run executes the chain. The input seeds the accumulated data store;
// every successful step merges its run data back into it.
func (o *Orchestrator) Run(input map[string]interface{}) *Result {
	result := &Result{StepsTotal: len(o.steps)}
	started := o.now()

	accumulated := make(map[string]interface{}, len(input))
	for k, v := range input {
		accumulated[k] = v
	}

	for _, step := range o.steps {
		stepStart := o.now()

		if step.Mode == Conditional && step.Condition != "" {
			if !truthy(accumulated[step.Condition]) {
				result.Steps = append(result.Steps, StepResult{
					Name:    step.Name,
					Success: true,
					Skipped: true,
					Reason:  fmt.Sprintf("Condition '%s' not met", step.Condition),
				})
				result.StepsCompleted++
				o.log.Debug("step skipped",
					zap.String("step", step.Name),
					zap.String("condition", step.Condition))
				continue
			}
		}

		stepInput := make(map[string]interface{}, len(accumulated))
		for k, v := range accumulated {
			stepInput[k] = v
		}
		for target, source := range step.InputMapping {
			if v, ok := accumulated[source]; ok {
				stepInput[target] = v
			}
		}

		wf, err := parser.Parse(step.Source)
		if err != nil {
			result.Steps = append(result.Steps, StepResult{
				Name:     step.Name,
				Duration: o.now().Sub(stepStart),
				Error:    err.Error(),
			})
			result.Error = fmt.Sprintf("Step '%s' failed: %v", step.Name, err)
			break
		}

		if errs := validator.New().Validate(wf); len(errs) > 0 {
			result.Steps = append(result.Steps, StepResult{
				Name:     step.Name,
				Duration: o.now().Sub(stepStart),
				Error:    fmt.Sprintf("Validation: %v", errs[0]),
			})
			result.Error = fmt.Sprintf("Step '%s' failed validation", step.Name)
			break
		}

		policy := step.Retry
		if policy.MaxRetries == 0 && policy.BaseDelay == 0 {
			policy = retry.APIRetry
		}

		eng := engine.New(
			engine.WithRetryPolicy(policy),
			engine.WithInput(stepInput),
			engine.WithSleep(o.sleep),
			engine.WithLogger(o.log.Named(step.Name)),
		)
		runResult := eng.Execute(wf)
		duration := o.now().Sub(stepStart)

		sr := StepResult{
			Name:     step.Name,
			Success:  runResult.Success,
			Duration: duration,
			RunID:    runResult.RunID,
		}
		if !runResult.Success {
			sr.Error = runError(runResult)
		}
		result.Steps = append(result.Steps, sr)

		if !runResult.Success {
			result.Error = fmt.Sprintf("Step '%s' failed: %s", step.Name, sr.Error)
			break
		}

		result.StepsCompleted++
		for k, v := range runResult.Data {
			accumulated[k] = v
		}
	}

	result.Duration = o.now().Sub(started)
	result.Data = accumulated
	result.Success = result.StepsCompleted == result.StepsTotal
	return result
}

func runError(res *engine.Result) string {
	if res.Error != "" {
		return res.Error
	}
	if res.Log != nil && len(res.Log.Errors) > 0 {
		return res.Log.Errors[0]
	}
	return "execution failed"
}

// truthy mirrors the engine's emptiness rules for gate conditions.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}
