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

// Package engine interprets workflow ASTs directly: it walks the effective
// execution order, dispatches each operation through a handler table, and
// wraps every dispatch in the retry/circuit-breaker layer. State lives in a
// per-run path-addressed data store; nothing is shared across runs. The run
// is synchronous and single-goroutine by design.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/retry"
)

// defaultMaxBranchDepth bounds conditional chains the validator was not
// asked to reject. Cyclic-looking branch graphs stop here instead of
// looping forever.
const defaultMaxBranchDepth = 100

// Context is the runtime state handed to operation handlers: the mutable
// path-addressed data store plus the resilience configuration for the run.
type Context struct {
	Data map[string]interface{}

	policy   retry.Policy
	breakers map[string]*retry.Breaker
	sleep    func(time.Duration)
	now      func() time.Time
}

// Get reads a value from the data store; nil when the path is unset.
func (c *Context) Get(path string) interface{} { return c.Data[path] }

// Set writes a value to the data store.
func (c *Context) Set(path string, value interface{}) { c.Data[path] = value }

// breaker returns the circuit breaker for an operation id, creating it
// lazily on first use.
func (c *Context) breaker(opID string) *retry.Breaker {
	b, ok := c.breakers[opID]
	if !ok {
		b = retry.NewBreaker(5, time.Minute)
		c.breakers[opID] = b
	}
	return b
}

// Result is the outcome of one workflow run.
type Result struct {
	Success bool
	RunID   string
	Data    map[string]interface{}
	Log     *PipelineLog
	Error   string
}

// Engine executes workflows. One Engine may run several workflows
// back-to-back; each run gets its own data store and circuit breakers.
type Engine struct {
	policy         retry.Policy
	initial        map[string]interface{}
	handlers       map[string]Handler
	maxBranchDepth int
	sleep          func(time.Duration)
	now            func() time.Time
	log            *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetryPolicy overrides the per-operation retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithInput seeds the data store before execution.
func WithInput(data map[string]interface{}) Option {
	return func(e *Engine) { e.initial = data }
}

// WithHandler registers or replaces the handler for one operation type.
func WithHandler(opType string, h Handler) Option {
	return func(e *Engine) { e.handlers[opType] = h }
}

// WithHandlers merges a handler table over the built-ins.
func WithHandlers(table map[string]Handler) Option {
	return func(e *Engine) {
		for opType, h := range table {
			e.handlers[opType] = h
		}
	}
}

// WithMaxBranchDepth overrides the conditional nesting guard.
func WithMaxBranchDepth(depth int) Option {
	return func(e *Engine) { e.maxBranchDepth = depth }
}

// WithLogger attaches a zap logger for run-level diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithSleep replaces the sleep function used by retry backoff and the Wait
// handler. Tests use this to run instantly.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// WithClock replaces the time source used for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine with the built-in handler table.
func New(opts ...Option) *Engine {
	e := &Engine{
		policy:         retry.APIRetry,
		handlers:       Builtins(),
		maxBranchDepth: defaultMaxBranchDepth,
		sleep:          time.Sleep,
		now:            time.Now,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the workflow to completion on the calling goroutine.
//
// Steps naming an undeclared operation are logged skipped and the run
// continues. A handler failure after exhausting retries marks that
// operation failed and the run keeps going; a panic escaping a handler
// aborts the remainder of the run.
func (e *Engine) Execute(wf *ast.Workflow) (result *Result) {
	runID := uuid.NewString()
	logger := newExecutionLogger(wf.Name, e.now)

	ctx := &Context{
		Data:     make(map[string]interface{}, len(e.initial)),
		policy:   e.policy,
		breakers: make(map[string]*retry.Breaker),
		sleep:    e.sleep,
		now:      e.now,
	}
	for path, value := range e.initial {
		ctx.Data[path] = value
	}

	opMap := make(map[string]*ast.Operation, len(wf.Operations))
	for i := range wf.Operations {
		opMap[wf.Operations[i].ID] = &wf.Operations[i]
	}

	e.log.Debug("workflow run started",
		zap.String("run_id", runID),
		zap.String("workflow", wf.Name),
		zap.Int("operations", len(wf.Operations)))

	defer func() {
		if r := recover(); r != nil {
			logger.finish("failed")
			e.log.Error("workflow run aborted",
				zap.String("run_id", runID),
				zap.Any("panic", r))
			result = &Result{
				Success: false,
				RunID:   runID,
				Data:    ctx.Data,
				Log:     logger.pipeline,
				Error:   fmt.Sprintf("%v", r),
			}
		}
	}()

	for _, opID := range wf.EffectiveOrder() {
		op, ok := opMap[opID]
		if !ok {
			logger.skip(opID, "unknown", "Not defined")
			e.log.Warn("skipping undeclared operation",
				zap.String("run_id", runID),
				zap.String("operation", opID))
			continue
		}
		e.executeOperation(op, ctx, logger, opMap)
	}

	pipeline := logger.finish("")
	e.log.Debug("workflow run finished",
		zap.String("run_id", runID),
		zap.String("status", pipeline.Status),
		zap.Int("failed", pipeline.ErrorCount()))

	return &Result{
		Success: pipeline.ErrorCount() == 0,
		RunID:   runID,
		Data:    ctx.Data,
		Log:     pipeline,
	}
}

type branchFrame struct {
	op    *ast.Operation
	depth int
}

// executeOperation runs one operation. Conditional branching is handled with
// an explicit frame stack rather than recursion so a depth guard can cut off
// adversarial branch graphs.
func (e *Engine) executeOperation(root *ast.Operation, ctx *Context, logger *executionLogger, opMap map[string]*ast.Operation) {
	stack := []branchFrame{{op: root}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		op := frame.op

		if op.OpType == ast.OpConditional && op.If != nil {
			if frame.depth >= e.maxBranchDepth {
				logger.start(op.ID, op.OpType)
				logger.fail(op.ID, fmt.Sprintf("branch depth limit %d exceeded", e.maxBranchDepth))
				continue
			}

			actual := ctx.Get(op.If.Path)
			expected := ResolveValue(op.If.Value)
			taken := EvalCondition(actual, op.If.Operator, expected)

			logger.start(op.ID, op.OpType)
			branch := "else"
			targets := op.If.IfFalse
			if taken {
				branch = "then"
				targets = op.If.IfTrue
			}
			logger.complete(op.ID, map[string]interface{}{"branch": branch}, "")
			e.log.Debug("conditional evaluated",
				zap.String("operation", op.ID),
				zap.String("branch", branch))

			// Push in reverse so targets execute in declared order.
			for i := len(targets) - 1; i >= 0; i-- {
				if target, ok := opMap[targets[i]]; ok {
					stack = append(stack, branchFrame{op: target, depth: frame.depth + 1})
				}
			}
			continue
		}

		e.dispatch(op, ctx, logger)
	}
}

// dispatch runs a non-branching operation through the resilience wrapper and
// stores its output.
func (e *Engine) dispatch(op *ast.Operation, ctx *Context, logger *executionLogger) {
	handler, ok := e.handlers[op.OpType]
	if !ok {
		handler = handleNoop
	}

	logger.start(op.ID, op.OpType)

	res := retry.Execute(func() (interface{}, error) {
		return handler(op, ctx)
	}, ctx.policy, ctx.breaker(op.ID), ctx.sleep)

	if res.Success {
		if op.OutputPath != "" && res.Value != nil {
			ctx.Set(op.OutputPath, res.Value)
		}
		logger.complete(op.ID, res.Value, op.OutputPath)
		return
	}

	logger.fail(op.ID, res.Err.Error())
	e.log.Warn("operation failed",
		zap.String("operation", op.ID),
		zap.String("type", op.OpType),
		zap.Int("attempts", res.Attempts),
		zap.Error(res.Err))
}
