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

package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Operation log statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// OperationLog is one entry in the structured per-run execution log.
type OperationLog struct {
	OperationID    string                 `json:"operation_id"`
	OperationType  string                 `json:"operation_type"`
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	DurationMS     float64                `json:"duration_ms,omitempty"`
	InputPath      string                 `json:"input_path,omitempty"`
	OutputPath     string                 `json:"output_path,omitempty"`
	OutputSnapshot interface{}            `json:"output_snapshot,omitempty"`
	Error          string                 `json:"error,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// PipelineLog aggregates the operation logs and errors of one run.
type PipelineLog struct {
	WorkflowName string          `json:"workflow_name"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at,omitempty"`
	Status       string          `json:"status"`
	Operations   []*OperationLog `json:"operations"`
	Errors       []string        `json:"errors,omitempty"`
}

// TotalDuration is the wall-clock span of the run; zero while still running.
func (p *PipelineLog) TotalDuration() time.Duration {
	if p.FinishedAt.IsZero() {
		return 0
	}
	return p.FinishedAt.Sub(p.StartedAt)
}

// ErrorCount counts operations that ended failed.
func (p *PipelineLog) ErrorCount() int {
	n := 0
	for _, op := range p.Operations {
		if op.Status == StatusFailed {
			n++
		}
	}
	return n
}

// SuccessCount counts operations that ended completed.
func (p *PipelineLog) SuccessCount() int {
	n := 0
	for _, op := range p.Operations {
		if op.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// ToJSON serializes the pipeline log.
func (p *PipelineLog) ToJSON(pretty bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(p, "", "  ")
	} else {
		b, err = json.Marshal(p)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Summary renders a human-readable run report.
func (p *PipelineLog) Summary() string {
	duration := "running"
	if !p.FinishedAt.IsZero() {
		duration = fmt.Sprintf("%.1fms", float64(p.TotalDuration().Microseconds())/1000)
	}
	lines := []string{
		fmt.Sprintf("Pipeline: %s [%s]", p.WorkflowName, p.Status),
		fmt.Sprintf("Duration: %s", duration),
		fmt.Sprintf("Operations: %d/%d succeeded", p.SuccessCount(), len(p.Operations)),
		strings.Repeat("-", 50),
	}
	for _, op := range p.Operations {
		dur := "-"
		if op.DurationMS > 0 {
			dur = fmt.Sprintf("%.1fms", op.DurationMS)
		}
		marker := "ok"
		switch op.Status {
		case StatusFailed:
			marker = "fail"
		case StatusSkipped:
			marker = "skip"
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s (%s) [%s]", marker, op.OperationID, op.OperationType, dur))
		if op.Error != "" {
			lines = append(lines, fmt.Sprintf("       %s", op.Error))
		}
	}
	if len(p.Errors) > 0 {
		lines = append(lines, strings.Repeat("-", 50))
		for _, err := range p.Errors {
			lines = append(lines, "  ! "+err)
		}
	}
	return strings.Join(lines, "\n")
}

// executionLogger tracks operation executions during one run.
type executionLogger struct {
	pipeline *PipelineLog
	starts   map[string]time.Time
	now      func() time.Time
}

func newExecutionLogger(workflowName string, now func() time.Time) *executionLogger {
	if now == nil {
		now = time.Now
	}
	return &executionLogger{
		pipeline: &PipelineLog{
			WorkflowName: workflowName,
			StartedAt:    now(),
			Status:       "running",
		},
		starts: make(map[string]time.Time),
		now:    now,
	}
}

func (l *executionLogger) start(opID, opType string) {
	l.starts[opID] = l.now()
	l.pipeline.Operations = append(l.pipeline.Operations, &OperationLog{
		OperationID:   opID,
		OperationType: opType,
		Status:        StatusStarted,
		Timestamp:     l.now(),
	})
}

func (l *executionLogger) complete(opID string, output interface{}, outputPath string) {
	log := l.find(opID)
	if log == nil {
		return
	}
	log.Status = StatusCompleted
	if start, ok := l.starts[opID]; ok {
		log.DurationMS = float64(l.now().Sub(start).Microseconds()) / 1000
	}
	if output != nil {
		log.OutputSnapshot = output
	}
	if outputPath != "" {
		log.OutputPath = outputPath
	}
}

func (l *executionLogger) fail(opID, errMsg string) {
	log := l.find(opID)
	if log != nil {
		log.Status = StatusFailed
		log.Error = errMsg
		if start, ok := l.starts[opID]; ok {
			log.DurationMS = float64(l.now().Sub(start).Microseconds()) / 1000
		}
	}
	l.pipeline.Errors = append(l.pipeline.Errors, fmt.Sprintf("%s: %s", opID, errMsg))
}

func (l *executionLogger) skip(opID, opType, reason string) {
	entry := &OperationLog{
		OperationID:   opID,
		OperationType: opType,
		Status:        StatusSkipped,
		Timestamp:     l.now(),
	}
	if reason != "" {
		entry.Metadata = map[string]interface{}{"reason": reason}
	}
	l.pipeline.Operations = append(l.pipeline.Operations, entry)
}

// finish finalizes the log. An empty status means derive it from the errors.
func (l *executionLogger) finish(status string) *PipelineLog {
	if status == "" {
		status = "completed"
		if len(l.pipeline.Errors) > 0 {
			status = "failed"
		}
	}
	l.pipeline.FinishedAt = l.now()
	l.pipeline.Status = status
	return l.pipeline
}

// find returns the most recent entry for an operation id. Branch targets may
// run more than once, so search runs backwards.
func (l *executionLogger) find(opID string) *OperationLog {
	for i := len(l.pipeline.Operations) - 1; i >= 0; i-- {
		if l.pipeline.Operations[i].OperationID == opID {
			return l.pipeline.Operations[i]
		}
	}
	return nil
}
