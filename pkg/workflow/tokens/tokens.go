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

// Package tokens compares the token cost of workflow source against its
// compiled wire output. Counts use a ~4 characters per token heuristic,
// which tracks common LLM tokenizers closely enough for budgeting.
package tokens

import (
	"fmt"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/compiler"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
)

// Budget is a token cost comparison between DSL source and wire output.
type Budget struct {
	DSLChars    int
	DSLTokens   int
	JSONLChars  int
	JSONLTokens int
}

// SavingsTokens is the token count the DSL saves over the wire form.
func (b Budget) SavingsTokens() int { return b.JSONLTokens - b.DSLTokens }

// SavingsPct is the savings as a percentage of the wire cost.
func (b Budget) SavingsPct() float64 {
	if b.JSONLTokens == 0 {
		return 0
	}
	return float64(b.SavingsTokens()) / float64(b.JSONLTokens) * 100
}

// CompressionRatio is the wire cost divided by the DSL cost.
func (b Budget) CompressionRatio() float64 {
	if b.DSLTokens == 0 {
		return 0
	}
	return float64(b.JSONLTokens) / float64(b.DSLTokens)
}

// Summary renders a fixed-width report suitable for terminal output.
func (b Budget) Summary() string {
	var sb strings.Builder
	sb.WriteString("Token Budget Analysis\n")
	sb.WriteString(strings.Repeat("═", 40) + "\n")
	fmt.Fprintf(&sb, "  DSL source:    %6d tokens (%6d chars)\n", b.DSLTokens, b.DSLChars)
	fmt.Fprintf(&sb, "  JSONL output:  %6d tokens (%6d chars)\n", b.JSONLTokens, b.JSONLChars)
	sb.WriteString(strings.Repeat("─", 40) + "\n")
	fmt.Fprintf(&sb, "  Savings:       %6d tokens (%.1f%%)\n", b.SavingsTokens(), b.SavingsPct())
	fmt.Fprintf(&sb, "  Compression:   %.1fx", b.CompressionRatio())
	return sb.String()
}

// EstimateTokens approximates the token count of text at ~4 chars/token.
// Never returns less than 1 for non-empty input.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

// Calculate parses the source, compiles it to the per-operation wire layout
// and returns the cost comparison.
func Calculate(source string) (Budget, error) {
	wf, err := parser.Parse(source)
	if err != nil {
		return Budget{}, err
	}

	jsonl, err := (&compiler.SpecCompiler{}).Compile(wf)
	if err != nil {
		return Budget{}, err
	}

	return Budget{
		DSLChars:    len(source),
		DSLTokens:   EstimateTokens(source),
		JSONLChars:  len(jsonl),
		JSONLTokens: EstimateTokens(jsonl),
	}, nil
}
