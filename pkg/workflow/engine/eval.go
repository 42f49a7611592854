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
	"fmt"
	"reflect"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

// EvalCondition evaluates an operator against the actual (data store) value
// and the expected (literal) value. Shared by filter conditions and branch
// conditions so they can never disagree.
//
// A nil actual makes every operator false except empty, which is true.
// Type-mismatched comparisons evaluate false rather than failing.
func EvalCondition(actual interface{}, operator string, expected interface{}) bool {
	if actual == nil {
		return operator == "empty"
	}

	switch operator {
	case "==":
		return looseEqual(actual, expected)
	case "!=":
		return !looseEqual(actual, expected)
	case ">", "<", ">=", "<=":
		return compareOrdered(actual, operator, expected)
	case "contains":
		return contains(actual, expected)
	case "in":
		return contains(expected, actual)
	case "startsWith":
		return strings.HasPrefix(stringify(actual), stringify(expected))
	case "endsWith":
		return strings.HasSuffix(stringify(actual), stringify(expected))
	case "exists":
		return true
	case "empty":
		return isFalsy(actual)
	}
	return false
}

// ResolveValue converts an AST literal into a plain Go value comparable
// against data-store contents. Paths resolve to their raw string form.
func ResolveValue(v ast.Value) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case ast.String:
		return string(t)
	case ast.Int:
		return int64(t)
	case ast.Float:
		return float64(t)
	case ast.Bool:
		return bool(t)
	case ast.Null:
		return nil
	case ast.PathRef:
		return t.Raw
	case ast.CredentialRef:
		return t.ID
	case ast.Object:
		m := make(map[string]interface{}, len(t.Properties))
		for _, p := range t.Properties {
			m[p.Key] = ResolveValue(p.Value)
		}
		return m
	case ast.Array:
		items := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			items[i] = ResolveValue(item)
		}
		return items
	}
	return nil
}

// looseEqual compares with numeric coercion: an int64 literal equals the
// float64 the JSON decoder produced for the same number.
func looseEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func compareOrdered(actual interface{}, operator string, expected interface{}) bool {
	if af, aok := toFloat(actual); aok {
		bf, bok := toFloat(expected)
		if !bok {
			return false
		}
		switch operator {
		case ">":
			return af > bf
		case "<":
			return af < bf
		case ">=":
			return af >= bf
		case "<=":
			return af <= bf
		}
		return false
	}

	as, aok := actual.(string)
	bs, bok := expected.(string)
	if !aok || !bok {
		return false
	}
	switch operator {
	case ">":
		return as > bs
	case "<":
		return as < bs
	case ">=":
		return as >= bs
	case "<=":
		return as <= bs
	}
	return false
}

// contains implements membership: needle-in-haystack for strings, slices,
// and map keys.
func contains(haystack, needle interface{}) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		if !ok {
			return false
		}
		return strings.Contains(h, n)
	case []interface{}:
		for _, item := range h {
			if looseEqual(item, needle) {
				return true
			}
		}
		return false
	case map[string]interface{}:
		n, ok := needle.(string)
		if !ok {
			return false
		}
		_, found := h[n]
		return found
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func isFalsy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	if f, ok := toFloat(v); ok {
		return f == 0
	}
	return false
}
