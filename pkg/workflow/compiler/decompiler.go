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

package compiler

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Decompiler reconstructs DSL source from wire messages in either layout.
// The layout is detected from the first message: a top-level "type" field
// means per-operation, a top-level "operationUpdate" key means bundled.
type Decompiler struct{}

type decompiledOp struct {
	id     string
	opType string
	config *orderedObject
}

// Decompile converts wire text back into a2e-lang DSL source.
func (d *Decompiler) Decompile(wire string) (string, error) {
	var msgs []*orderedObject
	for _, line := range strings.Split(strings.TrimSpace(wire), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := decodeOrderedLine(line)
		if err != nil {
			return "", fmt.Errorf("invalid wire message: %w", err)
		}
		obj, ok := v.(*orderedObject)
		if !ok {
			return "", fmt.Errorf("wire message is not a JSON object")
		}
		msgs = append(msgs, obj)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("empty wire input")
	}

	if typ, ok := msgs[0].get("type"); ok && typ == "operationUpdate" {
		return d.decompilePerOperation(msgs)
	}
	if _, ok := msgs[0].get("operationUpdate"); ok {
		return d.decompileBundled(msgs)
	}
	return "", fmt.Errorf("unrecognized wire format: expected a 'type' field or a top-level 'operationUpdate' key")
}

func (d *Decompiler) decompilePerOperation(msgs []*orderedObject) (string, error) {
	var ops []decompiledOp
	name := "workflow"
	var order []string

	for _, msg := range msgs {
		typ, _ := msg.get("type")
		switch typ {
		case "operationUpdate":
			id, _ := msg.get("operationId")
			idStr, ok := id.(string)
			if !ok {
				return "", fmt.Errorf("operationUpdate message missing operationId")
			}
			op, err := extractOperation(msg)
			if err != nil {
				return "", err
			}
			op.id = idStr
			ops = append(ops, op)
		case "beginExecution":
			if id, ok := msg.get("executionId"); ok {
				if s, isStr := id.(string); isStr {
					name = s
				}
			}
			if raw, ok := msg.get("operationOrder"); ok {
				if arr, isArr := raw.([]interface{}); isArr {
					for _, item := range arr {
						if s, isStr := item.(string); isStr {
							order = append(order, s)
						}
					}
				}
			}
		}
	}
	return renderDSL(name, ops, order), nil
}

func (d *Decompiler) decompileBundled(msgs []*orderedObject) (string, error) {
	var ops []decompiledOp
	name := "workflow"
	var order []string

	for _, msg := range msgs {
		if raw, ok := msg.get("operationUpdate"); ok {
			update, isObj := raw.(*orderedObject)
			if !isObj {
				return "", fmt.Errorf("operationUpdate is not an object")
			}
			if id, found := update.get("workflowId"); found {
				if s, isStr := id.(string); isStr {
					name = s
				}
			}
			rawOps, _ := update.get("operations")
			arr, _ := rawOps.([]interface{})
			for _, entry := range arr {
				entryObj, isObj := entry.(*orderedObject)
				if !isObj {
					return "", fmt.Errorf("operation entry is not an object")
				}
				id, _ := entryObj.get("id")
				idStr, isStr := id.(string)
				if !isStr {
					return "", fmt.Errorf("operation entry missing id")
				}
				op, err := extractOperation(entryObj)
				if err != nil {
					return "", err
				}
				op.id = idStr
				ops = append(ops, op)
			}
		} else if raw, ok := msg.get("beginExecution"); ok {
			begin, isObj := raw.(*orderedObject)
			if !isObj {
				continue
			}
			if id, found := begin.get("workflowId"); found {
				if s, isStr := id.(string); isStr {
					name = s
				}
			}
			// The bundled layout only names the root; the order is the
			// operation declaration order.
			if root, found := begin.get("root"); found {
				if s, isStr := root.(string); isStr && s != "" && len(order) == 0 {
					for _, op := range ops {
						order = append(order, op.id)
					}
				}
			}
		}
	}
	return renderDSL(name, ops, order), nil
}

// extractOperation pulls {OpType: config} out of a message's "operation" field.
func extractOperation(msg *orderedObject) (decompiledOp, error) {
	raw, ok := msg.get("operation")
	if !ok {
		return decompiledOp{}, fmt.Errorf("message missing 'operation' field")
	}
	wrapper, isObj := raw.(*orderedObject)
	if !isObj || wrapper.len() == 0 {
		return decompiledOp{}, fmt.Errorf("'operation' field is not a {OpType: config} object")
	}
	opType := wrapper.keys[0]
	config, isObj := wrapper.values[opType].(*orderedObject)
	if !isObj {
		return decompiledOp{}, fmt.Errorf("config for operation type '%s' is not an object", opType)
	}
	return decompiledOp{opType: opType, config: config}, nil
}

// structuralKeys are config fields reconstructed as clauses, not properties.
var structuralKeys = map[string]bool{
	"inputPath":  true,
	"outputPath": true,
	"conditions": true,
	"condition":  true,
	"ifTrue":     true,
	"ifFalse":    true,
}

func renderDSL(name string, ops []decompiledOp, order []string) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("workflow %q", name))
	lines = append(lines, "")

	for _, op := range ops {
		lines = append(lines, fmt.Sprintf("%s = %s {", op.id, op.opType))
		lines = append(lines, renderConfig(op.config, 2)...)
		lines = append(lines, "}")
		lines = append(lines, "")
	}

	if len(order) > 1 {
		lines = append(lines, "run: "+strings.Join(order, " -> "))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func renderConfig(config *orderedObject, indent int) []string {
	var lines []string
	prefix := strings.Repeat(" ", indent)

	if v, ok := config.get("inputPath"); ok {
		if s, isStr := v.(string); isStr && s != "" {
			lines = append(lines, prefix+"from "+s)
		}
	}

	for _, key := range config.keys {
		if structuralKeys[key] {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", prefix, renderKey(key), renderValue(config.values[key], indent)))
	}

	if raw, ok := config.get("conditions"); ok {
		if arr, isArr := raw.([]interface{}); isArr && len(arr) > 0 {
			var parts []string
			for _, item := range arr {
				cond, isObj := item.(*orderedObject)
				if !isObj {
					continue
				}
				field, _ := cond.get("field")
				operator, _ := cond.get("operator")
				part := fmt.Sprintf("%v %v", field, operator)
				if val, hasVal := cond.get("value"); hasVal {
					part += " " + renderValue(val, indent)
				}
				parts = append(parts, part)
			}
			lines = append(lines, prefix+"where "+strings.Join(parts, ", "))
		}
	}

	if raw, ok := config.get("condition"); ok {
		if cond, isObj := raw.(*orderedObject); isObj {
			if ifTrue, hasTrue := config.get("ifTrue"); hasTrue {
				path, _ := cond.get("path")
				operator, _ := cond.get("operator")
				line := fmt.Sprintf("%sif %v %v", prefix, path, operator)
				if val, hasVal := cond.get("value"); hasVal && val != nil {
					line += " " + renderValue(val, indent)
				}
				line += " then " + renderTargets(ifTrue)
				lines = append(lines, line)

				if ifFalse, hasFalse := config.get("ifFalse"); hasFalse && ifFalse != nil {
					lines = append(lines, prefix+"else "+renderTargets(ifFalse))
				}
			}
		}
	}

	if v, ok := config.get("outputPath"); ok {
		if s, isStr := v.(string); isStr && s != "" {
			lines = append(lines, prefix+"-> "+s)
		}
	}

	return lines
}

// renderTargets handles both the bare-string and array forms of ifTrue/ifFalse.
func renderTargets(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%v", v)
}

// renderValue renders a decoded wire value as DSL syntax. Strings beginning
// with '/' are paths and stay bare; credentialRef objects render as
// credential("id"); other objects render inline when the inline form fits
// in 80 characters, multi-line otherwise.
func renderValue(v interface{}, indent int) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	case string:
		if strings.HasPrefix(t, "/") {
			return t
		}
		return fmt.Sprintf("%q", t)
	case *orderedObject:
		if raw, ok := t.get("credentialRef"); ok {
			if ref, isObj := raw.(*orderedObject); isObj {
				if id, found := ref.get("id"); found {
					return fmt.Sprintf("credential(%q)", id)
				}
			}
		}
		return renderObject(t, indent)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, renderValue(item, indent))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}

// renderKey quotes property keys that are not bare identifiers, so the
// rendered source survives reparsing (e.g. header names with hyphens).
func renderKey(key string) string {
	if key == "" {
		return `""`
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		isLetter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !(i > 0 && isDigit) {
			return fmt.Sprintf("%q", key)
		}
	}
	return key
}

func renderObject(obj *orderedObject, indent int) string {
	if obj.len() == 0 {
		return "{}"
	}
	parts := make([]string, 0, obj.len())
	for _, key := range obj.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", renderKey(key), renderValue(obj.values[key], indent)))
	}
	inline := "{ " + strings.Join(parts, ", ") + " }"
	if len(inline) <= 80 {
		return inline
	}
	prefix := strings.Repeat(" ", indent+2)
	lines := []string{"{"}
	for _, part := range parts {
		lines = append(lines, prefix+part)
	}
	lines = append(lines, strings.Repeat(" ", indent)+"}")
	return strings.Join(lines, "\n")
}
