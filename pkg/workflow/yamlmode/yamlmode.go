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

// Package yamlmode accepts a simplified YAML workflow format built from six
// step primitives (fetch, filter, transform, branch, merge, store) and
// compiles it to the same bundled wire layout as the DSL compiler. The
// format is deliberately forgiving: key synonyms are normalized before
// validation so common naming variants all parse.
package yamlmode

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/compiler"
)

// ValidationError describes a structural problem in a YAML workflow.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// stepTypes maps YAML primitives to operation types.
var stepTypes = map[string]string{
	"fetch":     ast.OpApiCall,
	"filter":    ast.OpFilterData,
	"transform": ast.OpTransformData,
	"branch":    ast.OpConditional,
	"merge":     ast.OpMergeData,
	"store":     ast.OpStoreData,
}

// keySynonyms normalizes the naming variants generators produce for the
// same concept. Applied in order; a synonym never overwrites a key that is
// already present.
var keySynonyms = []struct{ from, to string }{
	{"using", "transform"},
	{"operation", "transform"},
	{"sort_by", "transform"},
	{"action", "transform"},
	{"script", "transform"},
	{"run", "transform"},
	{"apply", "transform"},
	{"inputs", "sources"},
	{"from", "input"},
	{"input_path", "input"},
	{"source", "input"},
	{"output_path", "output"},
	{"to", "output"},
	{"target", "output"},
	{"name", "key"},
	{"store_key", "key"},
	{"filter", "where"},
	{"conditions", "where"},
	{"if", "condition"},
	{"when", "condition"},
	{"else", "otherwise"},
}

// requiredKeys per step type, beyond id and type.
var requiredKeys = map[string][]string{
	"fetch":     {"method", "url"},
	"filter":    {"input", "where"},
	"transform": {"input", "transform"},
	"branch":    {"condition", "then"},
	"merge":     {"sources"},
	"store":     {"input", "key"},
}

// stepHeader is the part of every step checked by the struct validator.
type stepHeader struct {
	ID   string `validate:"required"`
	Type string `validate:"required"`
}

var structValidator = validator.New()

// Document is a parsed and normalized YAML workflow.
type Document struct {
	Name  string
	Steps []map[string]interface{}
}

// Parse decodes and validates YAML workflow source. Step keys come back
// already normalized to their canonical names.
func Parse(source string) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(source), &raw); err != nil {
		return nil, errf("Invalid YAML: %v", err)
	}
	if raw == nil {
		return nil, errf("Root must be a YAML mapping")
	}

	name, ok := raw["workflow"]
	if !ok {
		return nil, errf("Missing 'workflow' key (workflow name)")
	}

	rawSteps, ok := raw["steps"].([]interface{})
	if !ok {
		return nil, errf("Missing 'steps' list")
	}
	if len(rawSteps) == 0 {
		return nil, errf("Workflow must have at least one step")
	}

	doc := &Document{Name: fmt.Sprintf("%v", name)}
	seen := make(map[string]bool)
	for i, rawStep := range rawSteps {
		step, isMap := rawStep.(map[string]interface{})
		if !isMap {
			return nil, errf("Step %d: must be a mapping", i)
		}
		normalizeStep(step)
		if err := validateStep(step, i, seen); err != nil {
			return nil, err
		}
		doc.Steps = append(doc.Steps, step)
	}
	return doc, nil
}

// normalizeStep rewrites synonym keys and the structural patterns
// generators commonly produce (numbered merge inputs, transform objects).
func normalizeStep(step map[string]interface{}) {
	for _, syn := range keySynonyms {
		if v, ok := step[syn.from]; ok {
			if _, exists := step[syn.to]; !exists {
				step[syn.to] = v
				delete(step, syn.from)
			}
		}
	}

	stepType, _ := step["type"].(string)

	// merge: input1 + input2 + ... collapse into sources
	if stepType == "merge" {
		if _, hasSources := step["sources"]; !hasSources {
			var numbered []string
			for k := range step {
				if strings.HasPrefix(k, "input") && k != "input" {
					numbered = append(numbered, k)
				}
			}
			if len(numbered) > 0 {
				sort.Strings(numbered)
				sources := make([]interface{}, 0, len(numbered))
				for _, k := range numbered {
					sources = append(sources, step[k])
					delete(step, k)
				}
				step["sources"] = sources
			}
		}
		if _, hasSources := step["sources"]; !hasSources {
			if list, isList := step["input"].([]interface{}); isList {
				step["sources"] = list
				delete(step, "input")
			}
		}
	}

	// transform: {type: sort, field: price} flattens to transform + config
	if stepType == "transform" {
		if obj, isMap := step["transform"].(map[string]interface{}); isMap {
			if kind, hasType := obj["type"]; hasType {
				config := make(map[string]interface{})
				for k, v := range obj {
					if k != "type" {
						config[k] = v
					}
				}
				step["transform"] = kind
				if len(config) > 0 {
					if _, hasConfig := step["config"]; !hasConfig {
						step["config"] = config
					}
				}
			}
		}
	}
}

func validateStep(step map[string]interface{}, index int, seen map[string]bool) error {
	header := stepHeader{}
	header.ID, _ = step["id"].(string)
	header.Type, _ = step["type"].(string)

	if err := structValidator.Struct(header); err != nil {
		if _, hasID := step["id"]; !hasID {
			return errf("Step %d: missing 'id'", index)
		}
		return errf("Step %d (%v): missing 'type'", index, step["id"])
	}

	if seen[header.ID] {
		return errf("Step %d: duplicate id '%s'", index, header.ID)
	}
	seen[header.ID] = true

	if _, known := stepTypes[header.Type]; !known {
		names := make([]string, 0, len(stepTypes))
		for name := range stepTypes {
			names = append(names, name)
		}
		sort.Strings(names)
		return errf("Step %d (%s): unknown type '%s'. Valid: %s",
			index, header.ID, header.Type, strings.Join(names, ", "))
	}

	for _, key := range requiredKeys[header.Type] {
		if _, present := step[key]; !present {
			return errf("Step %d (%s): type '%s' requires '%s'",
				index, header.ID, header.Type, key)
		}
	}
	return nil
}

// whereRe splits "field op value" condition strings. Two-character
// operators come first so ">=" is not read as ">" with a leftover "=".
var whereRe = regexp.MustCompile(`^(\w+)\s*(>=|<=|==|!=|>|<)\s*(.+)$`)

// parseWhere accepts a condition string or a list of them.
func parseWhere(where interface{}) ([]ast.Condition, error) {
	items, isList := where.([]interface{})
	if !isList {
		items = []interface{}{where}
	}

	conditions := make([]ast.Condition, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(fmt.Sprintf("%v", item))
		m := whereRe.FindStringSubmatch(text)
		if m == nil {
			return nil, errf("Invalid where clause: '%s'", text)
		}
		conditions = append(conditions, ast.Condition{
			Field:    m[1],
			Operator: m[2],
			Value:    coerceValue(strings.TrimSpace(m[3])),
		})
	}
	return conditions, nil
}

// parseCondition reads a branch condition like "count > 0" or
// "/data/temp > 30"; a bare value tests equality with true.
func parseCondition(cond interface{}) (path, operator string, value ast.Value) {
	text := strings.TrimSpace(fmt.Sprintf("%v", cond))

	if m := whereRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2], coerceValue(strings.TrimSpace(m[3]))
	}
	if parts := strings.Fields(text); len(parts) >= 3 {
		return parts[0], parts[1], coerceValue(strings.Join(parts[2:], " "))
	}
	return text, "==", ast.Bool(true)
}

// coerceValue turns a condition string fragment into a typed value.
func coerceValue(text string) ast.Value {
	if len(text) >= 2 {
		if (text[0] == '"' && text[len(text)-1] == '"') ||
			(text[0] == '\'' && text[len(text)-1] == '\'') {
			return ast.String(text[1 : len(text)-1])
		}
	}
	switch strings.ToLower(text) {
	case "true":
		return ast.Bool(true)
	case "false":
		return ast.Bool(false)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ast.Int(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return ast.Float(f)
	}
	return ast.String(text)
}

// ToWorkflow lowers the document to a workflow AST. The execution order is
// the step declaration order.
func (d *Document) ToWorkflow() (*ast.Workflow, error) {
	wf := &ast.Workflow{Name: d.Name}

	for _, step := range d.Steps {
		op, err := lowerStep(step)
		if err != nil {
			return nil, err
		}
		wf.Operations = append(wf.Operations, *op)
		wf.ExecutionOrder = append(wf.ExecutionOrder, op.ID)
	}
	return wf, nil
}

func lowerStep(step map[string]interface{}) (*ast.Operation, error) {
	stepType := step["type"].(string)
	op := &ast.Operation{
		ID:     step["id"].(string),
		OpType: stepTypes[stepType],
	}

	switch stepType {
	case "fetch":
		addProp(op, "method", yamlValue(step["method"]))
		addProp(op, "url", yamlValue(step["url"]))
		if headers, ok := step["headers"].(map[string]interface{}); ok {
			addProp(op, "headers", headerValue(headers))
		}
		if body, ok := step["body"]; ok {
			addProp(op, "body", yamlValue(body))
		}
		op.OutputPath, _ = step["output"].(string)

	case "filter":
		op.InputPath, _ = step["input"].(string)
		conditions, err := parseWhere(step["where"])
		if err != nil {
			return nil, err
		}
		op.Conditions = conditions
		op.OutputPath, _ = step["output"].(string)

	case "transform":
		op.InputPath, _ = step["input"].(string)
		addProp(op, "transform", yamlValue(step["transform"]))
		extra := make(map[string]interface{})
		if config, ok := step["config"].(map[string]interface{}); ok {
			for k, v := range config {
				extra[k] = v
			}
		}
		for k, v := range step {
			switch k {
			case "id", "type", "input", "transform", "output", "config":
			default:
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			addProp(op, "config", yamlValue(extra))
		}
		op.OutputPath, _ = step["output"].(string)

	case "branch":
		path, operator, value := parseCondition(step["condition"])
		op.If = &ast.IfClause{
			Path:     path,
			Operator: operator,
			Value:    value,
			IfTrue:   targetList(step["then"]),
			IfFalse:  targetList(step["otherwise"]),
		}

	case "merge":
		addProp(op, "sources", yamlValue(step["sources"]))
		strategy, ok := step["strategy"].(string)
		if !ok {
			strategy = "concat"
		}
		addProp(op, "strategy", ast.String(strategy))
		op.OutputPath, _ = step["output"].(string)

	case "store":
		op.InputPath, _ = step["input"].(string)
		storage, ok := step["storage"].(string)
		if !ok {
			storage = "localStorage"
		}
		addProp(op, "storage", ast.String(storage))
		addProp(op, "key", yamlValue(step["key"]))
	}

	return op, nil
}

func addProp(op *ast.Operation, key string, v ast.Value) {
	op.Properties = append(op.Properties, ast.Property{Key: key, Value: v})
}

// targetList accepts a branch target as a string or list of strings.
func targetList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		targets := make([]string, 0, len(t))
		for _, item := range t {
			targets = append(targets, fmt.Sprintf("%v", item))
		}
		return targets
	default:
		return nil
	}
}

// headerValue compiles an HTTP header map, expanding "credential:<id>"
// values into credential references.
func headerValue(headers map[string]interface{}) ast.Value {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := ast.Object{}
	for _, k := range keys {
		text := fmt.Sprintf("%v", headers[k])
		var v ast.Value
		if strings.HasPrefix(text, "credential:") {
			v = ast.CredentialRef{ID: strings.TrimPrefix(text, "credential:")}
		} else {
			v = yamlValue(headers[k])
		}
		obj.Properties = append(obj.Properties, ast.Property{Key: k, Value: v})
	}
	return obj
}

// yamlValue lifts a decoded YAML value into the AST value space. Strings
// beginning with "/" become data paths.
func yamlValue(v interface{}) ast.Value {
	switch t := v.(type) {
	case nil:
		return ast.Null{}
	case bool:
		return ast.Bool(t)
	case int:
		return ast.Int(int64(t))
	case int64:
		return ast.Int(t)
	case float64:
		return ast.Float(t)
	case string:
		if strings.HasPrefix(t, "/") {
			return ast.PathRef{Raw: t}
		}
		return ast.String(t)
	case []interface{}:
		arr := ast.Array{}
		for _, item := range t {
			arr.Items = append(arr.Items, yamlValue(item))
		}
		return arr
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := ast.Object{}
		for _, k := range keys {
			obj.Properties = append(obj.Properties, ast.Property{Key: k, Value: yamlValue(t[k])})
		}
		return obj
	default:
		return ast.String(fmt.Sprintf("%v", t))
	}
}

// Compile parses YAML source and emits the compact bundled wire form.
func Compile(source string) (string, error) {
	wf, err := toWorkflow(source)
	if err != nil {
		return "", err
	}
	return (&compiler.Compiler{}).Compile(wf)
}

// CompilePretty parses YAML source and emits the indented bundled wire form.
func CompilePretty(source string) (string, error) {
	wf, err := toWorkflow(source)
	if err != nil {
		return "", err
	}
	return (&compiler.Compiler{}).CompilePretty(wf)
}

func toWorkflow(source string) (*ast.Workflow, error) {
	doc, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return doc.ToWorkflow()
}
