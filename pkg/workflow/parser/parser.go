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

// Package parser turns a2e-lang source text into the AST defined in
// pkg/workflow/ast. The grammar is whitespace insensitive: an operation body
// may span many lines or sit on one. Structural keywords (from, where, if,
// then, else, run) always win over identically named properties.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

// ParseError reports a syntax error with a best-effort source location.
// Line 0 means the location is unknown.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Parse parses a2e-lang source and returns the workflow AST.
func Parse(source string) (*ast.Workflow, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseWorkflow()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) next() token  { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) peek2() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) peekIdent(text string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == text
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, errAt(t, fmt.Sprintf("expected %s, got %s", kind, describe(t)))
	}
	return t, nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

func errAt(t token, msg string) *ParseError {
	return &ParseError{Message: msg, Line: t.line, Column: t.column}
}

func (p *parser) parseWorkflow() (*ast.Workflow, error) {
	wf := &ast.Workflow{Name: "unnamed"}

	if !p.peekIdent("workflow") {
		return nil, errAt(p.peek(), "expected 'workflow' declaration")
	}
	p.next()
	name, err := p.expect(tokString)
	if err != nil {
		return nil, err
	}
	wf.Name = name.text

	for p.peek().kind != tokEOF {
		if p.peekIdent("run") && p.peek2().kind == tokColon {
			order, err := p.parseRunDecl()
			if err != nil {
				return nil, err
			}
			wf.ExecutionOrder = order
			continue
		}

		op, err := p.parseOperation()
		if err != nil {
			return nil, err
		}
		wf.Operations = append(wf.Operations, *op)
	}

	return wf, nil
}

// parseRunDecl parses "run: id1 -> id2 -> ...".
func (p *parser) parseRunDecl() ([]string, error) {
	p.next() // run
	p.next() // :

	first, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	order := []string{first.text}
	for p.peek().kind == tokArrow {
		p.next()
		id, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		order = append(order, id.text)
	}
	return order, nil
}

// parseOperation parses "id = OpType { ... }".
func (p *parser) parseOperation() (*ast.Operation, error) {
	idTok, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return nil, err
	}
	typeTok, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}

	op := &ast.Operation{
		ID:     idTok.text,
		OpType: typeTok.text,
		Line:   idTok.line,
		Column: idTok.column,
	}

	for {
		t := p.peek()
		switch {
		case t.kind == tokRBrace:
			p.next()
			return op, nil

		case t.kind == tokEOF:
			return nil, errAt(t, fmt.Sprintf("unterminated operation body for '%s'", op.ID))

		case t.kind == tokArrow:
			p.next()
			path, err := p.expect(tokPath)
			if err != nil {
				return nil, err
			}
			op.OutputPath = path.text

		case t.kind == tokIdent && t.text == "from":
			p.next()
			path, err := p.expect(tokPath)
			if err != nil {
				return nil, err
			}
			op.InputPath = path.text

		case t.kind == tokIdent && t.text == "where":
			p.next()
			conds, err := p.parseConditions()
			if err != nil {
				return nil, err
			}
			op.Conditions = conds

		case t.kind == tokIdent && t.text == "if":
			p.next()
			clause, err := p.parseIfClause()
			if err != nil {
				return nil, err
			}
			op.If = clause

		default:
			prop, err := p.parseProperty()
			if err != nil {
				return nil, err
			}
			op.Properties = append(op.Properties, *prop)
		}
	}
}

// parseConditions parses "field op value, field op, ..." after "where".
func (p *parser) parseConditions() ([]ast.Condition, error) {
	var conds []ast.Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conds = append(conds, *cond)
		if p.peek().kind != tokComma {
			return conds, nil
		}
		p.next()
	}
}

func (p *parser) parseCondition() (*ast.Condition, error) {
	field := p.next()
	if field.kind != tokIdent && field.kind != tokString {
		return nil, errAt(field, fmt.Sprintf("expected condition field, got %s", describe(field)))
	}
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	cond := &ast.Condition{Field: field.text, Operator: op}
	if ast.UnaryOperators[op] {
		return cond, nil
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	cond.Value = val
	return cond, nil
}

// parseIfClause parses "/path op value then a, b else c" after "if".
func (p *parser) parseIfClause() (*ast.IfClause, error) {
	path, err := p.expect(tokPath)
	if err != nil {
		return nil, err
	}
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	clause := &ast.IfClause{Path: path.text, Operator: op}
	if !ast.UnaryOperators[op] && !p.peekIdent("then") {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		clause.Value = val
	}

	if !p.peekIdent("then") {
		return nil, errAt(p.peek(), fmt.Sprintf("expected 'then', got %s", describe(p.peek())))
	}
	p.next()

	clause.IfTrue, err = p.parseIdentList()
	if err != nil {
		return nil, err
	}

	if p.peekIdent("else") {
		p.next()
		clause.IfFalse, err = p.parseIdentList()
		if err != nil {
			return nil, err
		}
	}
	return clause, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	first, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	list := []string{first.text}
	for p.peek().kind == tokComma {
		p.next()
		id, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		list = append(list, id.text)
	}
	return list, nil
}

// parseOperator accepts a symbolic comparison or a word operator
// (in, contains, startsWith, endsWith, exists, empty).
func (p *parser) parseOperator() (string, error) {
	t := p.next()
	if t.kind == tokCompare {
		return t.text, nil
	}
	if t.kind == tokIdent && (ast.BinaryOperators[t.text] || ast.UnaryOperators[t.text]) {
		return t.text, nil
	}
	return "", errAt(t, fmt.Sprintf("expected operator, got %s", describe(t)))
}

func (p *parser) parseProperty() (*ast.Property, error) {
	key := p.next()
	if key.kind != tokIdent && key.kind != tokString {
		return nil, errAt(key, fmt.Sprintf("expected property key, got %s", describe(key)))
	}
	if _, err := p.expect(tokColon); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Property{Key: key.text, Value: val}, nil
}

func (p *parser) parseValue() (ast.Value, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return ast.String(t.text), nil

	case tokNumber:
		if strings.Contains(t.text, ".") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, errAt(t, fmt.Sprintf("invalid number %q", t.text))
			}
			return ast.Float(f), nil
		}
		i, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, errAt(t, fmt.Sprintf("invalid number %q", t.text))
		}
		return ast.Int(i), nil

	case tokPath:
		return ast.PathRef{Raw: t.text}, nil

	case tokIdent:
		switch t.text {
		case "true":
			return ast.Bool(true), nil
		case "false":
			return ast.Bool(false), nil
		case "null":
			return ast.Null{}, nil
		case "credential":
			if p.peek().kind == tokLParen {
				p.next()
				id, err := p.expect(tokString)
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(tokRParen); err != nil {
					return nil, err
				}
				return ast.CredentialRef{ID: id.text}, nil
			}
			return ast.String(t.text), nil
		default:
			// Bare identifiers in value position are strings,
			// e.g. storage: localStorage.
			return ast.String(t.text), nil
		}

	case tokLBrace:
		return p.parseObject()

	case tokLBracket:
		return p.parseArray()
	}
	return nil, errAt(t, fmt.Sprintf("expected value, got %s", describe(t)))
}

func (p *parser) parseObject() (ast.Value, error) {
	obj := ast.Object{}
	if p.peek().kind == tokRBrace {
		p.next()
		return obj, nil
	}
	for {
		prop, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, *prop)
		t := p.next()
		if t.kind == tokRBrace {
			return obj, nil
		}
		if t.kind != tokComma {
			return nil, errAt(t, fmt.Sprintf("expected ',' or '}', got %s", describe(t)))
		}
	}
}

func (p *parser) parseArray() (ast.Value, error) {
	arr := ast.Array{}
	if p.peek().kind == tokRBracket {
		p.next()
		return arr, nil
	}
	for {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, val)
		t := p.next()
		if t.kind == tokRBracket {
			return arr, nil
		}
		if t.kind != tokComma {
			return nil, errAt(t, fmt.Sprintf("expected ',' or ']', got %s", describe(t)))
		}
	}
}
