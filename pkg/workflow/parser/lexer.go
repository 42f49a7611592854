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

package parser

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPath
	tokCompare // == != >= <= > <
	tokAssign
	tokArrow
	tokColon
	tokComma
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokPath:
		return "path"
	case tokCompare:
		return "comparison operator"
	case tokAssign:
		return "'='"
	case tokArrow:
		return "'->'"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "unknown token"
}

type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
}

// lex tokenizes the full source up front. The grammar is whitespace and
// newline insensitive; comments run from '#' to end of line.
func lex(source string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	i := 0
	n := len(source)

	emit := func(kind tokenKind, text string, ln, cl int) {
		toks = append(toks, token{kind: kind, text: text, line: ln, column: cl})
	}
	advance := func(count int) {
		for j := 0; j < count && i < n; j++ {
			if source[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

	for i < n {
		c := source[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance(1)

		case c == '#':
			for i < n && source[i] != '\n' {
				advance(1)
			}

		case c == '"':
			startLine, startCol := line, col
			advance(1)
			var sb strings.Builder
			closed := false
			for i < n {
				ch := source[i]
				if ch == '\\' && i+1 < n {
					next := source[i+1]
					if next == '"' || next == '\\' {
						sb.WriteByte(next)
						advance(2)
						continue
					}
					sb.WriteByte(ch)
					advance(1)
					continue
				}
				if ch == '"' {
					advance(1)
					closed = true
					break
				}
				if ch == '\n' {
					break
				}
				sb.WriteByte(ch)
				advance(1)
			}
			if !closed {
				return nil, &ParseError{
					Message: "unterminated string literal",
					Line:    startLine,
					Column:  startCol,
				}
			}
			emit(tokString, sb.String(), startLine, startCol)

		case c == '/':
			startLine, startCol := line, col
			start := i
			for i < n && !isPathTerminator(source[i]) {
				advance(1)
			}
			emit(tokPath, source[start:i], startLine, startCol)

		case c == '-':
			startLine, startCol := line, col
			if i+1 < n && source[i+1] == '>' {
				advance(2)
				emit(tokArrow, "->", startLine, startCol)
				break
			}
			if i+1 < n && isDigit(source[i+1]) {
				advance(1)
				num := "-" + scanNumber(source, &i, advance)
				emit(tokNumber, num, startLine, startCol)
				break
			}
			return nil, &ParseError{
				Message: "unexpected character '-'",
				Line:    startLine,
				Column:  startCol,
			}

		case isDigit(c):
			startLine, startCol := line, col
			num := scanNumber(source, &i, advance)
			emit(tokNumber, num, startLine, startCol)

		case c == '=':
			startLine, startCol := line, col
			if i+1 < n && source[i+1] == '=' {
				advance(2)
				emit(tokCompare, "==", startLine, startCol)
			} else {
				advance(1)
				emit(tokAssign, "=", startLine, startCol)
			}

		case c == '!':
			startLine, startCol := line, col
			if i+1 < n && source[i+1] == '=' {
				advance(2)
				emit(tokCompare, "!=", startLine, startCol)
				break
			}
			return nil, &ParseError{
				Message: "unexpected character '!'",
				Line:    startLine,
				Column:  startCol,
			}

		case c == '>' || c == '<':
			startLine, startCol := line, col
			op := string(c)
			if i+1 < n && source[i+1] == '=' {
				op += "="
				advance(2)
			} else {
				advance(1)
			}
			emit(tokCompare, op, startLine, startCol)

		case c == ':':
			emit(tokColon, ":", line, col)
			advance(1)
		case c == ',':
			emit(tokComma, ",", line, col)
			advance(1)
		case c == '{':
			emit(tokLBrace, "{", line, col)
			advance(1)
		case c == '}':
			emit(tokRBrace, "}", line, col)
			advance(1)
		case c == '[':
			emit(tokLBracket, "[", line, col)
			advance(1)
		case c == ']':
			emit(tokRBracket, "]", line, col)
			advance(1)
		case c == '(':
			emit(tokLParen, "(", line, col)
			advance(1)
		case c == ')':
			emit(tokRParen, ")", line, col)
			advance(1)

		case isIdentStart(c):
			startLine, startCol := line, col
			start := i
			for i < n && isIdentPart(source[i]) {
				advance(1)
			}
			emit(tokIdent, source[start:i], startLine, startCol)

		default:
			return nil, &ParseError{
				Message: fmt.Sprintf("unexpected character %q", string(c)),
				Line:    line,
				Column:  col,
			}
		}
	}

	emit(tokEOF, "", line, col)
	return toks, nil
}

func scanNumber(source string, i *int, advance func(int)) string {
	start := *i
	for *i < len(source) && isDigit(source[*i]) {
		advance(1)
	}
	if *i+1 < len(source) && source[*i] == '.' && isDigit(source[*i+1]) {
		advance(1)
		for *i < len(source) && isDigit(source[*i]) {
			advance(1)
		}
	}
	return source[start:*i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isPathTerminator(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', '}', ']', ')':
		return true
	}
	return false
}
