// Package expr evaluates quest conditions against a numeric context.
// The grammar is deliberately restricted: numeric literals, named
// variables, arithmetic, comparisons, and logical connectives. Quest
// conditions originate from an admin data store, not compiled code, so
// nothing outside this grammar can ever execute.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotBoolean is returned when an expression parses but does not
// evaluate to a boolean (e.g. a bare arithmetic expression).
var ErrNotBoolean = errors.New("expression does not evaluate to a boolean")

// maxDepth bounds parser recursion. Conditions are short admin-authored
// strings; anything nesting deeper is rejected rather than risking the
// stack.
const maxDepth = 64

// ParseError reports a syntax error with its byte offset.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// EvalError reports a runtime evaluation failure (type mismatch,
// division by zero).
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return "eval error: " + e.Msg
}

// Evaluate parses expression and evaluates it against ctx.
// Variables absent from ctx resolve to 0 — a safety net, since callers
// supply a default-filled context. The expression must yield a boolean.
func Evaluate(expression string, ctx map[string]float64) (bool, error) {
	node, err := Parse(expression)
	if err != nil {
		return false, err
	}
	v, err := node.eval(ctx)
	if err != nil {
		return false, err
	}
	if !v.isBool {
		return false, ErrNotBoolean
	}
	return v.b, nil
}

// Validate parses expression and rejects syntax errors. Used at quest
// creation time so malformed conditions never reach the catalog.
func Validate(expression string) error {
	_, err := Parse(expression)
	return err
}

// Parse compiles expression into an evaluable tree.
func Parse(expression string) (*Node, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	p := &parser{input: expression}
	p.next()
	node, err := p.parseExpr(0, 0)
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokEOF {
		return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected %q", p.tok.text)}
	}
	return node, nil
}

// ─── Values ─────────────────────────────────────────────────────────────────

type value struct {
	num    float64
	b      bool
	isBool bool
}

func numVal(f float64) value { return value{num: f} }
func boolVal(b bool) value   { return value{b: b, isBool: true} }

// ─── AST ────────────────────────────────────────────────────────────────────

// Node is a compiled expression tree node.
type Node struct {
	op    string // "num", "var", unary "neg"/"not", or a binary operator
	num   float64
	name  string
	left  *Node
	right *Node
}

func (n *Node) eval(ctx map[string]float64) (value, error) {
	switch n.op {
	case "num":
		return numVal(n.num), nil
	case "var":
		return numVal(ctx[n.name]), nil // Missing variables read as 0
	case "neg":
		v, err := n.left.eval(ctx)
		if err != nil {
			return value{}, err
		}
		if v.isBool {
			return value{}, &EvalError{Msg: "cannot negate a boolean"}
		}
		return numVal(-v.num), nil
	case "not":
		v, err := n.left.eval(ctx)
		if err != nil {
			return value{}, err
		}
		if !v.isBool {
			return value{}, &EvalError{Msg: "'not' requires a boolean operand"}
		}
		return boolVal(!v.b), nil
	}

	l, err := n.left.eval(ctx)
	if err != nil {
		return value{}, err
	}

	// Logical connectives short-circuit.
	if n.op == "&&" || n.op == "||" {
		if !l.isBool {
			return value{}, &EvalError{Msg: n.op + " requires boolean operands"}
		}
		if n.op == "&&" && !l.b {
			return boolVal(false), nil
		}
		if n.op == "||" && l.b {
			return boolVal(true), nil
		}
		r, err := n.right.eval(ctx)
		if err != nil {
			return value{}, err
		}
		if !r.isBool {
			return value{}, &EvalError{Msg: n.op + " requires boolean operands"}
		}
		return boolVal(r.b), nil
	}

	r, err := n.right.eval(ctx)
	if err != nil {
		return value{}, err
	}
	if l.isBool || r.isBool {
		return value{}, &EvalError{Msg: n.op + " requires numeric operands"}
	}

	switch n.op {
	case "+":
		return numVal(l.num + r.num), nil
	case "-":
		return numVal(l.num - r.num), nil
	case "*":
		return numVal(l.num * r.num), nil
	case "/":
		if r.num == 0 {
			return value{}, &EvalError{Msg: "division by zero"}
		}
		return numVal(l.num / r.num), nil
	case ">=":
		return boolVal(l.num >= r.num), nil
	case "<=":
		return boolVal(l.num <= r.num), nil
	case ">":
		return boolVal(l.num > r.num), nil
	case "<":
		return boolVal(l.num < r.num), nil
	case "==":
		return boolVal(l.num == r.num), nil
	case "!=":
		return boolVal(l.num != r.num), nil
	}
	return value{}, &EvalError{Msg: "unknown operator " + n.op}
}

// ─── Lexer ──────────────────────────────────────────────────────────────────

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

type parser struct {
	input string
	pos   int
	tok   token
	err   *ParseError
}

func (p *parser) next() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		end := p.pos
		for end < len(p.input) && (p.input[end] >= '0' && p.input[end] <= '9' || p.input[end] == '.') {
			end++
		}
		text := p.input[start:end]
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.fail(start, fmt.Sprintf("bad number %q", text))
			return
		}
		p.pos = end
		p.tok = token{kind: tokNum, text: text, num: f, pos: start}

	case isIdentStart(c):
		end := p.pos
		for end < len(p.input) && isIdentPart(p.input[end]) {
			end++
		}
		p.pos = end
		p.tok = token{kind: tokIdent, text: p.input[start:end], pos: start}

	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}

	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}

	default:
		// Two-character operators first.
		if p.pos+1 < len(p.input) {
			two := p.input[p.pos : p.pos+2]
			switch two {
			case ">=", "<=", "==", "!=", "&&", "||":
				p.pos += 2
				p.tok = token{kind: tokOp, text: two, pos: start}
				return
			}
		}
		switch c {
		case '>', '<', '+', '-', '*', '/', '!':
			p.pos++
			p.tok = token{kind: tokOp, text: string(c), pos: start}
		default:
			p.fail(start, fmt.Sprintf("unexpected character %q", string(c)))
		}
	}
}

func (p *parser) fail(pos int, msg string) {
	if p.err == nil {
		p.err = &ParseError{Pos: pos, Msg: msg}
	}
	p.tok = token{kind: tokEOF, pos: pos}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || c >= '0' && c <= '9' }

// ─── Parser ─────────────────────────────────────────────────────────────────
// Precedence climbing: or < and < comparison < additive < multiplicative.

func bindingPower(tok token) int {
	if tok.kind == tokIdent {
		switch tok.text {
		case "or":
			return 1
		case "and":
			return 2
		}
		return 0
	}
	if tok.kind != tokOp {
		return 0
	}
	switch tok.text {
	case "||":
		return 1
	case "&&":
		return 2
	case ">=", "<=", ">", "<", "==", "!=":
		return 3
	case "+", "-":
		return 4
	case "*", "/":
		return 5
	}
	return 0
}

// canonOp maps keyword connectives onto their symbolic forms.
func canonOp(text string) string {
	switch text {
	case "and":
		return "&&"
	case "or":
		return "||"
	}
	return text
}

func (p *parser) parseExpr(minBP, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, &ParseError{Pos: p.tok.pos, Msg: "expression too deeply nested"}
	}

	left, err := p.parsePrefix(depth)
	if err != nil {
		return nil, err
	}

	for {
		bp := bindingPower(p.tok)
		if bp == 0 || bp < minBP {
			return left, nil
		}
		op := canonOp(p.tok.text)
		p.next()

		right, err := p.parseExpr(bp+1, depth+1)
		if err != nil {
			return nil, err
		}
		left = &Node{op: op, left: left, right: right}
	}
}

func (p *parser) parsePrefix(depth int) (*Node, error) {
	if p.err != nil {
		return nil, p.err
	}
	if depth > maxDepth {
		return nil, &ParseError{Pos: p.tok.pos, Msg: "expression too deeply nested"}
	}

	switch p.tok.kind {
	case tokNum:
		n := &Node{op: "num", num: p.tok.num}
		p.next()
		return n, nil

	case tokIdent:
		switch p.tok.text {
		case "not":
			p.next()
			operand, err := p.parsePrefix(depth + 1)
			if err != nil {
				return nil, err
			}
			return &Node{op: "not", left: operand}, nil
		case "true":
			// Not part of the grammar: conditions compare counters.
			return nil, &ParseError{Pos: p.tok.pos, Msg: "boolean literals are not supported"}
		case "false":
			return nil, &ParseError{Pos: p.tok.pos, Msg: "boolean literals are not supported"}
		}
		n := &Node{op: "var", name: p.tok.text}
		p.next()
		return n, nil

	case tokLParen:
		p.next()
		inner, err := p.parseExpr(0, depth+1)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, &ParseError{Pos: p.tok.pos, Msg: "missing closing parenthesis"}
		}
		p.next()
		return inner, nil

	case tokOp:
		switch p.tok.text {
		case "-":
			p.next()
			operand, err := p.parsePrefix(depth + 1)
			if err != nil {
				return nil, err
			}
			return &Node{op: "neg", left: operand}, nil
		case "!":
			p.next()
			operand, err := p.parsePrefix(depth + 1)
			if err != nil {
				return nil, err
			}
			return &Node{op: "not", left: operand}, nil
		}
		return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected operator %q", p.tok.text)}

	case tokEOF:
		if p.err != nil {
			return nil, p.err
		}
		return nil, &ParseError{Pos: p.tok.pos, Msg: "unexpected end of expression"}
	}
	return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected token %q", p.tok.text)}
}
