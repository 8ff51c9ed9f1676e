package tools

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// calcAllowed is the full character set accepted by the calculator. Anything
// else is rejected before parsing starts.
var calcAllowed = regexp.MustCompile(`^[0-9\s+\-*/.()]+$`)

// ErrDivisionByZero is returned when a divisor evaluates to zero.
var ErrDivisionByZero = errors.New("division by zero")

// SyntaxError describes a malformed expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// Calculate evaluates an arithmetic expression over decimal literals with
// + - * /, unary signs and parentheses. Input outside the allow-list fails
// with ErrInputRejected without being parsed.
func Calculate(expr string) (float64, error) {
	if !calcAllowed.MatchString(expr) {
		return 0, &RejectedError{Reason: "only numbers and + - * / ( ) are allowed"}
	}

	p := &calcParser{src: expr}
	p.next()
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.err != nil {
		return 0, p.err
	}
	if p.tok.kind != tokEOF {
		return 0, p.errorf("unexpected %q", p.tok.text)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New("result out of range")
	}
	if v == 0 {
		// drop the sign of -0
		v = 0
	}
	return v, nil
}

// FormatNumber renders v without a trailing ".0" for whole numbers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
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

type calcParser struct {
	src string
	off int
	tok token
	err error
}

func (p *calcParser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

// next advances to the following token. Lexing errors are stashed in p.err
// and surface as an EOF token so the grammar unwinds.
func (p *calcParser) next() {
	for p.off < len(p.src) && isBlank(p.src[p.off]) {
		p.off++
	}
	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.src[p.off]
	switch {
	case c == '(':
		p.off++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.off++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == '+' || c == '-' || c == '*' || c == '/':
		p.off++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	default:
		for p.off < len(p.src) && (isDigit(p.src[p.off]) || p.src[p.off] == '.') {
			p.off++
		}
		text := p.src[start:p.off]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || text == "" {
			p.err = &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			p.tok = token{kind: tokEOF, pos: start}
			return
		}
		p.tok = token{kind: tokNum, text: text, num: v, pos: start}
	}
}

// expr := term (("+" | "-") term)*
func (p *calcParser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

// term := unary (("*" | "/") unary)*
func (p *calcParser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		p.next()
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
	return left, nil
}

// unary := ("+" | "-") unary | primary
func (p *calcParser) unary() (float64, error) {
	if p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		neg := p.tok.text == "-"
		p.next()
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if neg {
			v = -v
		}
		return v, nil
	}
	return p.primary()
}

// primary := number | "(" expr ")"
func (p *calcParser) primary() (float64, error) {
	if p.err != nil {
		return 0, p.err
	}

	switch p.tok.kind {
	case tokNum:
		v := p.tok.num
		p.next()
		return v, nil

	case tokLParen:
		p.next()
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			if p.err != nil {
				return 0, p.err
			}
			return 0, p.errorf("missing closing parenthesis")
		}
		p.next()
		return v, nil

	case tokEOF:
		return 0, p.errorf("unexpected end of expression")

	default:
		return 0, p.errorf("unexpected %q", p.tok.text)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
