package formula

// Restricted arithmetic for operator-configured pricing formulas. The
// grammar is decimal literals, the REF variable (the current base rate),
// + - * /, unary minus and parentheses. Nothing else parses, so a bad
// formula row in the database can fail loudly but never execute code.

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// RefName is the only variable a formula may reference
const RefName = "REF"

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenRef
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	tokens []token
	pos    int
	ref    decimal.Decimal
}

// Eval evaluates a formula with REF bound to ref.
func Eval(expr string, ref decimal.Decimal) (decimal.Decimal, error) {
	tokens, err := lex(expr)
	if err != nil {
		return decimal.Zero, err
	}

	p := &parser{tokens: tokens, ref: ref}
	result, err := p.parseExpr()
	if err != nil {
		return decimal.Zero, err
	}
	if p.peek().kind != tokenEOF {
		return decimal.Zero, fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	return result, nil
}

// Validate checks that a formula parses, without evaluating it against a
// real rate. Used when operators save pricing rows.
func Validate(expr string) error {
	_, err := Eval(expr, decimal.New(1, 0))
	return err
}

func lex(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{tokenPlus, "+", i})
			i++
		case r == '-':
			tokens = append(tokens, token{tokenMinus, "-", i})
			i++
		case r == '*':
			tokens = append(tokens, token{tokenStar, "*", i})
			i++
		case r == '/':
			tokens = append(tokens, token{tokenSlash, "/", i})
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			if strings.Count(text, ".") > 1 || text == "." {
				return nil, fmt.Errorf("invalid number %q at position %d", text, start)
			}
			tokens = append(tokens, token{tokenNumber, text, start})
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			name := string(runes[start:i])
			if !strings.EqualFold(name, RefName) {
				return nil, fmt.Errorf("unknown identifier %q at position %d", name, start)
			}
			tokens = append(tokens, token{tokenRef, RefName, start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", string(r), i)
		}
	}

	tokens = append(tokens, token{tokenEOF, "", len(runes)})
	return tokens, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek().kind {
		case tokenPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case tokenMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

// term := unary (('*' | '/') unary)*
func (p *parser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseUnary()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek().kind {
		case tokenStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case tokenSlash:
			tok := p.next()
			right, err := p.parseUnary()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, fmt.Errorf("division by zero at position %d", tok.pos)
			}
			left = left.Div(right)
		default:
			return left, nil
		}
	}
}

// unary := '-' unary | primary
func (p *parser) parseUnary() (decimal.Decimal, error) {
	if p.peek().kind == tokenMinus {
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	}
	return p.parsePrimary()
}

// primary := NUMBER | REF | '(' expr ')'
func (p *parser) parsePrimary() (decimal.Decimal, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, err := decimal.NewFromString(tok.text)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number %q at position %d", tok.text, tok.pos)
		}
		return v, nil
	case tokenRef:
		return p.ref, nil
	case tokenLParen:
		v, err := p.parseExpr()
		if err != nil {
			return decimal.Zero, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return decimal.Zero, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return v, nil
	case tokenEOF:
		return decimal.Zero, fmt.Errorf("unexpected end of formula")
	default:
		return decimal.Zero, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
}
