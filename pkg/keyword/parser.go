package keyword

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q at %d", t.text, t.pos)
}

// Parse compiles a boolean keyword expression, reporting ErrSyntax for
// unbalanced parentheses, dangling operators, empty groups and empty quotes.
func Parse(expr string) (*Matcher, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		return &Matcher{}, nil
	}

	// A lone reserved word is text to look for, not an operator.
	if len(tokens) == 2 && isOperator(tokens[0].kind) {
		tokens[0].kind = tokWord
	}

	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s", ErrSyntax, tok.describe())
	}
	return &Matcher{root: root}, nil
}

func isOperator(k tokenKind) bool {
	return k == tokAnd || k == tokOr || k == tokNot
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("%w: unterminated quote at %d", ErrSyntax, i)
			}
			text := string(runes[i+1 : end])
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("%w: empty quote at %d", ErrSyntax, i)
			}
			tokens = append(tokens, token{kind: tokQuoted, text: text, pos: i})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && !strings.ContainsRune(`()"`, runes[i]) {
				i++
			}
			word := string(runes[start:i])
			tokens = append(tokens, token{kind: wordKind(word), text: word, pos: start})
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

func wordKind(word string) tokenKind {
	switch {
	case strings.EqualFold(word, "AND"):
		return tokAnd
	case strings.EqualFold(word, "OR"):
		return tokOr
	case strings.EqualFold(word, "NOT"):
		return tokNot
	default:
		return tokWord
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.peek().kind == tokNot {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return notNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		if p.peek().kind == tokRParen {
			return nil, fmt.Errorf("%w: empty group at %d", ErrSyntax, tok.pos)
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ) for ( at %d", ErrSyntax, tok.pos)
		}
		return inner, p.checkAdjacent()
	case tokQuoted:
		return literal(strings.ToLower(tok.text)), p.checkAdjacent()
	case tokWord:
		words := []string{tok.text}
		for p.peek().kind == tokWord {
			words = append(words, p.next().text)
		}
		return literal(strings.ToLower(strings.Join(words, " "))), p.checkAdjacent()
	default:
		return nil, fmt.Errorf("%w: expected keyword, found %s", ErrSyntax, tok.describe())
	}
}

// checkAdjacent rejects two operands with no operator between them, such
// as `"go pro" hero` or `(a) b`.
func (p *parser) checkAdjacent() error {
	switch tok := p.peek(); tok.kind {
	case tokWord, tokQuoted, tokLParen, tokNot:
		return fmt.Errorf("%w: missing operator before %s", ErrSyntax, tok.describe())
	default:
		return nil
	}
}
