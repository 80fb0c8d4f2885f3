// Package keyword evaluates keyword filters against listing text. A filter
// is either a list of keywords, any of which may appear, or a boolean
// expression such as `DJI AND (Drone OR "flight controller") AND NOT case`.
//
// Matching is a case-insensitive substring test. Bare words that follow
// each other without an operator form a single phrase, so `go pro` looks
// for the text "go pro". Only AND, OR, NOT and parentheses split an
// expression. Precedence from loosest to tightest is OR, AND, NOT.
package keyword

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSyntax is returned by Parse for malformed expressions.
var ErrSyntax = errors.New("keyword expression syntax error")

// Spec is a keyword filter as written in configuration: either a list of
// alternatives or a single boolean expression.
type Spec struct {
	terms  []string
	expr   string
	isList bool
}

// List returns a Spec that matches text containing any of the terms.
func List(terms ...string) Spec {
	return Spec{terms: terms, isList: true}
}

// Expr returns a Spec for a boolean expression.
func Expr(expr string) Spec {
	return Spec{expr: expr}
}

// IsEmpty reports whether the spec filters nothing.
func (s Spec) IsEmpty() bool {
	if s.isList {
		for _, t := range s.terms {
			if strings.TrimSpace(t) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(s.expr) == ""
}

// Terms returns the list form of the spec, or nil for an expression.
func (s Spec) Terms() []string {
	return s.terms
}

func (s Spec) String() string {
	if s.isList {
		return strings.Join(s.terms, ", ")
	}
	return s.expr
}

// Validate checks that an expression spec parses.
func (s Spec) Validate() error {
	if s.isList || s.IsEmpty() {
		return nil
	}
	_, err := Parse(s.expr)
	return err
}

// Compile builds a reusable Matcher. An expression that does not parse
// is matched as one literal.
func (s Spec) Compile() *Matcher {
	if s.IsEmpty() {
		return &Matcher{}
	}
	if s.isList {
		var root node
		for _, t := range s.terms {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			lit := literal(strings.ToLower(t))
			if root == nil {
				root = lit
				continue
			}
			root = orNode{left: root, right: lit}
		}
		return &Matcher{root: root}
	}
	m, err := Parse(s.expr)
	if err != nil {
		return &Matcher{root: literal(strings.ToLower(strings.TrimSpace(s.expr)))}
	}
	return m
}

// UnmarshalYAML accepts a scalar expression or a sequence of keywords.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = Expr(node.Value)
		return nil
	case yaml.SequenceNode:
		var terms []string
		if err := node.Decode(&terms); err != nil {
			return fmt.Errorf("decoding keyword list: %w", err)
		}
		*s = List(terms...)
		return nil
	default:
		return fmt.Errorf("line %d: keywords must be a string or a list of strings", node.Line)
	}
}

// MarshalYAML writes the spec back in the form it was read.
func (s Spec) MarshalYAML() (any, error) {
	if s.isList {
		return s.terms, nil
	}
	return s.expr, nil
}

// Match reports whether text satisfies spec. Empty specs match everything.
func Match(spec Spec, text string) bool {
	return spec.Compile().Match(text)
}

// Matcher is a compiled keyword filter. It is immutable and safe for
// concurrent use.
type Matcher struct {
	root node
}

// Match evaluates the filter against text.
func (m *Matcher) Match(text string) bool {
	if m == nil || m.root == nil {
		return true
	}
	return m.root.eval(strings.ToLower(text))
}

func (m *Matcher) String() string {
	if m == nil || m.root == nil {
		return "<any>"
	}
	return m.root.String()
}

type node interface {
	eval(haystack string) bool
	String() string
}

type literal string

func (l literal) eval(haystack string) bool { return strings.Contains(haystack, string(l)) }
func (l literal) String() string            { return fmt.Sprintf("%q", string(l)) }

type andNode struct{ left, right node }

func (n andNode) eval(h string) bool { return n.left.eval(h) && n.right.eval(h) }
func (n andNode) String() string     { return "(" + n.left.String() + " AND " + n.right.String() + ")" }

type orNode struct{ left, right node }

func (n orNode) eval(h string) bool { return n.left.eval(h) || n.right.eval(h) }
func (n orNode) String() string     { return "(" + n.left.String() + " OR " + n.right.String() + ")" }

type notNode struct{ operand node }

func (n notNode) eval(h string) bool { return !n.operand.eval(h) }
func (n notNode) String() string     { return "NOT " + n.operand.String() }
