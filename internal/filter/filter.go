// Package filter implements the predicates behind the live list filter:
// case-insensitive containment by default, /regex/ and =expression queries
// on request.
package filter

import (
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"golang.org/x/text/cases"
)

// Subject is anything a query can be matched against.
type Subject interface {
	Label() string
	Key() string
}

// Fielder is implemented by subjects that expose named fields to
// expression queries.
type Fielder interface {
	Fields() map[string]any
}

type Matcher interface {
	Match(s Subject) bool
}

type Criteria struct {
	Query    string // plain contains or regex if /.../
	UseRegex bool
	Expr     string // govaluate expression, from "=..."
}

// Parse classifies a raw filter input.
func Parse(q string) Criteria {
	if len(q) > 2 && strings.HasPrefix(q, "/") && strings.HasSuffix(q, "/") {
		return Criteria{Query: q[1 : len(q)-1], UseRegex: true}
	}
	if strings.HasPrefix(q, "=") && strings.TrimSpace(q[1:]) != "" {
		return Criteria{Expr: strings.TrimSpace(q[1:])}
	}
	return Criteria{Query: q}
}

type Evaluator struct {
	needle string // case folded
	re     *regexp.Regexp
	expr   *govaluate.EvaluableExpression
}

func NewEvaluator(c Criteria) (*Evaluator, error) {
	e := &Evaluator{}
	var err error
	switch {
	case strings.TrimSpace(c.Expr) != "":
		e.expr, err = govaluate.NewEvaluableExpression(c.Expr)
		if err != nil {
			return nil, err
		}
	case c.UseRegex && c.Query != "":
		e.re, err = regexp.Compile(c.Query)
		if err != nil {
			return nil, err
		}
	default:
		e.needle = fold(c.Query)
	}
	return e, nil
}

// Contains is the default predicate: the label contains needle ignoring
// case.
func Contains(needle string) *Evaluator {
	return &Evaluator{needle: fold(needle)}
}

// Compile parses and compiles a raw filter input.
func Compile(q string) (*Evaluator, error) {
	return NewEvaluator(Parse(q))
}

func (e *Evaluator) Match(s Subject) bool {
	if e.expr != nil {
		result, err := e.expr.Evaluate(params(s))
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		return ok && b
	}
	if e.re != nil {
		return e.re.MatchString(s.Label())
	}
	if e.needle == "" {
		return true
	}
	return strings.Contains(fold(s.Label()), e.needle)
}

func params(s Subject) map[string]any {
	out := map[string]any{}
	if f, ok := s.(Fielder); ok {
		for k, v := range f.Fields() {
			out[k] = v
		}
	}
	out["label"] = s.Label()
	out["key"] = s.Key()
	return out
}

func fold(s string) string {
	return cases.Fold().String(s)
}
