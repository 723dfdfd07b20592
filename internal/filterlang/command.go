// Package filterlang parses the small infix filter language into an
// intermediate command tree and defines the tree's sum type.
package filterlang

import (
	"sort"

	"github.com/relsearch/search-service/internal/catalog"
)

// Operator is one of the six comparison operators a terminal may use. The
// declared order is the wire contract for the properties endpoint.
type Operator int

const (
	EqualTo Operator = iota
	GreaterThan
	LessThan
	GreaterThanOrEqualTo
	LessThanOrEqualTo
	NotEqualTo
)

// Operators lists every Operator in wire-contract order.
var Operators = []Operator{EqualTo, GreaterThan, LessThan, GreaterThanOrEqualTo, LessThanOrEqualTo, NotEqualTo}

// Symbol returns the SQL comparison symbol for an operator.
func (o Operator) Symbol() string {
	switch o {
	case EqualTo:
		return "="
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterThanOrEqualTo:
		return ">="
	case LessThanOrEqualTo:
		return "<="
	case NotEqualTo:
		return "<>"
	default:
		return "?"
	}
}

func (o Operator) String() string {
	switch o {
	case EqualTo:
		return "EqualTo"
	case GreaterThan:
		return "GreaterThan"
	case LessThan:
		return "LessThan"
	case GreaterThanOrEqualTo:
		return "GreaterThanOrEqualTo"
	case LessThanOrEqualTo:
		return "LessThanOrEqualTo"
	case NotEqualTo:
		return "NotEqualTo"
	default:
		return "Unknown"
	}
}

// operatorTokens maps the filter language's two-letter tokens to
// Operator values.
var operatorTokens = map[string]Operator{
	"eq": EqualTo,
	"gt": GreaterThan,
	"lt": LessThan,
	"ge": GreaterThanOrEqualTo,
	"le": LessThanOrEqualTo,
	"ne": NotEqualTo,
}

// LogicalOperator joins two Command children in a Composite. The declared
// order is the wire contract for the properties endpoint.
type LogicalOperator int

const (
	And LogicalOperator = iota
	Or
)

// LogicalOperators lists every LogicalOperator in wire-contract order.
var LogicalOperators = []LogicalOperator{And, Or}

func (l LogicalOperator) String() string {
	switch l {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return "?"
	}
}

// Value is a typed literal. Kind reuses catalog.TypeKind since it is the
// same closed set the catalog attribute types draw from; the parser only
// ever produces Integer, String, or Attribute (never Date — that kind is
// only ever assigned by a storage adapter's native-type translation).
type Value struct {
	Literal string
	Kind    catalog.TypeKind
}

// Command is the sum type over Single and Composite. Exactly one of
// Single/Composite is non-nil.
type Command struct {
	Single    *SingleCommand
	Composite *CompositeCommand
}

// SingleCommand is a terminal predicate: attribute OP value.
type SingleCommand struct {
	Attribute string
	Op        Operator
	Value     Value
}

// CompositeCommand joins two or more children with a single logical
// operator. The synthesizer assumes exactly two; the parser never
// produces more than two.
type CompositeCommand struct {
	Logical  LogicalOperator
	Children []Command
}

func single(s SingleCommand) Command    { return Command{Single: &s} }
func composite(c CompositeCommand) Command { return Command{Composite: &c} }

// Attributes returns every attribute referenced by cmd — the Single's
// attribute plus, when its value is Attribute-typed, the value literal
// too — recursively over Composite children, sorted and de-duplicated.
func Attributes(cmd Command) []string {
	set := map[string]struct{}{}
	collectAttributes(cmd, set)
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func collectAttributes(cmd Command, set map[string]struct{}) {
	if cmd.Single != nil {
		set[cmd.Single.Attribute] = struct{}{}
		if cmd.Single.Value.Kind == catalog.Attribute {
			set[cmd.Single.Value.Literal] = struct{}{}
		}
		return
	}
	if cmd.Composite != nil {
		for _, child := range cmd.Composite.Children {
			collectAttributes(child, set)
		}
	}
}
