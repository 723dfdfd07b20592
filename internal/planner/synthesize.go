package planner

import (
	"strings"

	"github.com/relsearch/search-service/internal/catalog"
	"github.com/relsearch/search-service/internal/filterlang"
	"github.com/relsearch/search-service/internal/schemagraph"
)

// Synthesize composes a single SQL statement from a projection, a parsed
// filter command, and the schema graph. projection is used verbatim for
// the SELECT list — any `::TEXT` cross-backend decoration is the caller's
// responsibility (applied once at pipeline entry, per the backend tag),
// keeping this function backend-agnostic.
func Synthesize(projection []string, cmd filterlang.Command, graph *schemagraph.Graph) (string, error) {
	attrs := attributeUnion(projection, filterlang.Attributes(cmd))
	plan, err := ResolveJoins(graph, attrs)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList(projection))
	b.WriteString("\nFROM ")
	b.WriteString(strings.Join(plan.Tables, ", "))

	if where := buildWhere(plan, cmd); where != "" {
		b.WriteString("\nWHERE ")
		b.WriteString(where)
	}
	b.WriteString(";")
	return b.String(), nil
}

func attributeUnion(projection, commandAttrs []string) []string {
	set := make(map[string]struct{}, len(projection)+len(commandAttrs))
	for _, a := range projection {
		set[a] = struct{}{}
	}
	for _, a := range commandAttrs {
		set[a] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

func selectList(projection []string) string {
	if len(projection) == 0 {
		return "*"
	}
	return strings.Join(projection, ", ")
}

func buildWhere(plan JoinPlan, cmd filterlang.Command) string {
	joinBlock := renderJoinBlock(plan.Predicates)
	hasCmd := cmd.Single != nil || cmd.Composite != nil

	switch {
	case joinBlock != "" && hasCmd:
		return joinBlock + " AND " + wrapped(cmd)
	case joinBlock != "":
		return joinBlock
	case hasCmd:
		return wrapped(cmd)
	default:
		return ""
	}
}

func renderJoinBlock(predicates []string) string {
	if len(predicates) == 0 {
		return ""
	}
	rendered := make([]string, len(predicates))
	for i, pred := range predicates {
		parts := strings.SplitN(pred, ":", 2)
		rendered[i] = parts[0] + " = " + parts[1]
	}
	return "(" + strings.Join(rendered, " AND ") + ")"
}

// render renders a command without wrapping it in parentheses at its own
// level: a Single is a bare "attr OP value"; a Composite is the wrapped
// form of each child joined by its logical operator. Composite never
// wraps itself — only its children, and only the caller at the very top
// of the tree wraps the whole thing (see wrapped). This two-function split
// is what produces the doubled parenthesization visible in nested
// examples: every operand of a logical join is individually parenthesized,
// regardless of depth.
func render(cmd filterlang.Command) string {
	if cmd.Single != nil {
		return cmd.Single.Attribute + " " + cmd.Single.Op.Symbol() + " " + renderValue(cmd.Single.Value)
	}
	c := cmd.Composite
	return wrapped(c.Children[0]) + " " + c.Logical.String() + " " + wrapped(c.Children[1])
}

// wrapped renders cmd and parenthesizes the result. Used both for command
// operands inside a Composite and, once, for the entire top-level command
// block regardless of its tag.
func wrapped(cmd filterlang.Command) string {
	return "(" + render(cmd) + ")"
}

func renderValue(v filterlang.Value) string {
	if v.Kind == catalog.String {
		return "'" + v.Literal + "'"
	}
	return v.Literal
}
