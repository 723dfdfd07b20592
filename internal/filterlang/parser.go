package filterlang

import (
	"strconv"
	"strings"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/catalog"
)

// Parse turns a single infix filter string into a Command tree. The
// grammar has no precedence and no associativity beyond left-to-right
// within a group; ambiguous input is resolved by trying literal substring
// markers in a fixed order, not by tokenizing first.
func Parse(s string) (Command, error) {
	if strings.Contains(s, ") AND (") {
		left, right, err := splitGrouped(s, ") AND (")
		if err != nil {
			return Command{}, err
		}
		return parseGroup(left, right, And)
	}
	if strings.Contains(s, ") OR (") {
		left, right, err := splitGrouped(s, ") OR (")
		if err != nil {
			return Command{}, err
		}
		return parseGroup(left, right, Or)
	}
	if strings.Contains(s, " AND ") {
		left, right, err := splitLoose(s, " AND ")
		if err != nil {
			return Command{}, err
		}
		return parseGroup(left, right, And)
	}
	if strings.Contains(s, " OR ") {
		left, right, err := splitLoose(s, " OR ")
		if err != nil {
			return Command{}, err
		}
		return parseGroup(left, right, Or)
	}
	return parseTerminal(s)
}

// splitGrouped handles the `") AND ("` / `") OR ("` markers: split once on
// the marker, then trim the leading "(" off the left side and the
// trailing ")" off the right side.
func splitGrouped(s, marker string) (string, string, error) {
	parts := strings.SplitN(s, marker, 2)
	if len(parts) != 2 {
		return "", "", apperr.ParseError("filterlang: malformed grouped expression %q", s)
	}
	left := strings.TrimPrefix(parts[0], "(")
	right := strings.TrimSuffix(parts[1], ")")
	return left, right, nil
}

// splitLoose handles the `" AND "` / `" OR "` markers: split once at the
// first occurrence, strip a leading "(" from the left side only, leave
// the right side verbatim.
func splitLoose(s, marker string) (string, string, error) {
	parts := strings.SplitN(s, marker, 2)
	if len(parts) != 2 {
		return "", "", apperr.ParseError("filterlang: malformed expression %q", s)
	}
	left := strings.TrimPrefix(parts[0], "(")
	return left, parts[1], nil
}

func parseGroup(left, right string, lop LogicalOperator) (Command, error) {
	lc, err := Parse(left)
	if err != nil {
		return Command{}, err
	}
	rc, err := Parse(right)
	if err != nil {
		return Command{}, err
	}
	return composite(CompositeCommand{Logical: lop, Children: []Command{lc, rc}}), nil
}

func parseTerminal(s string) (Command, error) {
	// A loose split leaves the enclosing group's parentheses on the
	// terminal (e.g. "x gt 1000000)"); they are not part of the literal.
	s = strings.TrimRight(strings.TrimLeft(s, "("), ")")
	tokens := strings.Split(s, " ")
	if len(tokens) != 3 {
		return Command{}, apperr.ParseError("filterlang: terminal %q does not split into exactly three tokens", s)
	}
	attr, opTok, lit := tokens[0], tokens[1], tokens[2]

	op, ok := operatorTokens[opTok]
	if !ok {
		return Command{}, apperr.ParseError("filterlang: unknown operator %q", opTok)
	}

	return single(SingleCommand{Attribute: attr, Op: op, Value: typeLiteral(lit)}), nil
}

// typeLiteral implements the literal-typing rule: Integer if the token
// parses as a float and contains no period; otherwise Attribute if it is a
// three-segment dotted identifier; otherwise String.
func typeLiteral(tok string) Value {
	if _, err := strconv.ParseFloat(tok, 64); err == nil && !strings.Contains(tok, ".") {
		return Value{Literal: tok, Kind: catalog.Integer}
	}
	if isThreeSegmentIdent(tok) {
		return Value{Literal: tok, Kind: catalog.Attribute}
	}
	return Value{Literal: tok, Kind: catalog.String}
}

func isThreeSegmentIdent(tok string) bool {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
