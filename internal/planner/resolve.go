// Package planner turns a projection and a parsed filter command into a
// join plan (resolve.go) and a SQL statement (synthesize.go).
package planner

import (
	"sort"
	"strings"

	"github.com/relsearch/search-service/internal/apperr"
	"github.com/relsearch/search-service/internal/schemagraph"
)

// JoinPlan is the output of ResolveJoins: the sorted set of tables the
// query must select FROM, and the sorted set of canonical join predicates
// it must apply in WHERE.
type JoinPlan struct {
	Tables     []string
	Predicates []string
}

// tableOf returns the "schema.table" portion of a fully-qualified
// "schema.table.column" attribute.
func tableOf(attr string) string {
	i := strings.LastIndex(attr, ".")
	if i < 0 {
		return attr
	}
	return attr[:i]
}

// unionFind is a minimal disjoint-set structure over the indices of the
// attribute slice passed to ResolveJoins.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// ResolveJoins computes the minimal set of tables and equi-join predicates
// needed to connect every attribute in attrs. attrs is the union of the
// projection and the command's referenced attributes.
func ResolveJoins(graph *schemagraph.Graph, attrs []string) (JoinPlan, error) {
	if len(attrs) <= 1 {
		plan := JoinPlan{}
		for _, a := range attrs {
			plan.Tables = append(plan.Tables, tableOf(a))
		}
		return plan, nil
	}

	uf := newUnionFind(len(attrs))
	neededTables := map[string]struct{}{}
	joinPredicates := map[string]struct{}{}

	for i := 0; i < len(attrs); i++ {
		for j := i + 1; j < len(attrs); j++ {
			ti, tj := tableOf(attrs[i]), tableOf(attrs[j])
			tables, labels, err := graph.PathTo(ti, tj)
			if err != nil {
				return JoinPlan{}, apperr.WrapQueryBuildError(err)
			}
			if len(tables) == 0 {
				continue
			}
			uf.union(i, j)
			for _, t := range tables {
				neededTables[t] = struct{}{}
			}
			for k, label := range labels {
				parts := strings.SplitN(label, ":", 2)
				if len(parts) != 2 {
					return JoinPlan{}, apperr.QueryBuildError("planner: malformed edge label %q", label)
				}
				left := tables[k] + "." + parts[0]
				right := tables[k+1] + "." + parts[1]
				joinPredicates[canonicalPredicate(left, right)] = struct{}{}
			}
		}
	}

	root := uf.find(0)
	for i := 1; i < len(attrs); i++ {
		if uf.find(i) != root {
			return JoinPlan{}, apperr.QueryBuildError("attributes cannot be joined")
		}
	}

	plan := JoinPlan{
		Tables:     sortedKeys(neededTables),
		Predicates: sortedKeys(joinPredicates),
	}
	return plan, nil
}

func canonicalPredicate(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
