// Package schemagraph builds an undirected multigraph over a catalog's
// tables, with edges labeled by the foreign key that produced them, and
// answers reachability and shortest-path questions needed by the join
// resolver and the properties builder.
package schemagraph

import (
	"fmt"

	"github.com/relsearch/search-service/internal/catalog"
)

// edge is one side of an undirected connection discovered from a foreign
// key. Label is fixed at construction time from the originating record as
// "attr_self:attr_foreign" and is stored identically on both endpoints —
// it is never swapped to read "attr_foreign:attr_self" when traversed from
// the other side. Callers that need the label oriented a particular way
// must derive that themselves from the endpoint tables.
type edge struct {
	neighbor string
	label    string
}

// Graph is built once per request from a catalog.DbSchema snapshot.
type Graph struct {
	adjacency map[string][]edge
	// order preserves first-seen order of tables, used to break ties
	// deterministically during BFS.
	order []string
}

// ErrTableNotFound is returned when a qualified table name is not present
// in the graph.
type ErrTableNotFound struct {
	Table string
}

func (e *ErrTableNotFound) Error() string {
	return fmt.Sprintf("schemagraph: table %q not found", e.Table)
}

// Build constructs a Graph from a catalog. Every table becomes a node, even
// one with no foreign keys; every foreign key becomes one undirected edge
// between its origin and foreign tables.
func Build(schema catalog.DbSchema) *Graph {
	g := &Graph{adjacency: make(map[string][]edge, len(schema.Tables))}
	for _, t := range schema.Tables {
		g.addNode(t.QualifiedName())
	}
	for _, fk := range schema.ForeignKeys {
		a := fk.Origin.QualifiedTable()
		b := fk.Foreign.QualifiedTable()
		label := fk.Origin.Attribute + ":" + fk.Foreign.Attribute
		g.addNode(a)
		g.addNode(b)
		g.adjacency[a] = append(g.adjacency[a], edge{neighbor: b, label: label})
		g.adjacency[b] = append(g.adjacency[b], edge{neighbor: a, label: label})
	}
	return g
}

func (g *Graph) addNode(qn string) {
	if _, ok := g.adjacency[qn]; !ok {
		g.adjacency[qn] = nil
		g.order = append(g.order, qn)
	}
}

// Has reports whether qn names a table present in the graph.
func (g *Graph) Has(qn string) bool {
	_, ok := g.adjacency[qn]
	return ok
}

// PathTo returns the shortest path from origin to destiny by breadth-first
// search, as a sequence of tables (tables[0] == origin, tables[len-1] ==
// destiny) and the edge label chosen between each consecutive pair
// (len(labels) == len(tables)-1). On no path, both return values are nil.
// origin == destiny returns ([origin], nil) — a present, zero-hop path,
// which is distinct from "no path" and must not be conflated with it.
// Equal-length candidate paths are broken by BFS discovery order, which is
// fixed by the order tables and foreign keys were added in Build — this is
// deterministic for a given catalog but not a canonical notion of
// "shortest" beyond that. Returns ErrTableNotFound if either endpoint is
// absent from the graph.
func (g *Graph) PathTo(origin, destiny string) ([]string, []string, error) {
	if !g.Has(origin) {
		return nil, nil, &ErrTableNotFound{Table: origin}
	}
	if !g.Has(destiny) {
		return nil, nil, &ErrTableNotFound{Table: destiny}
	}
	if origin == destiny {
		return []string{origin}, nil, nil
	}

	type parent struct {
		table string
		label string
	}
	visited := map[string]bool{origin: true}
	parents := map[string]parent{}
	queue := []string{origin}

	found := false
	for i := 0; i < len(queue) && !found; i++ {
		cur := queue[i]
		for _, e := range g.adjacency[cur] {
			if visited[e.neighbor] {
				continue
			}
			visited[e.neighbor] = true
			parents[e.neighbor] = parent{table: cur, label: e.label}
			if e.neighbor == destiny {
				found = true
				break
			}
			queue = append(queue, e.neighbor)
		}
	}
	if !found {
		return nil, nil, nil
	}

	var tables []string
	var labels []string
	cur := destiny
	for cur != origin {
		p := parents[cur]
		tables = append([]string{cur}, tables...)
		labels = append([]string{p.label}, labels...)
		cur = p.table
	}
	tables = append([]string{origin}, tables...)
	return tables, labels, nil
}

// Reachable reports whether destiny is reachable from origin (origin ==
// destiny counts as reachable).
func (g *Graph) Reachable(origin, destiny string) (bool, error) {
	tables, _, err := g.PathTo(origin, destiny)
	if err != nil {
		return false, err
	}
	return tables != nil, nil
}

// JoinableTables returns every table reachable from origin, in discovery
// order, including origin itself, together with the label of the edge each
// was reached by on the BFS shortest-path tree rooted at origin (labels[0]
// is "" for origin itself, since it is reached by no edge). This is the same
// tree PathTo walks to reconstruct a single path; JoinableTables exposes the
// whole tree at once instead of one destination at a time.
func (g *Graph) JoinableTables(origin string) ([]string, []string, error) {
	if !g.Has(origin) {
		return nil, nil, &ErrTableNotFound{Table: origin}
	}
	visited := map[string]bool{origin: true}
	queue := []string{origin}
	tables := []string{origin}
	labels := []string{""}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, e := range g.adjacency[cur] {
			if visited[e.neighbor] {
				continue
			}
			visited[e.neighbor] = true
			queue = append(queue, e.neighbor)
			tables = append(tables, e.neighbor)
			labels = append(labels, e.label)
		}
	}
	return tables, labels, nil
}

// Tables returns every table in the graph, in discovery order.
func (g *Graph) Tables() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
