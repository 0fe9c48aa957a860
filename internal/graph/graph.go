package graph

import (
	"fmt"
	"sort"

	"github.com/ratehub/tariffengine/internal/table"
)

// Graph is an immutable collection of named nodes plus the table registry
// their LOOKUP nodes address. Construct it with NewGraph and AddNode, then
// call Validate once before handing it to an evaluator.
type Graph struct {
	Product string
	Version string
	Currency string

	nodes  map[string]*Node
	order  []string // insertion order, preserved for deterministic iteration
	tables *table.Registry
}

// NewGraph creates an empty graph for the given product/version/currency,
// backed by tables for LOOKUP resolution.
func NewGraph(product, version, currency string, tables *table.Registry) *Graph {
	return &Graph{
		Product:  product,
		Version:  version,
		Currency: currency,
		nodes:    make(map[string]*Node),
		tables:   tables,
	}
}

// AddNode registers n. Its shape is validated immediately (required
// fields for its kind); cross-node reference and cycle checks happen in
// Validate, once the whole graph is assembled.
func (g *Graph) AddNode(n *Node) error {
	if n.Name == "" {
		return fmt.Errorf("graph: node has no name")
	}
	if _, exists := g.nodes[n.Name]; exists {
		return fmt.Errorf("graph: duplicate node name %q", n.Name)
	}
	if err := n.validateShape(); err != nil {
		return err
	}
	g.nodes[n.Name] = n
	g.order = append(g.order, n.Name)
	return nil
}

// Get returns the node registered under name.
func (g *Graph) Get(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Tables returns the graph's table registry.
func (g *Graph) Tables() *table.Registry {
	return g.tables
}

// NodeView is a read-only summary of a node, for visualization tooling:
// its name, kind, and the names of the nodes it reads from.
type NodeView struct {
	Name string
	Kind Kind
	Deps []string
}

// Nodes returns every node in the graph in insertion order, each with its
// resolved dependency list. It never mutates the graph and is the entry
// point diagram/report tools walk.
func (g *Graph) Nodes() []NodeView {
	views := make([]NodeView, 0, len(g.order))
	for _, name := range g.order {
		n := g.nodes[name]
		views = append(views, NodeView{Name: n.Name, Kind: n.Kind, Deps: n.dependencies()})
	}
	return views
}

// color marks DFS visitation state for cycle detection: white (unvisited),
// gray (on the current path), black (fully explored).
type color int

const (
	white color = iota
	gray
	black
)

// Validate checks that every node reference resolves to a node that
// exists and that the graph contains no cycle. It collects every
// unresolved reference it finds before reporting, rather than stopping at
// the first one; a cycle, once found, is reported on its own since the
// traversal that found it cannot safely continue.
func (g *Graph) Validate() error {
	var unresolved []error
	for _, name := range g.order {
		n := g.nodes[name]
		for _, dep := range n.dependencies() {
			if _, ok := g.nodes[dep]; !ok {
				unresolved = append(unresolved, fmt.Errorf("node %q references unknown node %q", n.Name, dep))
			}
		}
		if n.Kind == KindLookup {
			if _, ok := g.tables.Get(n.TableName); !ok {
				unresolved = append(unresolved, fmt.Errorf("node %q references unregistered table %q", n.Name, n.TableName))
			}
		}
	}
	if len(unresolved) > 0 {
		return joinErrors(unresolved)
	}

	colors := make(map[string]color, len(g.nodes))
	var path []string
	var visit func(name string) error
	visit = func(name string) error {
		switch colors[name] {
		case black:
			return nil
		case gray:
			cyclePath := append(append([]string(nil), path...), name)
			return fmt.Errorf("cycle detected: %v", cyclePath)
		}
		colors[name] = gray
		path = append(path, name)
		n := g.nodes[name]
		for _, dep := range n.dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		colors[name] = black
		return nil
	}

	names := make([]string, 0, len(g.order))
	names = append(names, g.order...)
	sort.Strings(names)
	for _, name := range names {
		if colors[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinErrors(errs []error) error {
	msg := fmt.Sprintf("graph: %d validation error(s):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
