package compiler

import (
	"fmt"
	"strings"

	"github.com/AddioElectronics/enumex/internal/ir"
)

// InheritanceCycle represents enums that (transitively) derive from
// themselves. Unlike rule cycles these are always errors: a type cannot be
// built before its parent exists.
type InheritanceCycle struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
}

func (c InheritanceCycle) Error() string { return c.Message }

// AnalyzeInheritance orders declarations so every enum follows the enums it
// derives from, and reports inheritance cycles.
//
// The algorithm:
//  1. Build enum → declared-base graph (built-in bases are leaves and are skipped)
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Each SCC with size > 1 or a self-loop is a cycle; the rest are emitted
//     in Tarjan's completion order, which places bases before derived enums
//
// Traversal follows declaration order, so the result is deterministic.
// Enums caught in a cycle are left out of the order.
func AnalyzeInheritance(decls []ir.EnumDecl) ([]string, []InheritanceCycle) {
	if len(decls) == 0 {
		return []string{}, nil
	}

	graph, nodes := buildInheritanceGraph(decls)
	sccs := tarjanSCC(graph, nodes)

	order := []string{}
	var cycles []InheritanceCycle
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
			continue
		}
		order = append(order, scc[0])
	}
	return order, cycles
}

// inheritanceGraph maps enum name → declared enums it derives from.
type inheritanceGraph map[string][]string

// buildInheritanceGraph returns the graph together with the node visit order.
func buildInheritanceGraph(decls []ir.EnumDecl) (inheritanceGraph, []string) {
	graph := make(inheritanceGraph, len(decls))
	nodes := make([]string, 0, len(decls))
	for _, d := range decls {
		if _, seen := graph[d.Name]; seen {
			continue
		}
		graph[d.Name] = []string{}
		nodes = append(nodes, d.Name)
	}

	for _, d := range decls {
		for _, b := range d.Bases {
			if _, declared := graph[b]; declared {
				graph[d.Name] = append(graph[d.Name], b)
			}
		}
	}
	return graph, nodes
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph inheritanceGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// SCCs are returned in completion order: every SCC appears after the SCCs it
// has edges into.
func tarjanSCC(graph inheritanceGraph, nodes []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// sccToCycle converts an SCC to an InheritanceCycle.
func sccToCycle(scc []string, graph inheritanceGraph) InheritanceCycle {
	if len(scc) == 1 {
		name := scc[0]
		return InheritanceCycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("enum %s derives from itself", name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return InheritanceCycle{
		Path:    path,
		Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph inheritanceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
