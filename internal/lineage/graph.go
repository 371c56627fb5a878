// Package lineage treats family links as a parent-to-child graph.
package lineage

import "github.com/ALT-F4-LLC/pedigree/internal/model"

// Node wraps an individual with edges to its recorded children and parents.
type Node struct {
	Individual *model.Individual
	Children   map[int]struct{}
	Parents    map[int]struct{}
}

// Graph is the parent-to-child graph of a family tree. In a consistent tree
// it is acyclic.
type Graph struct {
	Nodes map[int]*Node
}

// Build constructs the graph from individuals and families with their links
// loaded. Every member of a family is a parent of every child of that family.
// Links to individuals not in people are ignored.
func Build(people []*model.Individual, families []*model.Family) *Graph {
	g := &Graph{Nodes: make(map[int]*Node, len(people))}
	for _, p := range people {
		g.Nodes[p.ID] = &Node{
			Individual: p,
			Children:   make(map[int]struct{}),
			Parents:    make(map[int]struct{}),
		}
	}

	for _, f := range families {
		for _, m := range f.Members {
			parent, ok := g.Nodes[m.IndividualID]
			if !ok {
				continue
			}
			for _, c := range f.Children {
				child, ok := g.Nodes[c.ChildID]
				if !ok {
					continue
				}
				parent.Children[c.ChildID] = struct{}{}
				child.Parents[m.IndividualID] = struct{}{}
			}
		}
	}
	return g
}

// Descendants returns the IDs reachable from id through child edges, in
// breadth-first order. id itself is excluded.
func (g *Graph) Descendants(id int) []int {
	return g.walk(id, func(n *Node) map[int]struct{} { return n.Children })
}

// Ancestors returns the IDs reachable from id through parent edges, in
// breadth-first order. id itself is excluded.
func (g *Graph) Ancestors(id int) []int {
	return g.walk(id, func(n *Node) map[int]struct{} { return n.Parents })
}

func (g *Graph) walk(start int, next func(*Node) map[int]struct{}) []int {
	if _, ok := g.Nodes[start]; !ok {
		return nil
	}
	seen := map[int]struct{}{start: {}}
	var out []int

	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, id := range sortedKeys(next(g.Nodes[current])) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			queue = append(queue, id)
		}
	}
	return out
}
