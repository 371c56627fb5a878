package lineage

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError is returned when someone is recorded as their own ancestor.
// GedcomIDs lists every individual on or downstream of a cycle.
type CycleError struct {
	IDs       []int
	GedcomIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("ancestry cycle among individuals: %s", strings.Join(e.GedcomIDs, ", "))
}

// Generations layers the graph with Kahn's algorithm. Generation 0 holds
// individuals with no recorded parents; generation N holds individuals whose
// parents all sit in earlier generations. IDs within a generation are sorted.
// When the graph has a cycle, the generations resolved so far are returned
// together with a CycleError.
func (g *Graph) Generations() ([][]int, error) {
	inDegree := make(map[int]int, len(g.Nodes))
	var queue []int
	for id, node := range g.Nodes {
		inDegree[id] = len(node.Parents)
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Ints(queue)

	var levels [][]int
	processed := 0
	for len(queue) > 0 {
		levels = append(levels, queue)
		processed += len(queue)

		var next []int
		for _, id := range queue {
			for child := range g.Nodes[id].Children {
				inDegree[child]--
				if inDegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		sort.Ints(next)
		queue = next
	}

	if processed != len(g.Nodes) {
		cerr := &CycleError{}
		for id, deg := range inDegree {
			if deg > 0 {
				cerr.IDs = append(cerr.IDs, id)
			}
		}
		sort.Ints(cerr.IDs)
		for _, id := range cerr.IDs {
			cerr.GedcomIDs = append(cerr.GedcomIDs, g.Nodes[id].Individual.GedcomID)
		}
		return levels, cerr
	}
	return levels, nil
}

// Depths maps each individual resolved by Generations to its generation.
func Depths(levels [][]int) map[int]int {
	out := make(map[int]int)
	for depth, level := range levels {
		for _, id := range level {
			out[id] = depth
		}
	}
	return out
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
