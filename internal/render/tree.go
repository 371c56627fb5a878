package render

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/pedigree/internal/lineage"
)

// RenderDescendants renders rootID and its descendants as a tree. A person
// reachable along several lines is expanded only at the first occurrence.
func RenderDescendants(g *lineage.Graph, rootID int) string {
	if _, ok := g.Nodes[rootID]; !ok {
		return EmptyState("Individual not found.", "", false)
	}

	seen := make(map[int]bool)
	if !ColorsEnabled() {
		var b strings.Builder
		renderPlainTreeNode(&b, g, rootID, 0, seen)
		return b.String()
	}

	root := tree.Root(treeLabel(g, rootID))
	seen[rootID] = true
	addTreeChildren(root, g, rootID, seen)
	return root.String()
}

func treeLabel(g *lineage.Graph, id int) string {
	p := g.Nodes[id].Individual
	label := p.GedcomID + " " + p.DisplayName()
	if span := lifeSpan(p); span != "" {
		label += " (" + span + ")"
	}
	if !ColorsEnabled() {
		return label
	}
	return lipgloss.NewStyle().Foreground(ColorFromName(p.Sex.Color())).Render(p.Sex.Icon()) + " " + label
}

func childIDs(g *lineage.Graph, id int) []int {
	ids := make([]int, 0, len(g.Nodes[id].Children))
	for c := range g.Nodes[id].Children {
		ids = append(ids, c)
	}
	sort.Ints(ids)
	return ids
}

func addTreeChildren(node *tree.Tree, g *lineage.Graph, id int, seen map[int]bool) {
	for _, child := range childIDs(g, id) {
		if seen[child] {
			node.Child(treeLabel(g, child) + " (see above)")
			continue
		}
		seen[child] = true
		childNode := tree.Root(treeLabel(g, child))
		addTreeChildren(childNode, g, child, seen)
		node.Child(childNode)
	}
}

func renderPlainTreeNode(b *strings.Builder, g *lineage.Graph, id, depth int, seen map[int]bool) {
	indent := strings.Repeat("  ", depth)
	if seen[id] {
		b.WriteString(indent + treeLabel(g, id) + " (see above)\n")
		return
	}
	seen[id] = true
	b.WriteString(indent + treeLabel(g, id) + "\n")
	for _, child := range childIDs(g, id) {
		renderPlainTreeNode(b, g, child, depth+1, seen)
	}
}
