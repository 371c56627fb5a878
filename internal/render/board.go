package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const (
	maxCardsPerColumn = 10
	minColumnWidth    = 20
	defaultTermWidth  = 100
	cardPadding       = 2 // left+right padding inside cards
)

// BoardOptions configures generation board rendering.
type BoardOptions struct {
	Expand bool // show every card instead of the first maxCardsPerColumn
}

// RenderGenerations renders individuals as a board with one column per
// generation, oldest first. levels holds internal IDs per generation as
// produced by the lineage package; people resolves them.
func RenderGenerations(levels [][]int, people map[int]*model.Individual, opts BoardOptions) string {
	if len(levels) == 0 {
		return EmptyState("No generations to show.", "Import a GEDCOM file with: pedigree import", false)
	}

	if !ColorsEnabled() {
		return renderPlainBoard(levels, people, opts)
	}
	return renderColorBoard(levels, people, opts)
}

// terminalWidth returns the current terminal width, falling back to a default.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

func visibleCards(ids []int, opts BoardOptions) ([]int, int) {
	if opts.Expand || len(ids) <= maxCardsPerColumn {
		return ids, 0
	}
	return ids[:maxCardsPerColumn], len(ids) - maxCardsPerColumn
}

func lifeSpan(p *model.Individual) string {
	born := gedcom.Resolve(p.BirthDate, p.BirthDateApprox)
	died := gedcom.Resolve(p.DeathDate, p.DeathDateApprox)
	if born == "" && died == "" {
		return ""
	}
	return born + " - " + died
}

func renderColorBoard(levels [][]int, people map[int]*model.Individual, opts BoardOptions) string {
	tw := terminalWidth()
	// Account for gaps between columns (1 space each).
	gaps := len(levels) - 1
	colWidth := max((tw-gaps)/len(levels), minColumnWidth)

	// Inner width available for card content (minus border/padding).
	cardContentWidth := max(colWidth-cardPadding-2, 5) // 2 for left+right border chars

	columns := make([]string, 0, len(levels))
	for i, ids := range levels {
		columns = append(columns, renderColorColumn(i+1, ids, people, colWidth, cardContentWidth, opts))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderColorColumn(gen int, ids []int, people map[int]*model.Individual, colWidth, contentWidth int, opts BoardOptions) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Width(colWidth).
		Align(lipgloss.Center)

	header := headerStyle.Render(fmt.Sprintf("GENERATION %d (%d)", gen, len(ids)))

	visible, overflow := visibleCards(ids, opts)
	cards := make([]string, 0, len(visible)+2)
	cards = append(cards, header)
	for _, id := range visible {
		cards = append(cards, renderColorCard(id, people, colWidth, contentWidth))
	}

	if overflow > 0 {
		moreStyle := lipgloss.NewStyle().
			Width(colWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("8"))
		cards = append(cards, moreStyle.Render(fmt.Sprintf("+%d more", overflow)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderColorCard(id int, people map[int]*model.Individual, colWidth, contentWidth int) string {
	p, ok := people[id]
	if !ok {
		p = &model.Individual{ID: id, GedcomID: fmt.Sprintf("#%d", id)}
	}

	icon := lipgloss.NewStyle().Foreground(ColorFromName(p.Sex.Color())).Render(p.Sex.Icon())
	lines := []string{
		fmt.Sprintf("%s %s", icon, p.GedcomID),
		truncate(p.DisplayName(), contentWidth),
	}
	if span := lifeSpan(p); span != "" {
		lines = append(lines, truncate(span, contentWidth))
	}

	cardStyle := lipgloss.NewStyle().
		Width(colWidth-2). // account for outer spacing
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorFromName(p.Sex.Color()))

	return cardStyle.Render(strings.Join(lines, "\n"))
}

// --- Plain text fallback ---

func renderPlainBoard(levels [][]int, people map[int]*model.Individual, opts BoardOptions) string {
	var b strings.Builder

	for i, ids := range levels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== GENERATION %d (%d) ===\n", i+1, len(ids))

		visible, overflow := visibleCards(ids, opts)
		for _, id := range visible {
			p, ok := people[id]
			if !ok {
				fmt.Fprintf(&b, "  #%d\n", id)
				continue
			}
			fmt.Fprintf(&b, "  %s %s", p.GedcomID, truncate(p.DisplayName(), maxNameWidth))
			if span := lifeSpan(p); span != "" {
				fmt.Fprintf(&b, " (%s)", span)
			}
			b.WriteString("\n")
		}
		if overflow > 0 {
			fmt.Fprintf(&b, "  +%d more\n", overflow)
		}
	}

	return b.String()
}
