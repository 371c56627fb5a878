package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const (
	maxNameWidth  = 32
	maxPlaceWidth = 24
)

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// ColorFromName maps model color name strings to lipgloss colors.
func ColorFromName(name string) lipgloss.Color {
	switch name {
	case "red":
		return lipgloss.Color("9")
	case "yellow":
		return lipgloss.Color("11")
	case "blue":
		return lipgloss.Color("12")
	case "green":
		return lipgloss.Color("10")
	case "magenta":
		return lipgloss.Color("13")
	case "gray":
		return lipgloss.Color("8")
	default:
		return lipgloss.Color("15")
	}
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// fact joins a GEDCOM-style date and a place, e.g. "15 JAN 1950, Boston".
func fact(exact, approx, place string) string {
	date := gedcom.Resolve(exact, approx)
	switch {
	case date != "" && place != "":
		return date + ", " + place
	case date != "":
		return date
	default:
		return place
	}
}

func sexLabel(s model.Sex) string {
	if s == "" {
		return ""
	}
	return s.Icon() + " " + string(s)
}

// personName resolves a display name, falling back to the internal ID.
func personName(id int, people map[int]*model.Individual) string {
	if p, ok := people[id]; ok {
		return p.DisplayName()
	}
	return fmt.Sprintf("Individual #%d", id)
}

// renderGrid draws a bordered table when colors are enabled and an aligned
// plain-text table otherwise. style may be nil.
func renderGrid(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	if !ColorsEnabled() {
		return renderPlainGrid(headers, rows)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if style != nil && row >= 0 && row < len(rows) {
				return style(row, col).Inherit(s)
			}
			return s
		})
	return t.Render()
}

func renderPlainGrid(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)+2))
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	b.WriteString(strings.Repeat("-", total-2))
	b.WriteString("\n")
	for _, r := range rows {
		writeRow(r)
	}
	return b.String()
}

// RenderIndividuals renders individuals as a table.
func RenderIndividuals(people []*model.Individual) string {
	if len(people) == 0 {
		return EmptyState("No individuals found.", "Import a GEDCOM file with: pedigree import", false)
	}

	headers := []string{"ID", "Name", "Sex", "Born", "Died"}
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		rows = append(rows, []string{
			p.GedcomID,
			truncate(p.DisplayName(), maxNameWidth),
			sexLabel(p.Sex),
			truncate(fact(p.BirthDate, p.BirthDateApprox, p.BirthPlace), maxPlaceWidth),
			truncate(fact(p.DeathDate, p.DeathDateApprox, p.DeathPlace), maxPlaceWidth),
		})
	}

	return renderGrid(headers, rows, func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle()
		switch col {
		case 1:
			return s.Bold(true)
		case 2:
			return s.Foreground(ColorFromName(people[row].Sex.Color()))
		}
		return s
	})
}

// RenderFamilies renders families as a table. people resolves member and
// child names; unknown IDs are shown by number.
func RenderFamilies(families []*model.Family, people map[int]*model.Individual) string {
	if len(families) == 0 {
		return EmptyState("No families found.", "Import a GEDCOM file with: pedigree import", false)
	}

	headers := []string{"ID", "Type", "Members", "Children", "Married"}
	rows := make([][]string, 0, len(families))
	for _, f := range families {
		members := make([]string, 0, len(f.Members))
		for _, m := range f.Members {
			members = append(members, personName(m.IndividualID, people))
		}
		rows = append(rows, []string{
			f.GedcomID,
			f.FamilyType,
			truncate(strings.Join(members, " & "), maxNameWidth*2),
			fmt.Sprintf("%d", len(f.Children)),
			truncate(fact(f.MarriageDate, f.MarriageDateApprox, f.MarriagePlace), maxPlaceWidth),
		})
	}

	return renderGrid(headers, rows, func(row, col int) lipgloss.Style {
		if col == 2 {
			return lipgloss.NewStyle().Bold(true)
		}
		return lipgloss.NewStyle()
	})
}

// RenderLookup renders a lookup table's code/description pairs.
func RenderLookup(types []model.LookupType) string {
	if len(types) == 0 {
		return EmptyState("No types defined.", "", false)
	}
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{t.Code, t.Description})
	}
	return renderGrid([]string{"Code", "Description"}, rows, nil)
}

// RenderCounts renders entity totals as one line, e.g.
// "1,204 individuals, 398 families, 2,051 events, 17 media".
func RenderCounts(individuals, families, events, media int) string {
	return fmt.Sprintf("%s individuals, %s families, %s events, %s media",
		humanize.Comma(int64(individuals)),
		humanize.Comma(int64(families)),
		humanize.Comma(int64(events)),
		humanize.Comma(int64(media)),
	)
}
