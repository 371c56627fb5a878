package render

import (
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const headerTimestamp = "2006-01-02T15:04:05"

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func section(title string, lines []string) string {
	return StyledText(title, sectionStyle) + "\n" + strings.Join(lines, "\n")
}

func field(label, value string) string {
	return StyledText(label+":", labelStyle) + " " + value
}

func bullet(text string) string {
	return "  " + StyledText("▸", dimStyle) + " " + text
}

// RenderIndividual renders the detail view of one individual: vital facts,
// names, events, media, family links, notes and edit history. families are
// the families the individual belongs to with links loaded; people resolves
// the names in them.
func RenderIndividual(ind *model.Individual, families []*model.Family, people map[int]*model.Individual, changes []model.Change) string {
	var sections []string

	icon := StyledText(ind.Sex.Icon(), lipgloss.NewStyle().Foreground(ColorFromName(ind.Sex.Color())))
	sections = append(sections, fmt.Sprintf("%s %s  %s", icon, StyledText(ind.GedcomID, boldStyle), StyledText(ind.DisplayName(), boldStyle)))

	var meta []string
	if ind.Sex != "" {
		meta = append(meta, field("Sex", string(ind.Sex)))
	}
	if s := fact(ind.BirthDate, ind.BirthDateApprox, ind.BirthPlace); s != "" {
		meta = append(meta, field("Born", s))
	}
	if s := fact(ind.DeathDate, ind.DeathDateApprox, ind.DeathPlace); s != "" {
		meta = append(meta, field("Died", s))
	}
	if len(meta) > 0 {
		sections = append(sections, strings.Join(meta, "\n"))
	}

	if len(ind.Names) > 1 {
		var lines []string
		for _, n := range ind.Names {
			line := n.Display()
			if n.Type != "" {
				line += StyledText(" ("+n.Type+")", dimStyle)
			}
			lines = append(lines, bullet(line))
		}
		sections = append(sections, section("Names", lines))
	}

	if len(ind.Events) > 0 {
		sections = append(sections, section("Events", eventLines(ind.Events)))
	}
	if len(ind.Media) > 0 {
		sections = append(sections, section("Media", mediaLines(ind.Media)))
	}

	if len(families) > 0 {
		var lines []string
		for _, f := range families {
			lines = append(lines, bullet(fmt.Sprintf("%s %s %s", f.GedcomID, familyTitle(f, people), StyledText("("+relationTo(f, ind.ID)+")", dimStyle))))
		}
		sections = append(sections, section("Families", lines))
	}

	if ind.Notes != "" {
		sections = append(sections, section("Notes", []string{RenderNote(ind.Notes)}))
	}
	if len(changes) > 0 {
		sections = append(sections, renderChanges(changes))
	}

	return strings.Join(sections, "\n\n")
}

// RenderFamily renders the detail view of one family.
func RenderFamily(fam *model.Family, people map[int]*model.Individual, changes []model.Change) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("%s  %s", StyledText(fam.GedcomID, boldStyle), StyledText(familyTitle(fam, people), boldStyle)))

	meta := []string{field("Type", fam.FamilyType)}
	if s := fact(fam.MarriageDate, fam.MarriageDateApprox, fam.MarriagePlace); s != "" {
		meta = append(meta, field("Married", s))
	}
	if s := gedcom.Resolve(fam.DivorceDate, fam.DivorceDateApprox); s != "" {
		meta = append(meta, field("Divorced", s))
	}
	sections = append(sections, strings.Join(meta, "\n"))

	if len(fam.Members) > 0 {
		var lines []string
		for _, m := range fam.Members {
			line := personLine(m.IndividualID, people)
			if m.Role != "" {
				line += StyledText(" ("+string(m.Role)+")", dimStyle)
			}
			lines = append(lines, bullet(line))
		}
		sections = append(sections, section("Members", lines))
	}

	if len(fam.Children) > 0 {
		var lines []string
		for _, c := range fam.Children {
			lines = append(lines, bullet(personLine(c.ChildID, people)))
		}
		sections = append(sections, section(fmt.Sprintf("Children (%d)", len(fam.Children)), lines))
	}

	if len(fam.Events) > 0 {
		sections = append(sections, section("Events", eventLines(fam.Events)))
	}
	if len(fam.Media) > 0 {
		sections = append(sections, section("Media", mediaLines(fam.Media)))
	}
	if fam.Notes != "" {
		sections = append(sections, section("Notes", []string{RenderNote(fam.Notes)}))
	}
	if len(changes) > 0 {
		sections = append(sections, renderChanges(changes))
	}

	return strings.Join(sections, "\n\n")
}

// RenderHeader renders the file header and submitter.
func RenderHeader(h *model.Header, now time.Time) string {
	var sections []string

	source := h.SourceSystemID
	if h.SourceSystemName != "" {
		source += " (" + h.SourceSystemName + ")"
	}
	if h.SourceVersion != "" {
		source += " v" + h.SourceVersion
	}

	pairs := [][2]string{
		{"Source", source},
		{"Corporation", h.SourceCorporation},
		{"Destination", h.Destination},
		{"File", h.FileName},
		{"Created", strings.TrimSpace(h.CreationDate + " " + h.CreationTime)},
		{"GEDCOM", strings.TrimSpace(h.GedcomVersion + " " + h.GedcomForm)},
		{"Charset", h.Charset},
		{"Language", h.Language},
		{"Copyright", h.Copyright},
		{"Imported", ago(h.ImportedAt, now)},
		{"Modified", ago(h.LastModified, now)},
	}
	sections = append(sections, fieldBlock(pairs))

	s := h.Submitter()
	addr := strings.Join(nonEmpty(s.Address, s.City, s.State, s.Postal, s.Country), ", ")
	subm := fieldBlock([][2]string{
		{"ID", s.ID},
		{"Name", s.Name},
		{"Address", addr},
		{"Phone", s.Phone},
		{"Email", s.Email},
		{"Fax", s.Fax},
		{"Web", s.WWW},
	})
	if subm != "" {
		sections = append(sections, StyledText("Submitter", sectionStyle)+"\n"+subm)
	}

	if h.Note != "" {
		sections = append(sections, section("Note", []string{RenderNote(h.Note)}))
	}
	return strings.Join(sections, "\n\n")
}

func fieldBlock(pairs [][2]string) string {
	var lines []string
	for _, p := range pairs {
		if p[1] != "" {
			lines = append(lines, field(p[0], p[1]))
		}
	}
	return strings.Join(lines, "\n")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ago renders a stored timestamp as "2024-03-02T04:05:06 (3 hours ago)". Values
// that do not parse are returned as stored.
func ago(stamp string, now time.Time) string {
	if stamp == "" {
		return ""
	}
	t, err := time.ParseInLocation(headerTimestamp, stamp, time.Local)
	if err != nil {
		return stamp
	}
	return fmt.Sprintf("%s (%s)", stamp, humanize.RelTime(t, now, "ago", "from now"))
}

func familyTitle(f *model.Family, people map[int]*model.Individual) string {
	if f.Notes != "" && !strings.Contains(f.Notes, "\n") {
		return truncate(f.Notes, maxNameWidth*2)
	}
	names := make([]string, 0, len(f.Members))
	for _, m := range f.Members {
		names = append(names, personName(m.IndividualID, people))
	}
	if len(names) == 0 {
		return "Family"
	}
	return "Family of " + strings.Join(names, " & ")
}

func relationTo(f *model.Family, id int) string {
	for _, m := range f.Members {
		if m.IndividualID == id {
			if m.Role != "" {
				return "as " + string(m.Role)
			}
			return "as member"
		}
	}
	return "as child"
}

func personLine(id int, people map[int]*model.Individual) string {
	p, ok := people[id]
	if !ok {
		return personName(id, people)
	}
	line := p.GedcomID + " " + p.DisplayName()
	if b := gedcom.Resolve(p.BirthDate, p.BirthDateApprox); b != "" {
		line += StyledText(" b. "+b, dimStyle)
	}
	return line
}

func eventLines(events []*model.Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		line := StyledText(e.TypeCode, boldStyle)
		if s := fact(e.Date, e.DateApprox, e.Place); s != "" {
			line += " " + s
		}
		if e.Description != "" {
			line += StyledText(" ("+e.Description+")", dimStyle)
		}
		lines = append(lines, bullet(line))
	}
	return lines
}

func mediaLines(media []*model.Media) []string {
	lines := make([]string, 0, len(media))
	for _, m := range media {
		line := m.FilePath
		if m.TypeCode != "" {
			line += " [" + m.TypeCode + "]"
		}
		if m.Description != "" {
			line += StyledText(" "+m.Description, dimStyle)
		}
		lines = append(lines, bullet(line))
	}
	return lines
}

func renderChanges(changes []model.Change) string {
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		var detail string
		switch {
		case c.OldValue != "" && c.NewValue != "":
			detail = fmt.Sprintf("%s -> %s", c.OldValue, c.NewValue)
		case c.NewValue != "":
			detail = fmt.Sprintf("set %s", c.NewValue)
		case c.OldValue != "":
			detail = fmt.Sprintf("cleared %s", c.OldValue)
		}
		lines = append(lines, fmt.Sprintf("  ✎ %s: %s  %s",
			StyledText(c.Field, boldStyle),
			detail,
			StyledText(humanize.Time(c.CreatedAt), timeStyle),
		))
	}
	return section("History", lines)
}
