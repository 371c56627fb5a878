package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

type level int

const (
	levelOK level = iota
	levelInfo
	levelWarn
	levelError
)

type levelStyle struct {
	icon  string
	label string // printed before the message, also without colors
	color lipgloss.Color
	bold  bool
}

var levelStyles = map[level]levelStyle{
	levelOK:    {icon: "✔", color: "2"},
	levelInfo:  {icon: "ℹ", color: "8"},
	levelWarn:  {icon: "⚠", label: "Warning:", color: "3", bold: true},
	levelError: {icon: "✘", label: "Error:", color: "1", bold: true},
}

// line writes one message at the given level. Info text is dimmed along with
// its icon; other levels only color the icon and label.
func line(w io.Writer, l level, msg string) {
	s := levelStyles[l]
	if !render.ColorsEnabled() {
		if s.label != "" {
			msg = s.label + " " + msg
		}
		fmt.Fprintln(w, msg)
		return
	}

	st := lipgloss.NewStyle().Foreground(s.color).Bold(s.bold)
	prefix := st.Render(s.icon)
	if s.label != "" {
		prefix += " " + st.Render(s.label)
	}
	if l == levelInfo {
		msg = st.Render(msg)
	}
	fmt.Fprintf(w, "%s %s\n", prefix, msg)
}

// list writes indented items under a message, at most limit of them when
// limit is positive.
func list(w io.Writer, items []string, limit int) {
	shown := items
	if limit > 0 && len(items) > limit {
		shown = items[:limit]
	}
	for _, item := range shown {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	if rest := len(items) - len(shown); rest > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", rest)
	}
}
