package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

type statsResult struct {
	db.Counts
	BySex        map[string]int `json:"by_sex"`
	ByFamilyType map[string]int `json:"by_family_type"`
	ImportedAt   string         `json:"imported_at,omitempty"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics for the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		counts, err := db.CountAll(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("counting records: %w", err), output.ErrGeneral)
		}
		people, err := db.ListIndividuals(conn, db.ListOptions{})
		if err != nil {
			return cmdErr(fmt.Errorf("listing individuals: %w", err), output.ErrGeneral)
		}
		families, err := db.ListFamilies(conn, db.ListOptions{})
		if err != nil {
			return cmdErr(fmt.Errorf("listing families: %w", err), output.ErrGeneral)
		}

		result := statsResult{
			Counts:       counts,
			BySex:        make(map[string]int),
			ByFamilyType: make(map[string]int),
		}
		for _, p := range people {
			sex := string(p.Sex)
			if sex == "" {
				sex = "U"
			}
			result.BySex[sex]++
		}
		for _, f := range families {
			result.ByFamilyType[f.FamilyType]++
		}

		h, err := db.GetHeader(conn)
		switch {
		case err == nil:
			result.ImportedAt = h.ImportedAt
		case !errors.Is(err, db.ErrNotFound):
			return cmdErr(fmt.Errorf("reading header: %w", err), output.ErrGeneral)
		}

		var message string
		if !w.JSONMode {
			message = formatStatsHuman(result)
		}
		w.Success(result, message)
		return nil
	},
}

func formatStatsHuman(r statsResult) string {
	bold := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(render.StyledText(render.RenderCounts(r.Individuals, r.Families, r.Events, r.Media), bold))
	b.WriteString("\n")
	writeBreakdown(&b, "By sex", r.BySex)
	writeBreakdown(&b, "By family type", r.ByFamilyType)
	if r.ImportedAt != "" {
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", r.ImportedAt, time.Local); err == nil {
			fmt.Fprintf(&b, "\nLast import: %s (%s)", r.ImportedAt, humanize.Time(t))
		} else {
			fmt.Fprintf(&b, "\nLast import: %s", r.ImportedAt)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeBreakdown(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "  %-12s %s\n", k, humanize.Comma(int64(counts[k])))
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
