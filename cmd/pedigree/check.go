package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/lineage"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

type checkResult struct {
	Individuals   int            `json:"individuals"`
	Families      int            `json:"families"`
	Generations   int            `json:"generations"`
	Depths        map[string]int `json:"depths"`
	Cycle         []string       `json:"cycle"`
	Unlinked      []string       `json:"unlinked"`
	EmptyFamilies []string       `json:"empty_families"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the family graph for ancestry cycles and loose records",
	Long: "Check the family graph for ancestry cycles and loose records.\n\n" +
		"Exits with a validation error when someone is recorded as their own ancestor.",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		g, families, err := loadGraph(conn)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		levels, genErr := g.Generations()
		var cycle *lineage.CycleError
		if genErr != nil && !errors.As(genErr, &cycle) {
			return cmdErr(genErr, output.ErrGeneral)
		}

		result := checkResult{
			Individuals:   len(g.Nodes),
			Families:      len(families),
			Generations:   len(levels),
			Depths:        make(map[string]int, len(g.Nodes)),
			Cycle:         []string{},
			Unlinked:      []string{},
			EmptyFamilies: []string{},
		}
		for id, depth := range lineage.Depths(levels) {
			result.Depths[g.Nodes[id].Individual.GedcomID] = depth
		}
		if cycle != nil {
			result.Cycle = cycle.GedcomIDs
		}

		linked := make(map[int]bool)
		for _, f := range families {
			if len(f.Members) == 0 && len(f.Children) == 0 {
				result.EmptyFamilies = append(result.EmptyFamilies, f.GedcomID)
			}
			for _, m := range f.Members {
				linked[m.IndividualID] = true
			}
			for _, c := range f.Children {
				linked[c.ChildID] = true
			}
		}
		for _, level := range levels {
			for _, id := range level {
				if !linked[id] {
					result.Unlinked = append(result.Unlinked, g.Nodes[id].Individual.GedcomID)
				}
			}
		}

		sort.Strings(result.Unlinked)

		w.Diagnostics("Individuals in no family", result.Unlinked, shownDiagnostics)
		w.Diagnostics("Families with no members or children", result.EmptyFamilies, shownDiagnostics)

		if cycle != nil {
			ce := cmdErr(cycle, output.ErrValidation)
			for _, id := range cycle.IDs {
				ce.Details = append(ce.Details, g.Nodes[id].Individual.GedcomID+" "+g.Nodes[id].Individual.DisplayName())
			}
			return ce
		}

		var message string
		if !w.JSONMode {
			message = fmt.Sprintf("No ancestry cycles: %d individuals in %d generation(s)", result.Individuals, result.Generations)
			if n := len(result.Unlinked) + len(result.EmptyFamilies); n > 0 {
				message += fmt.Sprintf(", %d loose record(s)", n)
			}
		}
		w.Success(result, message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
