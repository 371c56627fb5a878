package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

var familyCmd = &cobra.Command{
	Use:     "family",
	Short:   "Inspect families",
	Aliases: []string{"fam"},
}

type familyListResult struct {
	Families []*model.Family `json:"families"`
	Total    int             `json:"total"`
}

var familyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List families",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		counts, err := db.CountAll(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("counting families: %w", err), output.ErrGeneral)
		}
		fams, err := db.ListFamilies(conn, db.ListOptions{Limit: limit, Offset: offset})
		if err != nil {
			return cmdErr(fmt.Errorf("listing families: %w", err), output.ErrGeneral)
		}
		if fams == nil {
			fams = []*model.Family{}
		}

		var message string
		if !w.JSONMode {
			people, err := peopleIn(conn, fams...)
			if err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			message = render.RenderFamilies(fams, people)
			if len(fams) < counts.Families {
				message += fmt.Sprintf("\nShowing %d of %d", len(fams), counts.Families)
			}
		}
		w.Success(familyListResult{Families: fams, Total: counts.Families}, message)
		return nil
	},
}

type familyShowResult struct {
	Family  *model.Family  `json:"family"`
	History []model.Change `json:"history"`
}

var familyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a family with members, children and events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		historyLimit, _ := cmd.Flags().GetInt("history")

		fam, err := resolveFamily(conn, args[0])
		if err != nil {
			return err
		}
		if err := db.HydrateFamilyDetails(conn, []*model.Family{fam}); err != nil {
			return cmdErr(fmt.Errorf("loading details: %w", err), output.ErrGeneral)
		}
		people, err := peopleIn(conn, fam)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		changes := []model.Change{}
		if historyLimit > 0 {
			if changes, err = db.GetChanges(conn, model.EntityFamily, fam.ID, historyLimit); err != nil {
				return cmdErr(fmt.Errorf("loading history: %w", err), output.ErrGeneral)
			}
			if changes == nil {
				changes = []model.Change{}
			}
		}

		var message string
		if !w.JSONMode {
			message = render.RenderFamily(fam, people, changes)
		}
		w.Success(familyShowResult{Family: fam, History: changes}, message)
		return nil
	},
}

func init() {
	familyListCmd.Flags().Int("limit", 50, "Maximum number of results (0 for all)")
	familyListCmd.Flags().Int("offset", 0, "Skip this many results")
	familyShowCmd.Flags().Int("history", 10, "Number of recent edits to show (0 to hide)")
	familyCmd.AddCommand(familyListCmd, familyShowCmd)
	rootCmd.AddCommand(familyCmd)
}
