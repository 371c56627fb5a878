package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

// showResult is the JSON shape of `pedigree show`.
type showResult struct {
	Individual *model.Individual `json:"individual"`
	Families   []*model.Family   `json:"families"`
	History    []model.Change    `json:"history"`
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an individual with names, events, families and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		historyLimit, _ := cmd.Flags().GetInt("history")

		ind, err := resolveIndividual(conn, args[0])
		if err != nil {
			return err
		}
		if err := db.HydrateIndividualDetails(conn, []*model.Individual{ind}); err != nil {
			return cmdErr(fmt.Errorf("loading details: %w", err), output.ErrGeneral)
		}

		families, err := db.FamiliesOf(conn, ind.ID)
		if err != nil {
			return cmdErr(fmt.Errorf("loading families: %w", err), output.ErrGeneral)
		}
		people, err := peopleIn(conn, families...)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		var changes []model.Change
		if historyLimit > 0 {
			changes, err = db.GetChanges(conn, model.EntityIndividual, ind.ID, historyLimit)
			if err != nil {
				return cmdErr(fmt.Errorf("loading history: %w", err), output.ErrGeneral)
			}
		}

		if families == nil {
			families = []*model.Family{}
		}
		if changes == nil {
			changes = []model.Change{}
		}

		var message string
		if !w.JSONMode {
			message = render.RenderIndividual(ind, families, people, changes)
		}
		w.Success(showResult{Individual: ind, Families: families, History: changes}, message)
		return nil
	},
}

func init() {
	showCmd.Flags().Int("history", 10, "Number of recent edits to show (0 to hide)")
	rootCmd.AddCommand(showCmd)
}
