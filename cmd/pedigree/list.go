package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/filter"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

type listResult struct {
	Individuals []*model.Individual `json:"individuals"`
	Total       int                 `json:"total"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List individuals",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		name, _ := cmd.Flags().GetString("name")
		sexes, _ := cmd.Flags().GetStringSlice("sex")
		bornAfter, _ := cmd.Flags().GetInt("born-after")
		bornUntil, _ := cmd.Flags().GetInt("born-until")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		for _, s := range sexes {
			if err := model.ValidateSex(model.Sex(strings.ToUpper(s))); err != nil {
				return cmdErr(err, output.ErrValidation)
			}
		}
		if limit < 0 || offset < 0 {
			return cmdErr(fmt.Errorf("--limit and --offset must not be negative"), output.ErrValidation)
		}

		f := filter.Individuals{
			Name:      name,
			Sexes:     filter.ToStringSet(sexes),
			BornAfter: bornAfter,
			BornUntil: bornUntil,
		}

		people, err := db.ListIndividuals(conn, db.ListOptions{})
		if err != nil {
			return cmdErr(fmt.Errorf("listing individuals: %w", err), output.ErrGeneral)
		}
		people = f.Apply(people)
		total := len(people)

		if offset < len(people) {
			people = people[offset:]
		} else {
			people = nil
		}
		if limit > 0 && limit < len(people) {
			people = people[:limit]
		}
		if people == nil {
			people = []*model.Individual{}
		}

		var message string
		if !w.JSONMode {
			message = render.RenderIndividuals(people)
			if len(people) < total {
				message += fmt.Sprintf("\nShowing %d of %d", len(people), total)
			}
		}
		w.Success(listResult{Individuals: people, Total: total}, message)
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("name", "n", "", "Filter by name substring")
	listCmd.Flags().StringSliceP("sex", "s", nil, "Filter by sex code M, F or U (repeatable)")
	listCmd.Flags().Int("born-after", 0, "Only individuals born in or after this year")
	listCmd.Flags().Int("born-until", 0, "Only individuals born in or before this year")
	listCmd.Flags().Int("limit", 50, "Maximum number of results (0 for all)")
	listCmd.Flags().Int("offset", 0, "Skip this many results")
	rootCmd.AddCommand(listCmd)
}
