package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/gedcomio"
)

var exportCmd = &cobra.Command{
	Use:         "export [file]",
	Short:       "Write the database as a GEDCOM 5.5.1 file",
	Long:        "Write the database as a GEDCOM 5.5.1 file.\n\nWithout a file argument the user's data.ged is overwritten.",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		target := cfg.GedcomPath
		if len(args) == 1 {
			target = args[0]
		}

		res, err := gedcomio.Export(cmd.Context(), cfg.DBPath, target, gedcomio.ExportOptions{BaseDir: cfg.ProjectRoot})
		if err != nil {
			return wrapErr(err, "exporting to %s", target)
		}

		w.Success(res, fmt.Sprintf("Exported %d individuals and %d families to %s", res.Individuals, res.Families, res.Path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
