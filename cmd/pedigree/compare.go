package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

type compareResult struct {
	Expected  string        `json:"expected"`
	Actual    string        `json:"actual"`
	Identical bool          `json:"identical"`
	Diffs     []gedcom.Diff `json:"diffs"`
}

var compareCmd = &cobra.Command{
	Use:   "compare <expected> <actual>",
	Short: "Compare two GEDCOM files, ignoring export timestamps and file names",
	Long: "Compare two GEDCOM files line by line.\n\n" +
		"HEAD DATE, TIME and FILE lines are skipped, as are expected lines containing @SKIP@. " +
		"Up to ten differences are reported and the command fails when any are found.",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		diffs, err := gedcom.CompareFiles(args[0], args[1])
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		if len(diffs) > 0 {
			ce := cmdErr(fmt.Errorf("%s and %s differ", args[0], args[1]), output.ErrValidation)
			for _, d := range diffs {
				ce.Details = append(ce.Details, d.String())
			}
			return ce
		}

		getWriter(cmd).Success(compareResult{
			Expected:  args[0],
			Actual:    args[1],
			Identical: true,
			Diffs:     []gedcom.Diff{},
		}, "Files are equivalent")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
