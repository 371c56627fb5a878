package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

var lookupTables = map[string]string{
	"sex":          db.LookupSexes,
	"events":       db.LookupEventTypes,
	"media":        db.LookupMediaTypes,
	"family-roles": db.LookupFamilyRoles,
}

func lookupNames() []string {
	names := make([]string, 0, len(lookupTables))
	for k := range lookupTables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var typesCmd = &cobra.Command{
	Use:       "types <sex|events|media|family-roles>",
	Short:     "List the codes accepted for sex, events, media and family roles",
	Args:      cobra.ExactArgs(1),
	ValidArgs: lookupNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		table, ok := lookupTables[args[0]]
		if !ok {
			return cmdErr(
				fmt.Errorf("unknown type list %q: must be one of %s", args[0], strings.Join(lookupNames(), ", ")),
				output.ErrValidation,
			)
		}

		types, err := db.ListLookup(conn, table)
		if err != nil {
			return cmdErr(fmt.Errorf("listing %s: %w", args[0], err), output.ErrGeneral)
		}

		var message string
		if !w.JSONMode {
			message = render.RenderLookup(types)
		}
		w.Success(types, message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
