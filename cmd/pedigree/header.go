package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

var headerCmd = &cobra.Command{
	Use:   "header",
	Short: "Show or edit the file header and submitter",
}

var headerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the file header",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		h, err := db.GetOrCreateHeader(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading header: %w", err), output.ErrGeneral)
		}

		var message string
		if !w.JSONMode {
			message = render.RenderHeader(h, time.Now())
		}
		w.Success(h, message)
		return nil
	},
}

var headerSetCmd = &cobra.Command{
	Use:   "set <field=value>...",
	Short: "Set header fields, e.g. submitter_name=\"Ann Lee\"",
	Long: "Set header fields by column name. An empty value clears the field.\n\n" +
		"Protected fields (file_name, creation_date, creation_time, imported_at) are ignored.\n" +
		"With --submitter only submitter contact fields, language, copyright and note are accepted.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		submitterOnly, _ := cmd.Flags().GetBool("submitter")

		updates, err := parseAssignments(args)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		update := db.UpdateHeader
		if submitterOnly {
			update = db.UpdateSubmitter
		}
		h, err := update(conn, updates)
		if err != nil {
			return wrapErr(err, "updating header")
		}

		w.Success(h, fmt.Sprintf("Updated %d header field(s)", len(updates)))
		return nil
	},
}

// parseAssignments turns "key=value" arguments into an update map. Keys are
// lower-cased; a later assignment to the same key wins.
func parseAssignments(args []string) (map[string]any, error) {
	updates := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected field=value", arg)
		}
		updates[key] = value
	}
	return updates, nil
}

func init() {
	headerSetCmd.Flags().Bool("submitter", false, "Only accept submitter fields")
	headerCmd.AddCommand(headerShowCmd, headerSetCmd)
	rootCmd.AddCommand(headerCmd)
}
