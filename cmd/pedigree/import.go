package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcomio"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

const shownDiagnostics = 5

type importResult struct {
	*gedcomio.ImportResult
	Source      string   `json:"source"`
	DBPath      string   `json:"db_path"`
	Unsupported []string `json:"unsupported"`
}

var importCmd = &cobra.Command{
	Use:         "import [file]",
	Short:       "Replace the database with the contents of a GEDCOM file",
	Long:        "Replace the database with the contents of a GEDCOM file.\n\nThe existing database is backed up next to itself first. Without a file argument the user's data.ged is imported.",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		source := cfg.GedcomPath
		if len(args) == 1 {
			source = args[0]
		}
		yes, _ := cmd.Flags().GetBool("yes")
		noBackup, _ := cmd.Flags().GetBool("no-backup")

		if !yes && !w.JSONMode {
			proceed, err := confirmReplace(cfg.DBPath)
			if err != nil {
				return err
			}
			if !proceed {
				w.Info("Cancelled.")
				return nil
			}
		}

		res, err := gedcomio.Import(cmd.Context(), source, cfg.DBPath, gedcomio.ImportOptions{NoBackup: noBackup})
		if err != nil {
			return wrapErr(err, "importing %s", source)
		}

		unsupported := make([]string, 0, len(res.Unsupported))
		for _, d := range res.Unsupported {
			unsupported = append(unsupported, d.String())
		}

		if res.BackupPath != "" {
			w.Info("Backed up previous database to %s", res.BackupPath)
		}
		w.Diagnostics("Unsupported tags skipped", unsupported, shownDiagnostics)
		w.Success(importResult{
			ImportResult: res,
			Source:       source,
			DBPath:       cfg.DBPath,
			Unsupported:  unsupported,
		}, "Imported "+render.RenderCounts(res.Individuals, res.Families, res.Events, res.Media))
		return nil
	},
}

// confirmReplace asks before an import wipes a database that holds records.
// An absent or empty database needs no confirmation. Without a terminal to
// ask on, replacing records requires --yes.
func confirmReplace(dbPath string) (bool, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return true, nil
	}
	conn, err := db.Open(dbPath)
	if err != nil {
		return false, cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
	}
	counts, err := db.CountAll(conn)
	conn.Close()
	if err != nil || counts.Individuals+counts.Families == 0 {
		// No schema yet means nothing to lose.
		return true, nil
	}
	summary := render.RenderCounts(counts.Individuals, counts.Families, counts.Events, counts.Media)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, cmdErr(fmt.Errorf("%s would replace %s; pass --yes to confirm", dbPath, summary), output.ErrValidation)
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("This will replace %s. Continue?", summary)).
				Affirmative("Yes, replace all data").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
	}
	return confirmed, nil
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "Replace existing data without asking")
	importCmd.Flags().Bool("no-backup", false, "Do not copy the existing database before replacing it")
	rootCmd.AddCommand(importCmd)
}
