package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

type initResult struct {
	User          string `json:"user"`
	Path          string `json:"path"`
	DBPath        string `json:"db_path"`
	SchemaVersion int    `json:"schema_version"`
	Created       bool   `json:"created"`
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create an empty database for a user",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		_, statErr := os.Stat(cfg.DBPath)
		existed := statErr == nil

		if err := cfg.EnsureDirs(); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating directory: %w", err), output.ErrGeneral)
		}

		conn, err := db.OpenReady(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		schemaVersion, err := db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		result := initResult{
			User:          cfg.User,
			Path:          cfg.UserDir,
			DBPath:        cfg.DBPath,
			SchemaVersion: schemaVersion,
			Created:       !existed,
		}

		if existed {
			w.Warn("Database already exists at %s", cfg.DBPath)
			w.Success(result, "Database already initialized")
			return nil
		}

		w.Success(result, fmt.Sprintf("Initialized database for %s", cfg.User))
		w.Info("Database: %s", cfg.DBPath)
		w.Info("Media folder: %s", cfg.MediaDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
