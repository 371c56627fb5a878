package main

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/config"
	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

type configInfo struct {
	User          string   `json:"user"`
	Users         []string `json:"users"`
	HomeDir       string   `json:"home_dir"`
	DBPath        string   `json:"db_path"`
	GedcomPath    string   `json:"gedcom_path"`
	MediaDir      string   `json:"media_dir"`
	DBSizeBytes   int64    `json:"db_size_bytes"`
	SchemaVersion int      `json:"schema_version"`
	HomeEnv       string   `json:"pedigree_home_env"`
	HomeEnvSet    bool     `json:"pedigree_home_set"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display resolved paths and users",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		users, err := cfg.Users()
		if err != nil {
			return cmdErr(fmt.Errorf("listing users: %w", err), output.ErrGeneral)
		}
		if users == nil {
			users = []string{}
		}

		info := configInfo{
			User:       cfg.User,
			Users:      users,
			HomeDir:    cfg.HomeDir,
			DBPath:     cfg.DBPath,
			GedcomPath: cfg.GedcomPath,
			MediaDir:   cfg.MediaDir,
			HomeEnv:    os.Getenv(config.EnvHome),
			HomeEnvSet: cfg.EnvVarSet,
		}

		stat, err := os.Stat(cfg.DBPath)
		if err != nil {
			w.Warn("No database for %s. Run 'pedigree init' or 'pedigree import' to create one.", cfg.User)
			w.Success(info, formatConfigHuman(info, true))
			return nil
		}
		info.DBSizeBytes = stat.Size()

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		if info.SchemaVersion, err = db.SchemaVersion(conn); err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		w.Success(info, formatConfigHuman(info, false))
		return nil
	},
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatConfigHuman(info configInfo, notFound bool) string {
	dbPath := info.DBPath
	if notFound {
		dbPath = fmt.Sprintf("%s (not found)", info.DBPath)
	}

	lines := fmt.Sprintf("User:            %s\n", info.User)
	lines += fmt.Sprintf("Database path:   %s\n", dbPath)
	if !notFound {
		lines += fmt.Sprintf("Database size:   %s\n", humanize.Bytes(uint64(info.DBSizeBytes)))
		lines += fmt.Sprintf("Schema version:  %d\n", info.SchemaVersion)
	}
	lines += fmt.Sprintf("GEDCOM file:     %s\n", info.GedcomPath)
	lines += fmt.Sprintf("Media folder:    %s\n", info.MediaDir)
	if len(info.Users) > 0 {
		lines += fmt.Sprintf("Users:           %s\n", strings.Join(info.Users, ", "))
	}
	lines += fmt.Sprintf("PEDIGREE_HOME:   %s", formatEnvValue(info.HomeEnv))

	return lines
}

func init() {
	rootCmd.AddCommand(configCmd)
}
