package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/config"
	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcomio"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	dbKey  contextKey = "db"
	cfgKey contextKey = "cfg"
)

// CmdError wraps an error with a machine-readable error code for structured
// output. Details are listed under the error message.
type CmdError struct {
	Err     error
	Code    output.ErrorCode
	Details []string
}

func (e *CmdError) Error() string { return e.Err.Error() }

func (e *CmdError) Unwrap() error { return e.Err }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

// classify picks the error code for errors coming out of the store, the
// parser and the importer.
func classify(err error) output.ErrorCode {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, gedcomio.ErrNoDatabase):
		return output.ErrNotFound
	case errors.Is(err, db.ErrDuplicateID):
		return output.ErrConflict
	case errors.Is(err, db.ErrInvalid),
		errors.Is(err, gedcomio.ErrEmptySource),
		errors.Is(err, gedcomio.ErrNoRecords),
		errors.Is(err, gedcom.ErrSyntax):
		return output.ErrValidation
	default:
		return output.ErrGeneral
	}
}

// wrapErr prefixes err with what was being done and keeps its code.
func wrapErr(err error, format string, args ...any) *CmdError {
	return cmdErr(fmt.Errorf(format+": %w", append(args, err)...), classify(err))
}

var rootCmd = &cobra.Command{
	Use:     "pedigree",
	Short:   "Local-first genealogy database with GEDCOM import and export",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		user, _ := cmd.Flags().GetString("user")
		cfg, err := config.Resolve(user)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
			cfg.DBPath = dbPath
		}

		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)

		if _, ok := cmd.Annotations["skipDB"]; ok {
			cmd.SetContext(ctx)
			return nil
		}

		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			return cmdErr(
				fmt.Errorf("no database found for user %q, run 'pedigree init' or 'pedigree import' first", cfg.User),
				output.ErrNotFound,
			)
		}

		conn, err := db.OpenReady(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		cmd.SetContext(context.WithValue(ctx, dbKey, conn))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		conn, ok := cmd.Context().Value(dbKey).(*sql.DB)
		if ok && conn != nil {
			return conn.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User whose database to use (default $PEDIGREE_USER or the OS user)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database (overrides --user)")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getDB(cmd *cobra.Command) *sql.DB {
	conn, _ := cmd.Context().Value(dbKey).(*sql.DB)
	return conn
}

// Execute runs the root command and returns an exit code. SIGINT and
// SIGTERM cancel the command context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.Error(ce.Err, ce.Code, ce.Details...)
		}
		return w.Error(err, classify(err))
	}
	return 0
}
