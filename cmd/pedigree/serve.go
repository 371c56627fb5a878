package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/api"
	"github.com/ALT-F4-LLC/pedigree/internal/config"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

const defaultAddr = "127.0.0.1:8000"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the database over a REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getCfg(cmd)
		conn := getDB(cmd)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = os.Getenv(config.EnvAddr)
		}
		if addr == "" {
			addr = defaultAddr
		}
		debug, _ := cmd.Flags().GetBool("debug")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		logger.Info("serving database", "user", cfg.User, "db", cfg.DBPath)

		srv := api.New(conn, api.Options{Logger: logger})
		if err := srv.Run(cmd.Context(), addr); err != nil {
			return cmdErr(fmt.Errorf("serving on %s: %w", addr, err), output.ErrGeneral)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default $PEDIGREE_ADDR or "+defaultAddr+")")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}
