// Package cli wires the sheetsite commands.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/634252452/Sheets2Website/internal/config"
	"github.com/634252452/Sheets2Website/internal/core"
	"github.com/634252452/Sheets2Website/internal/logging"
)

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "sheetsite/no-config"

// runtime is shared by every subcommand. PersistentPreRunE fills it in.
type runtime struct {
	envFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
}

// NewRootCmd creates the sheetsite root command with all subcommands attached.
func NewRootCmd(ver string) *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "sheetsite",
		Short: "Serve a website described by two Google Sheets",
		Long: `sheetsite renders a small website from a Site sheet and a Pages sheet.

The Site sheet holds one row of site settings and points at the Pages sheet
through its webpages_csv_url column. Each Pages row is a page or a post.`,
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&rt.logFormat, "log-format", "", "override LOG_FORMAT (text, json)")

	cmd.AddCommand(
		newServeCmd(rt),
		newFetchCmd(rt),
		newNormalizeCmd(),
		newExportCmd(rt),
		newCacheCmd(rt),
	)

	return cmd
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	if cmd.Annotations[annotationNoConfig] == "true" {
		return nil
	}

	// Overload lets the dotenv file win over inherited variables.
	envLoaded := false
	if rt.envFile != "" {
		err := godotenv.Overload(rt.envFile)
		switch {
		case err == nil:
			envLoaded = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.Logging.Level = rt.logLevel
	}
	if rt.logFormat != "" {
		cfg.Logging.Format = rt.logFormat
	}

	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if envLoaded {
		slog.Debug("loaded env file", "path", rt.envFile)
	}
	slog.Debug("configuration loaded", "config", cfg.String())

	rt.cfg = cfg
	return nil
}

// Execute runs the root command and returns the process exit code. Errors
// with a known cause get a hint line with the user-facing message and code.
func Execute(ver string) int {
	if err := NewRootCmd(ver).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		return 1
	}
	return 0
}
