// Package cli implements the vizboard command line: the dashboard's
// upload-and-render pipeline run against local CSV files.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/vizboard/internal/config"
	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/logging"
	"github.com/JonMunkholm/vizboard/internal/store"
)

// app holds state shared by the subcommands of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings *Settings
	cfg      *config.Config
}

// NewRootCommand builds the vizboard command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "vizboard",
		Short:         "Render CSV visualization dashboards from the command line",
		Long:          `vizboard parses a CSV file the way the web dashboard does, reports its columns and KPIs, and writes the chart battery to image files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default is ./vizboard.yaml)")
	f.String("variant", "", "chart battery: full or simple")
	f.Int("width", 0, "chart width in pixels")
	f.Int("height", 0, "chart height in pixels")
	f.Int("workers", 0, "charts rendered concurrently")
	f.Int("max-rows", 0, "maximum data rows parsed")
	f.String("log-level", "", "log level: debug, info, warn, error")
	for key, flag := range map[string]string{
		"variant":   "variant",
		"width":     "width",
		"height":    "height",
		"workers":   "workers",
		"max_rows":  "max-rows",
		"log_level": "log-level",
	} {
		if err := a.v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(newInspectCommand(a), newRenderCommand(a), newPresetCommand(a))
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}

func (a *app) load() error {
	s, err := LoadSettings(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	cfg, err := s.Config()
	if err != nil {
		return err
	}
	a.settings = s
	a.cfg = cfg

	// stdout carries command output, logs go to stderr.
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	return nil
}

// upload parses path through a private in-memory session and returns the
// service holding it with the session ID.
func (a *app) upload(ctx context.Context, path string) (*core.Service, string, *core.DatasetSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > a.cfg.Upload.MaxFileSize {
		return nil, "", nil, fmt.Errorf("%w: %s is %d bytes", core.ErrFileTooLarge, path, len(data))
	}

	svc, err := core.NewService(a.cfg, store.NewMemory(a.cfg.Session.TTL), nil)
	if err != nil {
		return nil, "", nil, err
	}
	sessionID := uuid.NewString()
	summary, err := svc.Upload(ctx, sessionID, filepath.Base(path), data)
	if err != nil {
		return nil, "", nil, err
	}
	return svc, sessionID, summary, nil
}
