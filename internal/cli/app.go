// Package cli is the shopq command line: every analytics tool as a
// subcommand, printing envelopes as JSON or as tables.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shop-insights/internal/analytics"
	"shop-insights/internal/config"
	"shop-insights/internal/dataset"
	"shop-insights/internal/observability"
	"shop-insights/internal/tools"
)

// Version is overridden at build time with -ldflags.
var Version = "1.0.0"

const (
	outputJSON  = "json"
	outputTable = "table"
)

// ErrRejected reports that a tool answered with an error envelope. The
// envelope has already been printed.
var ErrRejected = errors.New("query rejected")

type App struct {
	rootCmd *cobra.Command

	dataDir    string
	configFile string
	output     string
	verbose    bool

	logger   *slog.Logger
	registry *tools.Registry
}

func NewApp() *App {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:           "shopq",
		Short:         "Query e-commerce transaction analytics from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "shopq version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&app.dataDir, "data-dir", "d", "", "Directory holding transactions.csv and customers.csv (default: DATA_DIR or .)")
	rootCmd.PersistentFlags().StringVarP(&app.configFile, "config", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringVarP(&app.output, "output", "o", outputJSON, "Output format: json or table")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Log loader and tool activity to stderr")

	for _, c := range toolCommands {
		rootCmd.AddCommand(app.toolCommand(c))
	}
	rootCmd.AddCommand(app.toolsCommand(), app.callCommand())

	app.rootCmd = rootCmd
	return app
}

// SetOutput redirects standard output and error, for tests.
func (app *App) SetOutput(out, errOut io.Writer) {
	app.rootCmd.SetOut(out)
	app.rootCmd.SetErr(errOut)
}

func (app *App) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

func (app *App) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an Execute error onto a process exit status: 2 for a
// rejected query, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrRejected):
		return 2
	}
	return 1
}

// setup loads configuration and the dataset. Commands that query data run it
// as their PreRunE; help and completion do not need it.
func (app *App) setup(cmd *cobra.Command, _ []string) error {
	if app.output != outputJSON && app.output != outputTable {
		return fmt.Errorf("invalid --output %q, must be json or table", app.output)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if app.configFile != "" {
		if err := config.LoadFile(cfg, app.configFile); err != nil {
			return err
		}
	}
	if app.dataDir != "" {
		cfg.Data.Dir = app.dataDir
	}

	logCfg := config.LoggerConfig{Level: "error", Format: "text"}
	if app.verbose {
		logCfg.Level = "debug"
	}
	app.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), logCfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Data.LoadTimeout)
	defer cancel()

	loader := dataset.NewLoader(dataset.ConfigSource(cfg.Data), dataset.WithLogger(app.logger))
	ds, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	app.registry = tools.NewRegistry(analytics.New(ds), tools.WithLogger(app.logger))
	return nil
}

// run invokes a tool and prints its reply.
func (app *App) run(cmd *cobra.Command, tool string, params []byte) error {
	reply, err := app.registry.Invoke(cmd.Context(), tool, params)
	if err != nil {
		return err
	}

	if err := app.print(cmd.OutOrStdout(), reply); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !reply.Succeeded() {
		return ErrRejected
	}
	return nil
}

func (app *App) print(w io.Writer, v any) error {
	if app.output == outputTable {
		return renderTable(w, v)
	}
	return renderJSON(w, v)
}

// Main runs the CLI with the process arguments and returns the exit status.
func Main(ctx context.Context) int {
	app := NewApp()
	err := app.Execute(ctx)
	if err != nil && !errors.Is(err, ErrRejected) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}
