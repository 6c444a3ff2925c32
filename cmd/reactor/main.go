package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	debug     bool
	configDir string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "Run and inspect reactor component trees",
		Long: `reactor drives a reactive component runtime from the command line.

  • demo      render the counter app and click it N times
  • serve     run the live preview server
  • snapshot  render the counter app and store the HTML
  • version   print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&g.configDir, "config", "C", ".", "Directory containing reactor.json or reactor.yaml")

	rootCmd.AddCommand(
		demoCmd(g),
		serveCmd(g),
		snapshotCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// load reads the project config and builds the logger. --debug and the
// config's debug field both select debug level.
func (g *globals) load(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(g.configDir)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if g.debug || cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
