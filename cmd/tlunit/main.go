// Command tlunit finds the translatable strings in Foundry VTT module
// scripts and data files, translates them and writes them back.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// app carries the global flags and output streams shared by subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	jsonOut    bool
	verbose    bool
	configPath string

	logger zerolog.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           tlunit.Name,
		Short:         tlunit.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := zerolog.InfoLevel
			if a.verbose {
				level = zerolog.DebugLevel
			}
			a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}).
				Level(level).
				With().Timestamp().Logger()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.BoolVar(&a.jsonOut, "json", false, "Write results as JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")
	flags.StringVar(&a.configPath, "config", "", "Project file (default: ./"+config.DefaultFile+" if present)")

	root.AddCommand(
		a.scanCmd(),
		a.patchCmd(),
		a.flattenCmd(),
		a.unflattenCmd(),
		a.bilingualCmd(),
		a.classifyCmd(),
		a.blacklistCmd(),
		a.translateCmd(),
		a.tmCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if a.jsonOut {
				return a.writeJSON(map[string]string{
					"name":       tlunit.Name,
					"version":    tlunit.FullVersion(),
					"commit":     tlunit.GitCommit,
					"build_date": tlunit.BuildDate,
				})
			}
			fmt.Fprintf(a.stdout, "%s %s\n", tlunit.Name, tlunit.FullVersion())
			if tlunit.GitCommit != "unknown" && tlunit.GitCommit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", tlunit.GitCommit)
			}
			if tlunit.BuildDate != "unknown" && tlunit.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", tlunit.BuildDate)
			}
			return nil
		},
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(a.configPath)
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.logger.Debug().Str("file", path).Int("bytes", len(data)).Msg("written")
	return nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
