/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fulmenhq/ncbisort/internal/layout"
	"github.com/fulmenhq/ncbisort/internal/manifest"
	"github.com/fulmenhq/ncbisort/internal/species"
	"github.com/fulmenhq/ncbisort/pkg/buildinfo"
	"github.com/fulmenhq/ncbisort/pkg/config"
	"github.com/fulmenhq/ncbisort/pkg/exitcode"
	"github.com/fulmenhq/ncbisort/pkg/logger"
	"github.com/fulmenhq/ncbisort/pkg/safeio"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ncbisort --ncbi <ncbi_dataset> --target <dir>",
		Short: "Sort an NCBI Datasets genome download by species and accession",
		Long: `ncbisort takes an unzipped NCBI Datasets download and copies it into
<target>/<species>.<taxId>/<accession>/, keeping the genome (.fna) and
annotation (.gff) files and writing <accession>.info.csv with the
assembly's flattened metadata.

A download suitable for sorting can be fetched with:
   datasets download genome taxon 2698737 --assembly-level chromosome,complete \
       --annotated --reference --include genome,gff3

Examples:
   ncbisort --ncbi ncbi_dataset --target genomes   # Sort a download
   ncbisort inspect --ncbi ncbi_dataset            # Show flattened manifest
   ncbisort version                                # Show version`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		RunE: runSort,
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String(config.KeyConfig, "", "Optional config file providing ncbi/target (yaml, json or toml)")

	cmd.Flags().String(config.KeyNCBI, "", "Unzipped ncbi folder (generally called ncbi_dataset)")
	cmd.Flags().String(config.KeyTarget, "", "The folder to populate with species folders")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("ncbisort {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newInspectCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with a code derived from the error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCodeFor(err)
		logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
		os.Exit(code)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

func runSort(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), config.KeyNCBI, config.KeyTarget)
	if err != nil {
		return err
	}
	return sortDownload(cmd.Context(), cfg, cmd.OutOrStdout())
}

// sortDownload loads the manifest under cfg.NCBIRoot and sorts every
// assembly into cfg.Target, printing one confirmation line per accession to out.
func sortDownload(ctx context.Context, cfg config.Config, out io.Writer) error {
	source := osfs.New(cfg.NCBIRoot())
	target := osfs.New(cfg.Target())

	table, err := manifest.Load(source, manifest.ReportPath)
	if err != nil {
		return err
	}
	fields := []logger.Field{
		logger.String("ncbi", cfg.NCBIRoot()),
		logger.String("target", cfg.Target()),
		logger.Int("assemblies", table.Len()),
	}
	if cfg.ConfigFile() != "" {
		fields = append(fields, logger.String("config", cfg.ConfigFile()))
	}
	logger.Info("Sorting download", fields...)

	sum, err := layout.NewWalker(source, target, out).Run(ctx, table)
	if err != nil {
		logger.Warn("Sort stopped before completion",
			logger.Int("accessions", sum.Accessions),
			logger.Int("remaining", table.Len()-sum.Accessions))
		return err
	}

	logger.Info("Sorted download",
		logger.Int("accessions", sum.Accessions),
		logger.Int("files", sum.Files),
		logger.String("copied", sum.HumanBytes()))
	return nil
}

// exitCodeFor maps an error returned by a command to a process exit code.
func exitCodeFor(err error) int {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, context.Canceled):
		return exitcode.Interrupted
	case errors.Is(err, config.ErrMissingSetting), errors.Is(err, config.ErrConfigFile):
		return exitcode.ConfigError
	case errors.Is(err, manifest.ErrMalformed),
		errors.Is(err, species.ErrMissingField),
		errors.Is(err, safeio.ErrUnsafeComponent):
		return exitcode.ValidationError
	case errors.Is(err, fs.ErrPermission):
		return exitcode.PermissionError
	case errors.Is(err, fs.ErrNotExist), errors.As(err, &pathErr):
		return exitcode.FileSystemError
	default:
		return exitcode.GeneralError
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	logLevel, known := logger.ParseLevel(logLevelStr)

	logCfg := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "ncbisort",
		Output:    cmd.ErrOrStderr(),
		Fields:    []logger.Field{logger.String("run_id", uuid.NewString())},
	}

	if err := logger.Initialize(logCfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(exitcode.ConfigError)
	}
	if !known {
		logger.Warn("Unknown log level, using info", logger.String("log_level", logLevelStr))
	}
}
