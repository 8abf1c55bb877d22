// Command pdf-extractor extracts text, tables, images and OCR text from a
// PDF document into flat files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a3tai/pdf-extractor/internal/config"
	"github.com/a3tai/pdf-extractor/internal/extract"
	"github.com/a3tai/pdf-extractor/internal/logging"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// exitError carries a non-zero exit code out of a command that already
// reported its outcome
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// newRootCmd builds the extraction command. Its flags map one to one onto
// config keys and can also be set through PDF_EXTRACTOR_* variables or a
// YAML config file.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	defaults := config.DefaultConfig()
	var configFile string

	cmd := &cobra.Command{
		Use:   "pdf-extractor --file <path> [--text] [--tables] [--images] [--ocr]",
		Short: "Extract text, tables, images and OCR text from PDF files",
		Long: `pdf-extractor reads a PDF document and writes the requested artifacts to an
output directory:

  <name>_text.txt                          plain text, one marker per page
  <name>_tables/page<N>_table<M>.csv|json  detected tables
  <name>_images/page<N>_image<M>.<ext>     embedded images
  <name>_ocr.txt                           OCR text, one marker per page

Modes always run in the order text, tables, images, OCR. A failing mode
does not stop the others; the exit status is non-zero if any requested
mode failed.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if err := config.Setup(v, defaults, configFile); err != nil {
				return pdferrors.Usage(err)
			}
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return pdferrors.Usage(err)
			}

			cfg, err := config.Load(v)
			if err != nil {
				return pdferrors.Usage(err)
			}

			logger := logging.NewWithWriter(stderr, cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			if used := v.ConfigFileUsed(); used != "" {
				logger.Debug("Using config file: " + used)
			}
			logger.Debug("Resolved configuration: " + cfg.String())

			summary, err := extract.NewDispatcher(logger, stdout).Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if code := summary.ExitCode(); code != pdferrors.ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("pdf-extractor {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return pdferrors.Usage(err)
	})

	cmd.Flags().StringVar(&configFile, "config", "",
		"config file (default: ./pdf-extractor.yaml or ~/.config/pdf-extractor/pdf-extractor.yaml)")
	config.DefineFlags(cmd.Flags(), defaults)
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newMergeCmd(stdout), newInfoCmd(stdout), newVersionCmd(stdout))
	return cmd
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return pdferrors.ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	// Errors cobra raises itself (unknown command, bad arguments) carry no kind
	if pdferrors.KindOf(err) == pdferrors.KindUnknown {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return pdferrors.ExitUsage
	}
	if pdferrors.IsUsage(err) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
	}
	return pdferrors.ExitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
