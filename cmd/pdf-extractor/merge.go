package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-extractor/internal/output"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
	"github.com/a3tai/pdf-extractor/internal/textmerge"
)

func newMergeCmd(stdout io.Writer) *cobra.Command {
	opts := textmerge.DefaultOptions()
	var outPath string

	cmd := &cobra.Command{
		Use:   "merge [flags] <chunk files...>",
		Short: "Merge text chunks with overlap detection, hyphen trimming and reflow",
		Long: `merge joins text files produced from consecutive parts of a document.
Files are read in lexical order. Text repeated at the boundary of two
chunks is kept once, words broken by a hyphen at the end of a line are
joined, page markers become their own paragraphs and every paragraph is
reflowed to --width.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if opts.MaxCheck < 0 {
				return pdferrors.Usagef("--max-check must not be negative")
			}

			merged, err := textmerge.MergeFiles(args, opts)
			if err != nil {
				return pdferrors.Input("", err)
			}

			if outPath == "" {
				if _, err := io.WriteString(stdout, merged); err != nil {
					return pdferrors.Mode("merge", "write", err)
				}
				return nil
			}

			if err := output.EnsureDir(filepath.Dir(outPath)); err != nil {
				return pdferrors.Mode("merge", "mkdir", err)
			}
			if err := os.WriteFile(outPath, []byte(merged), 0o644); err != nil {
				return pdferrors.Mode("merge", "write", fmt.Errorf("cannot write %s: %w", outPath, err))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.MaxCheck, "max-check", opts.MaxCheck, "Max characters to check for overlap")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "Reflow width for paragraphs")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write result to this file (default: stdout)")

	return cmd
}
