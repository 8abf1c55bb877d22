package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-extractor/internal/config"
	"github.com/a3tai/pdf-extractor/internal/pdf"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

// documentReport is what the info command prints
type documentReport struct {
	*pdf.DocumentInfo
	pdf.Metadata
}

func newInfoCmd(stdout io.Writer) *cobra.Command {
	var asJSON bool
	maxFileSize := int64(config.DefaultMaxFileSize)

	cmd := &cobra.Command{
		Use:   "info [flags] <file>",
		Short: "Print page count, size and metadata of a PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]

			info, err := pdf.NewValidator(maxFileSize).Inspect(path)
			if err != nil {
				return pdferrors.Input(path, err)
			}

			doc, err := pdf.Open(path)
			if err != nil {
				return pdferrors.Input(path, err)
			}
			defer doc.Close()

			meta, err := doc.Metadata()
			if err != nil {
				return pdferrors.Input(path, err)
			}

			report := documentReport{DocumentInfo: info, Metadata: meta}
			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				_, err = fmt.Fprintf(stdout, "%s\n", data)
				return err
			}
			return printReport(stdout, report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().Int64Var(&maxFileSize, config.KeyMaxFileSize, maxFileSize, "Maximum PDF file size in bytes")

	return cmd
}

func printReport(w io.Writer, r documentReport) error {
	fields := []struct{ label, value string }{
		{"Title", r.Title},
		{"Author", r.Author},
		{"Subject", r.Subject},
		{"Keywords", r.Keywords},
		{"Creator", r.Creator},
		{"Producer", r.Producer},
		{"Created", r.CreationDate},
		{"Modified", r.ModDate},
	}

	if _, err := fmt.Fprintf(w, "File: %s\nSize: %d bytes\nPages: %d\n", r.Path, r.Size, r.Pages); err != nil {
		return err
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.label, f.value); err != nil {
			return err
		}
	}
	return nil
}
