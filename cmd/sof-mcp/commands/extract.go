// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/logger"
	"github.com/sofproj/sof-mcp/internal/sof/export"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
	"github.com/sofproj/sof-mcp/internal/sof/source"
)

type extractFlags struct {
	format      string
	inputFormat string
	workers     int
	confidence  bool
	remarks     bool
	metadata    bool
}

func newExtractCmd(a *app) *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract events from Statement of Facts files",
		Long: `Extract events from one or more files and print them in the chosen format.
Use - to read standard input. The input format follows the file extension
(.txt, .md, .json, .yaml) unless --input-format is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.Export
			if cmd.Flags().Changed("confidence") {
				opts.IncludeConfidence = f.confidence
			}
			if cmd.Flags().Changed("remarks") {
				opts.IncludeRemarks = f.remarks
			}
			if cmd.Flags().Changed("metadata") {
				opts.IncludeMetadata = f.metadata
			}
			if !cmd.Flags().Changed("workers") {
				f.workers = a.cfg.Batch.Workers
			}
			return a.extract(cmd, args, f, opts)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", export.FormatJSON, "Output format: json, csv, yaml")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "Input format for every file: text, markdown, json, yaml")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Documents extracted in parallel (0 = one per CPU)")
	cmd.Flags().BoolVar(&f.confidence, "confidence", true, "Include confidence")
	cmd.Flags().BoolVar(&f.remarks, "remarks", true, "Include remarks")
	cmd.Flags().BoolVar(&f.metadata, "metadata", false, "Include document metadata")
	return cmd
}

func (a *app) extract(cmd *cobra.Command, paths []string, f extractFlags, opts export.Options) error {
	log := logger.Named("extract")
	p, err := a.pipeline(log, nil)
	if err != nil {
		return err
	}

	reader := source.DefaultReader()
	docs := make([]extract.Document, 0, len(paths))
	for _, path := range paths {
		src, err := readSource(cmd.InOrStdin(), path, f.inputFormat)
		if err != nil {
			return err
		}
		read, err := reader.Read(cmd.Context(), src)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		log.Debugw("Decoded document", "path", path, "decoder", read.DecoderUsed)
		docs = append(docs, read.Document)
	}

	results, err := p.ExtractBatch(cmd.Context(), docs, f.workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", paths[i], r.Err)
			continue
		}
		if err := export.Render(out, f.format, r.Result, opts); err != nil {
			return err
		}
	}
	if failed > 0 {
		return errors.Newf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

// readSource loads path, or stdin for "-", with a format hint taken from
// the flag or the file extension.
func readSource(stdin io.Reader, path, format string) (source.Source, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return source.Source{}, errors.Wrapf(err, "read %s", path)
	}
	if format == "" {
		format = formatFromPath(path)
	}
	id := ""
	if path != "-" {
		id = filepath.Base(path)
	}
	return source.Source{Content: data, Format: format, ID: id}, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return "text"
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}
