package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"form1325/internal/pipeline"
	"form1325/internal/render"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

var errMissingMetadata = errors.New("missing document details")

// generateCmd holds the flags for the 'generate' subcommand.
type generateCmd struct {
	name        string
	fileNumber  string
	assetAbroad string
	preview     bool
}

func (*generateCmd) Name() string     { return "generate" }
func (*generateCmd) Synopsis() string { return "convert a Colmex Pro orders file into form 1325" }
func (*generateCmd) Usage() string {
	return `form1325 generate [-name <name> -file-number <number> -asset-abroad <true|false>] [-preview] <orders.csv> <output.{csv|md|html|pdf}>

  Computes the realized capital gains of the orders file and writes the
  form table (.csv) or the full form document (.md, .html, .pdf). Documents
  require the taxpayer details. PDF output needs wkhtmltopdf.
`
}

func (c *generateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Taxpayer name, printed on documents")
	f.StringVar(&c.fileNumber, "file-number", "", "Tax file number, printed on documents")
	f.StringVar(&c.assetAbroad, "asset-abroad", "", "Whether the asset is held abroad (true or false), printed on documents")
	f.BoolVar(&c.preview, "preview", false, "Also print the document to the terminal")
}

// request is a validated generate invocation.
type request struct {
	input    string
	output   string
	format   render.Format
	meta     render.Metadata
	warnings []string
}

func (c *generateCmd) parse(args []string) (request, error) {
	if len(args) != 2 {
		return request{}, fmt.Errorf("expected an input and an output path, got %d arguments", len(args))
	}
	req := request{input: args[0], output: args[1]}

	format, err := render.FormatOf(req.output)
	if err != nil {
		return request{}, err
	}
	req.format = format

	if !format.NeedsMetadata() {
		if c.name != "" || c.fileNumber != "" || c.assetAbroad != "" {
			req.warnings = append(req.warnings, "-name, -file-number and -asset-abroad are ignored for csv output")
		}
		return req, nil
	}

	var missing []string
	if c.name == "" {
		missing = append(missing, "-name")
	}
	if c.fileNumber == "" {
		missing = append(missing, "-file-number")
	}
	if c.assetAbroad == "" {
		missing = append(missing, "-asset-abroad")
	}
	if len(missing) > 0 {
		return request{}, fmt.Errorf("%w: %s required for %s output", errMissingMetadata, strings.Join(missing, ", "), format)
	}

	abroad, err := parseAssetAbroad(c.assetAbroad)
	if err != nil {
		return request{}, err
	}
	req.meta = render.Metadata{Name: c.name, FileNumber: c.fileNumber, AssetAbroad: abroad}
	return req, nil
}

func parseAssetAbroad(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("-asset-abroad must be true or false, got %q", s)
}

func (c *generateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req, err := c.parse(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, c.Usage())
		return subcommands.ExitUsageError
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.log.Sync()
	for _, w := range req.warnings {
		a.log.Warn(w)
	}

	rep, err := pipeline.NewPipeline(a.log, a.provider, &a.cfg.Rates).Run(ctx, req.input)
	if err != nil {
		a.log.Error("Failed to compute the report", zap.String("input", req.input), zap.Error(err))
		return subcommands.ExitFailure
	}

	rd, err := render.New(req.format, &a.cfg.Output)
	if err != nil {
		a.log.Error("Failed to select a renderer", zap.Error(err))
		return subcommands.ExitFailure
	}
	if err := render.WriteFile(req.output, rd, rep, req.meta); err != nil {
		a.log.Error("Failed to write the output", zap.Error(err))
		return subcommands.ExitFailure
	}
	a.log.Info("Output file ready at", zap.String("path", req.output))

	if c.preview {
		if err := render.Preview(os.Stdout, rep, req.meta); err != nil {
			a.log.Warn("Failed to preview the document", zap.Error(err))
		}
	}
	return subcommands.ExitSuccess
}
