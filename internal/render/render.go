package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"form1325/internal/config"
	"form1325/internal/report"
	"github.com/google/uuid"
)

// Format is an output file format, named by its file extension.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	HTML     Format = "html"
	PDF      Format = "pdf"
)

// ErrUnsupportedFormat is returned for an output extension without a renderer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Metadata is the taxpayer information printed on documents.
type Metadata struct {
	Name        string
	FileNumber  string
	AssetAbroad bool
}

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r *report.Report, meta Metadata) error
}

// FormatOf returns the output format selected by the extension of path.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("%w: %q (use .csv, .md, .html or .pdf)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// NeedsMetadata reports whether the format prints the taxpayer details.
func (f Format) NeedsMetadata() bool {
	return f != CSV
}

// New returns the renderer of a format. cfg configures the PDF printing.
func New(f Format, cfg *config.Output) (Renderer, error) {
	switch f {
	case CSV:
		return CSVRenderer{}, nil
	case Markdown:
		return MarkdownRenderer{}, nil
	case HTML:
		return HTMLRenderer{}, nil
	case PDF:
		return PDFRenderer{Binary: cfg.Wkhtmltopdf, Explanations: cfg.Explanations}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// WriteFile renders the report into a temporary file next to path and
// renames it over path once complete, so a failed run leaves no output.
func WriteFile(path string, rd Renderer, r *report.Report, meta Metadata) error {
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	err = rd.Render(f, r, meta)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
