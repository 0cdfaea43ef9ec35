package render

import (
	"fmt"
	"io"

	"form1325/internal/report"
	"github.com/charmbracelet/glamour"
)

// Preview prints the document to a terminal.
func Preview(w io.Writer, r *report.Report, meta Metadata) error {
	md, err := renderMarkdown(r, meta)
	if err != nil {
		return err
	}
	out, err := glamour.Render(string(md), "dark")
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
