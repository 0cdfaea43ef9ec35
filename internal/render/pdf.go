package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"form1325/internal/report"
	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrPDFUnavailable is returned when the wkhtmltopdf binary cannot be found.
var ErrPDFUnavailable = errors.New("wkhtmltopdf is not available")

// PDFRenderer prints the HTML document with wkhtmltopdf. When Explanations
// names a PDF file it is appended after the form.
type PDFRenderer struct {
	Binary       string // wkhtmltopdf path, looked up on PATH when empty
	Explanations string
}

func (r PDFRenderer) Render(w io.Writer, rep *report.Report, meta Metadata) error {
	if r.Explanations != "" {
		if _, err := os.Stat(r.Explanations); err != nil {
			return fmt.Errorf("failed to open explanations: %w", err)
		}
	}

	var page bytes.Buffer
	if err := (HTMLRenderer{}).Render(&page, rep, meta); err != nil {
		return err
	}
	form, err := r.print(&page)
	if err != nil {
		return err
	}

	if r.Explanations == "" {
		_, err = w.Write(form)
		return err
	}
	return appendPDF(w, form, r.Explanations)
}

func (r PDFRenderer) print(page io.Reader) ([]byte, error) {
	if r.Binary != "" {
		wkhtmltopdf.SetPath(r.Binary)
	}
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFUnavailable, err)
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.AddPage(wkhtmltopdf.NewPageReader(page))

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}

// appendPDF writes form followed by the pages of the PDF file at path.
func appendPDF(w io.Writer, form []byte, path string) error {
	dir, err := os.MkdirTemp("", "form1325-")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	formPath := filepath.Join(dir, "form.pdf")
	if err := os.WriteFile(formPath, form, 0o600); err != nil {
		return fmt.Errorf("failed to write form pdf: %w", err)
	}
	merged := filepath.Join(dir, "merged.pdf")
	if err := api.MergeCreateFile([]string{formPath, path}, merged, false, nil); err != nil {
		return fmt.Errorf("failed to append %s: %w", path, err)
	}

	f, err := os.Open(merged)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
