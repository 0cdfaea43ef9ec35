package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"form1325/internal/report"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownToHTML = goldmark.New(goldmark.WithExtensions(extension.Table))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="he" dir="rtl">
<head>
<meta charset="UTF-8">
<title>1325 - {{.Year}}</title>
<style>
body { font-family: Arial, "Trebuchet MS", sans-serif; font-size: 12px; margin: 2em; }
h1 { font-size: 18px; text-align: center; }
h3 { font-size: 14px; }
table { border-collapse: collapse; margin: 1em 0; width: 100%; }
th, td { border: 1px solid #444; padding: 4px 6px; }
th { background: #eee; font-size: 11px; }
@page { size: A4 landscape; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLRenderer writes the Markdown document converted to a right-to-left
// HTML page, ready to print.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(w io.Writer, r *report.Report, meta Metadata) error {
	md, err := renderMarkdown(r, meta)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := markdownToHTML.Convert(md, &body); err != nil {
		return fmt.Errorf("failed to convert markdown: %w", err)
	}

	page := struct {
		Year int
		Body template.HTML
	}{Year: r.Year, Body: template.HTML(body.String())}
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}
