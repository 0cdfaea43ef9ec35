package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"form1325/internal/report"
)

//go:embed templates/*
var templates embed.FS

var documentTemplate = template.Must(
	template.New("form1325.md").
		Funcs(template.FuncMap{"cell": cell}).
		ParseFS(templates, "templates/form1325.md"),
)

// document is the view of a report printed on the form.
type document struct {
	Year        int
	Name        string
	FileNumber  string
	AssetAbroad string
	Rows        []documentRow
	TotalProfit string
	TotalLoss   string
	TotalSales  string
}

type documentRow struct {
	Number            string
	Symbol            string
	PreMarket         string
	Shares            string
	BuyDate           string
	BuyAmount         string
	RateChange        string
	AdjustedBuyAmount string
	SellDate          string
	SellAmount        string
	Profit            string
	Loss              string
}

func newDocument(r *report.Report, meta Metadata) document {
	doc := document{
		Year:        r.Year,
		Name:        meta.Name,
		FileNumber:  meta.FileNumber,
		AssetAbroad: "☐ כן ☒ לא",
		TotalProfit: whole(r.Totals.Profit),
		TotalLoss:   whole(r.Totals.Loss),
		TotalSales:  whole(r.Totals.Sales),
	}
	if meta.AssetAbroad {
		doc.AssetAbroad = "☒ כן ☐ לא"
	}
	for _, row := range r.Rows {
		doc.Rows = append(doc.Rows, documentRow{
			Number:            wholeFormatter.Format(int64(row.Number)),
			Symbol:            row.Symbol,
			PreMarket:         row.PreMarket,
			Shares:            wholeFormatter.Format(row.Shares),
			BuyDate:           row.BuyDate,
			BuyAmount:         whole(row.BuyAmount),
			RateChange:        ratio(row.RateChange),
			AdjustedBuyAmount: whole(row.AdjustedBuyAmount),
			SellDate:          row.SellDate,
			SellAmount:        whole(row.SellAmount),
			Profit:            wholeOrEmpty(row.Profit),
			Loss:              wholeOrEmpty(row.Loss),
		})
	}
	return doc
}

// cell keeps free text from breaking a table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// MarkdownRenderer writes the form as a Markdown document with amounts in
// whole shekels.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(w io.Writer, r *report.Report, meta Metadata) error {
	if err := documentTemplate.Execute(w, newDocument(r, meta)); err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	return nil
}

func renderMarkdown(r *report.Report, meta Metadata) ([]byte, error) {
	var buf bytes.Buffer
	if err := (MarkdownRenderer{}).Render(&buf, r, meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
