package render

import (
	"fmt"
	"io"
	"strconv"

	"form1325/internal/report"
	"github.com/gocarina/gocsv"
)

const utf8BOM = "\ufeff"

// csvRow is one line of the form table with the form's captions as headers.
type csvRow struct {
	Number            string `csv:"#"`
	Symbol            string `csv:"זיהוי מלא של נייר הערך שנמכר לפי הסדר הכרונולוגי של המכירות"`
	PreMarket         string `csv:"נרכש טרם הרישום למסחר"`
	Shares            string `csv:"ערך נקוב במכירה"`
	BuyDate           string `csv:"תאריך הרכישה"`
	BuyAmount         string `csv:"מחיר מקורי (3)"`
	RateChange        string `csv:"1 + שיעור עליית המדד (4)"`
	AdjustedBuyAmount string `csv:"מחיר מתואם"`
	SellDate          string `csv:"תאריך המכירה"`
	SellAmount        string `csv:"תמורה (5)"`
	Profit            string `csv:"רווח הון (2) ריאלי בשיעור מס של 25%"`
	Loss              string `csv:"הפסד הון(6) (ד-א) או הפסד הון ריאלי לפי סעיף 9(ג) לחוק התיאומים(7)"`
}

// CSVRenderer writes the form table with full precision amounts. The
// document metadata is not part of the table.
type CSVRenderer struct{}

func (CSVRenderer) Render(w io.Writer, r *report.Report, _ Metadata) error {
	rows := make([]csvRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, csvRow{
			Number:            strconv.Itoa(row.Number),
			Symbol:            row.Symbol,
			PreMarket:         row.PreMarket,
			Shares:            strconv.FormatInt(row.Shares, 10),
			BuyDate:           row.BuyDate,
			BuyAmount:         row.BuyAmount.String(),
			RateChange:        row.RateChange.String(),
			AdjustedBuyAmount: row.AdjustedBuyAmount.String(),
			SellDate:          row.SellDate,
			SellAmount:        row.SellAmount.String(),
			Profit:            plainOrEmpty(row.Profit),
			Loss:              plainOrEmpty(row.Loss),
		})
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
