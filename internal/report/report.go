package report

import (
	"form1325/internal/gains"
	"github.com/shopspring/decimal"
)

// DisplayDateFormat is the day/month/year format of the form.
const DisplayDateFormat = "02/01/2006"

// Row is one numbered line of the form table.
type Row struct {
	Number            int
	Symbol            string
	PreMarket         string
	Shares            int64
	BuyDate           string
	BuyAmount         decimal.Decimal
	RateChange        decimal.Decimal
	AdjustedBuyAmount decimal.Decimal
	SellDate          string
	SellAmount        decimal.Decimal
	Profit            decimal.NullDecimal
	Loss              decimal.NullDecimal
}

// Totals sums the form table.
type Totals struct {
	Profit decimal.Decimal
	Loss   decimal.Decimal
	Sales  decimal.Decimal
}

// Net is the total profit and loss together.
func (t Totals) Net() decimal.Decimal {
	return t.Profit.Add(t.Loss)
}

// Report is the content of one form for one tax year.
type Report struct {
	Year      int
	Currency  string
	Rows      []Row
	Totals    Totals
	Unmatched []gains.UnmatchedSell
	OpenLots  []gains.OpenLot
}

// Builder accumulates matched segments in processing order.
type Builder struct {
	year     int
	currency string
	results  []gains.Result
}

func NewBuilder(year int, currency string) *Builder {
	return &Builder{year: year, currency: currency}
}

// Add appends the outcome of one segment.
func (b *Builder) Add(res gains.Result) {
	b.results = append(b.results, res)
}

// Build numbers the rows from 1 and computes the totals.
func (b *Builder) Build() *Report {
	r := &Report{
		Year:     b.year,
		Currency: b.currency,
		Totals:   Totals{Profit: decimal.Zero, Loss: decimal.Zero, Sales: decimal.Zero},
	}
	for _, res := range b.results {
		for _, rec := range res.Records {
			r.Rows = append(r.Rows, Row{
				Number:            len(r.Rows) + 1,
				Symbol:            rec.Symbol,
				Shares:            rec.Shares,
				BuyDate:           rec.BuyDate.Format(DisplayDateFormat),
				BuyAmount:         rec.BuyAmount,
				RateChange:        rec.RateChange,
				AdjustedBuyAmount: rec.AdjustedBuyAmount,
				SellDate:          rec.SellDate.Format(DisplayDateFormat),
				SellAmount:        rec.SellAmount,
				Profit:            rec.Profit,
				Loss:              rec.Loss,
			})
			if rec.Profit.Valid {
				r.Totals.Profit = r.Totals.Profit.Add(rec.Profit.Decimal)
			}
			if rec.Loss.Valid {
				r.Totals.Loss = r.Totals.Loss.Add(rec.Loss.Decimal)
			}
			r.Totals.Sales = r.Totals.Sales.Add(rec.SellAmount)
		}
		r.Unmatched = append(r.Unmatched, res.Unmatched...)
		r.OpenLots = append(r.OpenLots, res.OpenLots...)
	}
	return r
}
