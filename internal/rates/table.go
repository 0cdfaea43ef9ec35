package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the key format of rate series.
const DayLayout = "2006-01-02"

// lookbackDays covers a year starting on a weekend or holiday.
const lookbackDays = 3

// Range returns the first and last day of the rate table of year: the whole
// calendar year preceded by the lookback days.
func Range(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -lookbackDays)
	to = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

// Days lists every calendar day between from and to, inclusive.
func Days(from, to time.Time) []time.Time {
	var days []time.Time
	for d := truncate(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Table is the dense day→rate table of one year and currency. Every day of
// the range has an entry; a zero rate means nothing was published on or
// before that day within the range.
type Table struct {
	Year     int
	Currency string

	from, to time.Time
	rates    map[string]decimal.Decimal
}

// NewTable builds the dense table of year from the published observations.
// A day without an observation takes the rate of the closest earlier
// published day, scanning back no further than the start of the range.
func NewTable(year int, currency string, published map[string]decimal.Decimal) *Table {
	from, to := Range(year)
	t := &Table{
		Year:     year,
		Currency: currency,
		from:     from,
		to:       to,
		rates:    make(map[string]decimal.Decimal),
	}
	for _, d := range Days(from, to) {
		t.rates[d.Format(DayLayout)] = lookup(published, d, from)
	}
	return t
}

func lookup(published map[string]decimal.Decimal, day, floor time.Time) decimal.Decimal {
	for d := day; !d.Before(floor); d = d.AddDate(0, 0, -1) {
		if v, ok := published[d.Format(DayLayout)]; ok {
			return v
		}
	}
	return decimal.Zero
}

// Rate returns the rate of day. ok is false for days outside the table.
func (t *Table) Rate(day time.Time) (decimal.Decimal, bool) {
	v, ok := t.rates[truncate(day).Format(DayLayout)]
	return v, ok
}

// Days lists the days of the table in ascending order.
func (t *Table) Days() []time.Time {
	return Days(t.from, t.to)
}
