package boi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const timePeriodColumn = "Time Period"

// ErrMissingColumn is returned when a series lacks its day or value column.
var ErrMissingColumn = errors.New("missing column in series")

// ValueColumn is the observation column of the daily representative rate series.
func ValueColumn(currency string) string {
	return fmt.Sprintf("%s:D:%s:ILS:ILS:OF00", SeriesCode(currency), currency)
}

// ParseSeries reads a csv-series response into a day→rate map keyed by
// ISO day. Rows without a value are skipped.
func ParseSeries(r io.Reader, currency string) (map[string]decimal.Decimal, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	series := make(map[string]decimal.Decimal)
	if len(records) == 0 {
		return series, nil
	}

	dayIdx, valueIdx := -1, -1
	want := ValueColumn(currency)
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case name == timePeriodColumn:
			dayIdx = i
		case name == want, valueIdx < 0 && strings.HasPrefix(name, SeriesCode(currency)+":"):
			valueIdx = i
		}
	}
	if dayIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, timePeriodColumn)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, want)
	}

	for _, row := range records[1:] {
		if len(row) <= dayIdx || len(row) <= valueIdx {
			continue
		}
		day, raw := strings.TrimSpace(row[dayIdx]), strings.TrimSpace(row[valueIdx])
		if day == "" || raw == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, day); err != nil {
			return nil, fmt.Errorf("failed to parse date %q: %w", day, err)
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse value %q for date %q: %w", raw, day, err)
		}
		series[day] = value
	}
	return series, nil
}
