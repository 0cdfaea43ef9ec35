package rates

import (
	"context"
	"fmt"
	"os"
	"time"

	"form1325/internal/boi"
	"github.com/shopspring/decimal"
)

// FileSource reads a series saved in the Bank of Israel csv-series layout.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Series returns the observations of the file between from and to.
func (s *FileSource) Series(_ context.Context, currency string, from, to time.Time) (map[string]decimal.Decimal, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rates file: %w", err)
	}
	defer f.Close()

	all, err := boi.ParseSeries(f, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rates file %s: %w", s.path, err)
	}

	lo, hi := from.Format(DayLayout), to.Format(DayLayout)
	series := make(map[string]decimal.Decimal, len(all))
	for day, v := range all {
		if day >= lo && day <= hi {
			series[day] = v
		}
	}
	return series, nil
}
