package rates

import (
	"errors"
	"fmt"
)

// ErrEmptySeries is returned when a fetch succeeds without any observation.
var ErrEmptySeries = errors.New("rate source returned no observations")

// DegradedError reports that the rate table of a year could not be filled
// from the source. The table returned alongside it holds zero rates.
type DegradedError struct {
	Year     int
	Currency string
	Err      error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("degraded %s rates for %d: %v", e.Currency, e.Year, e.Err)
}

func (e *DegradedError) Unwrap() error {
	return e.Err
}
