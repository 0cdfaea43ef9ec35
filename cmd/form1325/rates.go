package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"form1325/internal/rates"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct {
	year     int
	currency string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "print the daily exchange rates of a tax year" }
func (*ratesCmd) Usage() string {
	return `form1325 rates [-year <year>] [-currency <code>]

  Prints the gap-filled daily representative rate table used for a tax
  year, one day per line.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year()-1, "Tax year")
	f.StringVar(&c.currency, "currency", "", "Currency code, defaults to rates.currency")
}

func (c *ratesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.log.Sync()

	currency := c.currency
	if currency == "" {
		currency = a.cfg.Rates.Currency
	}

	table, err := a.provider.Table(ctx, c.year, currency)
	var degraded *rates.DegradedError
	if errors.As(err, &degraded) {
		a.log.Warn("Printing degraded rates", zap.Error(err))
	} else if err != nil {
		a.log.Error("Failed to get rates", zap.Error(err))
		return subcommands.ExitFailure
	}

	if err := writeTable(os.Stdout, table); err != nil {
		a.log.Error("Failed to print rates", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeTable(w io.Writer, t *rates.Table) error {
	if _, err := fmt.Fprintf(w, "day,%s\n", t.Currency); err != nil {
		return err
	}
	for _, d := range t.Days() {
		v, _ := t.Rate(d)
		if _, err := fmt.Fprintf(w, "%s,%s\n", d.Format(rates.DayLayout), v); err != nil {
			return err
		}
	}
	return nil
}
