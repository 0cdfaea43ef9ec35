package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"form1325/internal/config"
	"form1325/internal/gains"
	"form1325/internal/orders"
	"form1325/internal/rates"
	"form1325/internal/report"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInputFormat is returned when the orders file cannot be read or parsed.
var ErrInputFormat = errors.New("invalid input file")

// RateProvider returns the rate table of a tax year.
type RateProvider interface {
	Table(ctx context.Context, year int, currency string) (*rates.Table, error)
}

// Pipeline turns a broker orders file into the report of its tax year.
type Pipeline struct {
	logger        *zap.Logger
	provider      RateProvider
	currency      string
	allowDegraded bool
}

// NewPipeline creates a new pipeline.
func NewPipeline(logger *zap.Logger, provider RateProvider, cfg *config.Rates) *Pipeline {
	return &Pipeline{
		logger:        logger,
		provider:      provider,
		currency:      cfg.Currency,
		allowDegraded: cfg.AllowDegraded,
	}
}

// Run validates and reads the orders file at path.
func (p *Pipeline) Run(ctx context.Context, path string) (*report.Report, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("%w: %s is not a .csv file", ErrInputFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputFormat, err)
	}
	defer f.Close()

	return p.Process(ctx, f)
}

// Process loads the orders, fetches the rates of their year once and
// matches every security's segments in the order the securities first
// appear.
func (p *Pipeline) Process(ctx context.Context, r io.Reader) (*report.Report, error) {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))

	list, err := orders.Load(r)
	if err != nil {
		if errors.Is(err, orders.ErrNoOrders) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInputFormat, err)
	}
	year, err := orders.Year(list)
	if err != nil {
		return nil, err
	}
	log.Info("Orders loaded", zap.Int("orders", len(list)), zap.Int("year", year))
	p.checkCurrency(log, list)

	table, err := p.provider.Table(ctx, year, p.currency)
	if err != nil {
		var degraded *rates.DegradedError
		if !errors.As(err, &degraded) || !p.allowDegraded || table == nil {
			return nil, fmt.Errorf("could not get exchange rates: %w", err)
		}
		log.Warn("Continuing with degraded exchange rates", zap.Error(err))
	}

	builder := report.NewBuilder(year, p.currency)
	for _, group := range orders.BySymbol(list) {
		for _, seg := range gains.Split(group) {
			res, err := gains.Match(seg, table)
			if err != nil {
				return nil, fmt.Errorf("could not match %s: %w", seg.Symbol, err)
			}
			for _, u := range res.Unmatched {
				log.Warn("Sell not covered by buys",
					zap.String("symbol", u.Symbol),
					zap.Time("sell_date", u.SellDate),
					zap.Int64("shares", u.Shares),
				)
			}
			for _, l := range res.OpenLots {
				log.Info("Position still open",
					zap.String("symbol", l.Symbol),
					zap.Time("buy_date", l.BuyDate),
					zap.Int64("shares", l.Shares),
				)
			}
			builder.Add(res)
		}
	}

	rep := builder.Build()
	log.Info("Report built",
		zap.Int("rows", len(rep.Rows)),
		zap.String("total_profit", rep.Totals.Profit.StringFixed(2)),
		zap.String("total_loss", rep.Totals.Loss.StringFixed(2)),
	)
	return rep, nil
}

func (p *Pipeline) checkCurrency(log *zap.Logger, list []orders.Order) {
	for _, o := range list {
		if o.Currency != "" && !strings.EqualFold(o.Currency, p.currency) {
			log.Warn("Order currency differs from the rate currency",
				zap.String("symbol", o.Symbol),
				zap.String("order_currency", o.Currency),
				zap.String("rate_currency", p.currency),
			)
			return
		}
	}
}
