package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source fetches the published observations of a currency between two days.
type Source interface {
	Series(ctx context.Context, currency string, from, to time.Time) (map[string]decimal.Decimal, error)
}

// Store persists fetched observations across runs.
type Store interface {
	Load(ctx context.Context, currency, from, to string) (map[string]decimal.Decimal, bool, error)
	Save(ctx context.Context, currency, from, to string, series map[string]decimal.Decimal) error
}

// Provider builds rate tables, reading through the store to the source.
type Provider struct {
	source Source
	store  Store
	memo   *cache.Cache
	logger *zap.Logger
}

// NewProvider creates a Provider. store may be nil to always hit the source.
func NewProvider(source Source, store Store, logger *zap.Logger) *Provider {
	return &Provider{
		source: source,
		store:  store,
		memo:   cache.New(cache.NoExpiration, 0),
		logger: logger,
	}
}

// Table returns the dense rate table of year. When the source fails or has
// no observations the all-zero table is returned together with a
// *DegradedError.
func (p *Provider) Table(ctx context.Context, year int, currency string) (*Table, error) {
	key := fmt.Sprintf("%d/%s", year, currency)
	if cached, found := p.memo.Get(key); found {
		return cached.(*Table), nil
	}

	from, to := Range(year)
	fromDay, toDay := from.Format(DayLayout), to.Format(DayLayout)
	log := p.logger.With(zap.Int("year", year), zap.String("currency", currency))

	if p.store != nil {
		series, ok, err := p.store.Load(ctx, currency, fromDay, toDay)
		if err != nil {
			log.Warn("Could not read the rate cache", zap.Error(err))
		} else if ok {
			log.Debug("Using cached rates", zap.Int("observations", len(series)))
			table := NewTable(year, currency, series)
			p.memo.Set(key, table, cache.NoExpiration)
			return table, nil
		}
	}

	log.Info("Fetching exchange rates", zap.String("from", fromDay), zap.String("to", toDay))
	series, err := p.source.Series(ctx, currency, from, to)
	if err == nil && len(series) == 0 {
		err = ErrEmptySeries
	}
	if err != nil {
		log.Warn("Exchange rates unavailable, all rates are zero", zap.Error(err))
		return NewTable(year, currency, nil), &DegradedError{Year: year, Currency: currency, Err: err}
	}

	if p.store != nil {
		covered := coveredUntil(series, to)
		if covered != toDay {
			log.Info("Rate series not complete, it will be fetched again", zap.String("last_published", covered))
		}
		if err := p.store.Save(ctx, currency, fromDay, covered, series); err != nil {
			log.Warn("Could not save rates to the cache", zap.Error(err))
		}
	}

	table := NewTable(year, currency, series)
	p.memo.Set(key, table, cache.NoExpiration)
	return table, nil
}

// coveredUntil returns the last day a fetch ending at to is complete for.
// Only the final lookbackDays may be unpublished, as over a weekend, for
// the whole range to count as covered. Otherwise the fetch covers up to its
// last published day.
func coveredUntil(series map[string]decimal.Decimal, to time.Time) string {
	last := ""
	for day := range series {
		if day > last {
			last = day
		}
	}
	if last >= to.AddDate(0, 0, -lookbackDays).Format(DayLayout) {
		return to.Format(DayLayout)
	}
	return last
}
