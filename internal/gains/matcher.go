package gains

import (
	"errors"
	"fmt"
	"time"

	"form1325/internal/orders"
	"github.com/shopspring/decimal"
)

// ErrMissingRate is returned when a trade day has no usable exchange rate.
var ErrMissingRate = errors.New("missing exchange rate")

// RateTable resolves the exchange rate of a trade day.
type RateTable interface {
	Rate(day time.Time) (decimal.Decimal, bool)
}

// Record is one allocation of sold shares against a single buy. Amounts are
// in the local currency. At most one of Profit and Loss is valid.
type Record struct {
	Symbol            string
	Shares            int64
	BuyDate           time.Time
	BuyAmount         decimal.Decimal
	RateChange        decimal.Decimal
	AdjustedBuyAmount decimal.Decimal
	SellDate          time.Time
	SellAmount        decimal.Decimal
	Profit            decimal.NullDecimal
	Loss              decimal.NullDecimal
}

// Result returns the profit (positive) or loss (negative) of the record.
func (r Record) Result() decimal.Decimal {
	switch {
	case r.Profit.Valid:
		return r.Profit.Decimal
	case r.Loss.Valid:
		return r.Loss.Decimal
	}
	return decimal.Zero
}

// UnmatchedSell is the part of a sell the buys of its segment do not cover.
type UnmatchedSell struct {
	Symbol   string
	SellDate time.Time
	Shares   int64
}

// OpenLot is the part of a buy no sell of its segment consumed.
type OpenLot struct {
	Symbol  string
	BuyDate time.Time
	Shares  int64
}

// Result is the outcome of matching one segment.
type Result struct {
	Records   []Record
	Unmatched []UnmatchedSell
	OpenLots  []OpenLot
}

type lot struct {
	order     orders.Order
	amount    decimal.Decimal
	remaining int64
}

// Match allocates the sells of a segment to its buys, oldest buy first, and
// computes the gain of every allocation. Records are ordered by sell, then
// by the buys each sell consumed.
func Match(seg Segment, rates RateTable) (Result, error) {
	var lots []lot
	var sells []orders.Order
	for _, o := range seg.Orders {
		if o.Side == orders.Buy {
			lots = append(lots, lot{order: o, amount: o.Amount(), remaining: o.Shares})
		} else {
			sells = append(sells, o)
		}
	}

	var res Result
	next := 0
	for _, sell := range sells {
		sellRate, err := rateOf(rates, sell)
		if err != nil {
			return Result{}, err
		}
		sellAmount := sell.Amount()
		toSell := sell.Shares

		for toSell > 0 {
			for next < len(lots) && lots[next].remaining == 0 {
				next++
			}
			if next == len(lots) {
				res.Unmatched = append(res.Unmatched, UnmatchedSell{Symbol: sell.Symbol, SellDate: sell.TradeDate, Shares: toSell})
				break
			}

			buy := &lots[next]
			buyRate, err := rateOf(rates, buy.order)
			if err != nil {
				return Result{}, err
			}
			allocated := min(buy.remaining, toSell)
			buy.remaining -= allocated
			toSell -= allocated

			res.Records = append(res.Records, newRecord(sell, sellAmount, sellRate, buy.order, buy.amount, buyRate, allocated))
		}
	}

	for _, l := range lots[next:] {
		if l.remaining > 0 {
			res.OpenLots = append(res.OpenLots, OpenLot{Symbol: l.order.Symbol, BuyDate: l.order.TradeDate, Shares: l.remaining})
		}
	}
	return res, nil
}

func rateOf(rates RateTable, o orders.Order) (decimal.Decimal, error) {
	r, ok := rates.Rate(o.TradeDate)
	if !ok || r.IsZero() {
		return decimal.Zero, fmt.Errorf("%w for %s on %s", ErrMissingRate, o.Symbol, o.TradeDate.Format("2006-01-02"))
	}
	return r, nil
}

func newRecord(sell orders.Order, sellOrderAmount, sellRate decimal.Decimal,
	buy orders.Order, buyOrderAmount, buyRate decimal.Decimal, allocated int64) Record {
	qty := decimal.NewFromInt(allocated)

	rateChange := decimal.NewFromInt(1).Add(sellRate.Sub(buyRate).Div(buyRate))
	sellAmount := sellOrderAmount.Mul(qty).Div(decimal.NewFromInt(sell.Shares)).Mul(sellRate)
	buyAmount := buyOrderAmount.Mul(qty).Div(decimal.NewFromInt(buy.Shares)).Mul(buyRate)
	adjusted := buyAmount.Mul(rateChange)

	rec := Record{
		Symbol:            sell.Symbol,
		Shares:            allocated,
		BuyDate:           buy.TradeDate,
		BuyAmount:         buyAmount,
		RateChange:        rateChange,
		AdjustedBuyAmount: adjusted,
		SellDate:          sell.TradeDate,
		SellAmount:        sellAmount,
	}
	switch gain := closerToZero(sellAmount.Sub(adjusted), sellAmount.Sub(buyAmount)); gain.Sign() {
	case 1:
		rec.Profit = decimal.NewNullDecimal(gain)
	case -1:
		rec.Loss = decimal.NewNullDecimal(gain)
	}
	return rec
}

// closerToZero picks the smaller in magnitude of the real and nominal gains.
// Gains of opposite signs cancel to zero.
func closerToZero(adjusted, nominal decimal.Decimal) decimal.Decimal {
	if adjusted.Sign()*nominal.Sign() <= 0 {
		return decimal.Zero
	}
	if adjusted.Abs().LessThan(nominal.Abs()) {
		return adjusted
	}
	return nominal
}
