package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order as written by Colmex Pro.
type Side string

const (
	Buy  Side = "B"
	Sell Side = "S"
)

// Order is a single executed order from the broker log. Orders are never
// mutated once loaded.
type Order struct {
	Account     string
	TradeDate   time.Time // calendar day, UTC midnight
	ExecutedAt  time.Time // trade date + execution time
	Currency    string
	AccountType string
	Side        Side
	Symbol      string
	Shares      int64
	Price       decimal.Decimal

	Commission decimal.Decimal
	SECFee     decimal.Decimal
	TAFFee     decimal.Decimal
	ECNFee     decimal.Decimal
	RoutingFee decimal.Decimal
	NSCCFee    decimal.Decimal

	ClearingType   string
	ClearingBroker string
	Note           string
}

// Delta is the signed share change used for position tracking:
// positive for sells, negative for buys.
func (o Order) Delta() int64 {
	if o.Side == Sell {
		return o.Shares
	}
	return -o.Shares
}

// Fees is the sum of all the commission and fee fields.
func (o Order) Fees() decimal.Decimal {
	return o.Commission.Add(o.SECFee).Add(o.TAFFee).Add(o.ECNFee).Add(o.RoutingFee).Add(o.NSCCFee)
}

// Amount is the transaction amount in the order currency: shares × price,
// with the fees added for a buy and subtracted for a sell.
func (o Order) Amount() decimal.Decimal {
	gross := o.Price.Mul(decimal.NewFromInt(o.Shares))
	if o.Side == Sell {
		return gross.Sub(o.Fees())
	}
	return gross.Add(o.Fees())
}
