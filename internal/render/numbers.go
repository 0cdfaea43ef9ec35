package render

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	wholeFormatter = money.NewFormatter(0, ".", ",", "", "1")
	ratioFormatter = money.NewFormatter(2, ".", ",", "", "1")
)

// whole rounds d to an integer and adds thousands separators.
func whole(d decimal.Decimal) string {
	return wholeFormatter.Format(d.Round(0).IntPart())
}

// ratio rounds d to two decimals.
func ratio(d decimal.Decimal) string {
	return ratioFormatter.Format(d.Round(2).Shift(2).IntPart())
}

func wholeOrEmpty(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return whole(d.Decimal)
}

func plainOrEmpty(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
