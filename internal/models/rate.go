package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rate is one published exchange rate observation.
type Rate struct {
	gorm.Model
	Currency string          `gorm:"uniqueIndex:idx_currency_day;not null"`
	Day      string          `gorm:"uniqueIndex:idx_currency_day;not null"` // YYYY-MM-DD
	Value    decimal.Decimal `gorm:"type:text;not null"`
}
