package models

import "gorm.io/gorm"

// Fetch records a date range that was successfully downloaded for a currency,
// so that days without a publication inside it are known to be gaps.
type Fetch struct {
	gorm.Model
	Currency string `gorm:"index;not null"`
	FromDay  string `gorm:"not null"` // YYYY-MM-DD, inclusive
	ToDay    string `gorm:"not null"` // YYYY-MM-DD, inclusive
}
