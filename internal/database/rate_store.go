package database

import (
	"context"
	"errors"
	"fmt"

	"form1325/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateStore persists downloaded exchange rate series.
type RateStore struct {
	db *gorm.DB
}

// NewRateStore creates a RateStore on an already migrated database.
func NewRateStore(db *gorm.DB) *RateStore {
	return &RateStore{db: db}
}

// Load returns the observations of currency between from and to (ISO days,
// inclusive). ok is false when no earlier fetch covers the whole range, in
// which case the observations cannot be trusted to be complete.
func (s *RateStore) Load(ctx context.Context, currency, from, to string) (map[string]decimal.Decimal, bool, error) {
	db := s.db.WithContext(ctx)

	var fetch models.Fetch
	err := db.Where("currency = ? AND from_day <= ? AND to_day >= ?", currency, from, to).First(&fetch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not look up cached fetches: %w", err)
	}

	var rows []models.Rate
	if err := db.Where("currency = ? AND day BETWEEN ? AND ?", currency, from, to).Order("day").Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("could not load cached rates: %w", err)
	}

	series := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		series[r.Day] = r.Value
	}
	return series, true, nil
}

// Save stores the observations of a successful fetch of [from, to] and
// records the range as covered.
func (s *RateStore) Save(ctx context.Context, currency, from, to string, series map[string]decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(series) > 0 {
			rows := make([]models.Rate, 0, len(series))
			for day, value := range series {
				rows = append(rows, models.Rate{Currency: currency, Day: day, Value: value})
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "currency"}, {Name: "day"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rows).Error
			if err != nil {
				return fmt.Errorf("could not save rates: %w", err)
			}
		}

		if err := tx.Create(&models.Fetch{Currency: currency, FromDay: from, ToDay: to}).Error; err != nil {
			return fmt.Errorf("could not save fetch range: %w", err)
		}
		return nil
	})
}
