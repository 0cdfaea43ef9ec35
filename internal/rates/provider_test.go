package rates

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"form1325/internal/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSource is a mock implementation of the Source interface.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Series(ctx context.Context, currency string, from, to time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, currency, from, to)
	series, _ := args.Get(0).(map[string]decimal.Decimal)
	return series, args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var published2023 = map[string]decimal.Decimal{
	"2022-12-30": dec("3.519"),
	"2023-01-02": dec("3.531"),
	"2023-01-03": dec("3.545"),
	"2023-04-17": dec("3.652"),
	"2023-12-29": dec("3.627"),
}

func TestRange(t *testing.T) {
	from, to := Range(2023)

	assert.Equal(t, date(2022, 12, 29), from)
	assert.Equal(t, date(2023, 12, 31), to)
	assert.Len(t, Days(from, to), 368)
}

func TestNewTable_Dense(t *testing.T) {
	table := NewTable(2023, "USD", published2023)

	for _, d := range table.Days() {
		_, ok := table.Rate(d)
		assert.True(t, ok, "missing %s", d.Format(DayLayout))
	}
	assert.Len(t, table.Days(), 368)
}

func TestNewTable_GapFill(t *testing.T) {
	table := NewTable(2023, "USD", published2023)

	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{"lookback day before any publication", date(2022, 12, 29), "0"},
		{"published", date(2022, 12, 30), "3.519"},
		{"new year on a sunday", date(2023, 1, 1), "3.519"},
		{"first trading day", date(2023, 1, 2), "3.531"},
		{"long gap", date(2023, 4, 16), "3.545"},
		{"year end weekend", date(2023, 12, 31), "3.627"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Rate(tt.day)
			require.True(t, ok)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}

	_, ok := table.Rate(date(2024, 1, 1))
	assert.False(t, ok, "days outside the table are not covered")
}

func TestNewTable_EmptySeries(t *testing.T) {
	table := NewTable(2023, "USD", nil)

	for _, d := range table.Days() {
		v, ok := table.Rate(d)
		require.True(t, ok)
		assert.True(t, v.IsZero())
	}
}

func TestProvider_Table(t *testing.T) {
	t.Run("FetchesOnceAndMemoizes", func(t *testing.T) {
		// Arrange
		source := new(MockSource)
		from, to := Range(2023)
		source.On("Series", mock.Anything, "USD", from, to).Return(published2023, nil).Once()
		p := NewProvider(source, nil, zap.NewNop())

		// Act
		first, err := p.Table(context.Background(), 2023, "USD")
		require.NoError(t, err)
		second, err := p.Table(context.Background(), 2023, "USD")

		// Assert
		require.NoError(t, err)
		assert.Same(t, first, second)
		source.AssertExpectations(t)
	})

	t.Run("SourceError", func(t *testing.T) {
		// Arrange
		source := new(MockSource)
		source.On("Series", mock.Anything, "USD", mock.Anything, mock.Anything).Return(nil, errors.New("API down")).Twice()
		p := NewProvider(source, nil, zap.NewNop())

		// Act
		table, err := p.Table(context.Background(), 2023, "USD")

		// Assert
		var degraded *DegradedError
		require.ErrorAs(t, err, &degraded)
		assert.Equal(t, 2023, degraded.Year)
		assert.Contains(t, err.Error(), "API down")
		require.NotNil(t, table)
		v, ok := table.Rate(date(2023, 6, 1))
		assert.True(t, ok)
		assert.True(t, v.IsZero())

		// Degraded tables are not memoized.
		_, err = p.Table(context.Background(), 2023, "USD")
		assert.Error(t, err)
		source.AssertExpectations(t)
	})

	t.Run("EmptySeries", func(t *testing.T) {
		source := new(MockSource)
		source.On("Series", mock.Anything, "USD", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{}, nil)
		p := NewProvider(source, nil, zap.NewNop())

		table, err := p.Table(context.Background(), 2023, "USD")

		assert.ErrorIs(t, err, ErrEmptySeries)
		assert.NotNil(t, table)
	})

	t.Run("ReadsThroughStore", func(t *testing.T) {
		// Arrange
		db, err := database.NewDatabase("file::memory:")
		require.NoError(t, err)
		store := database.NewRateStore(db)

		source := new(MockSource)
		source.On("Series", mock.Anything, "USD", mock.Anything, mock.Anything).Return(published2023, nil).Once()

		// Act
		_, err = NewProvider(source, store, zap.NewNop()).Table(context.Background(), 2023, "USD")
		require.NoError(t, err)
		// A new provider has an empty memo, the store must serve it.
		table, err := NewProvider(source, store, zap.NewNop()).Table(context.Background(), 2023, "USD")

		// Assert
		require.NoError(t, err)
		v, _ := table.Rate(date(2023, 1, 1))
		assert.True(t, dec("3.519").Equal(v))
		source.AssertExpectations(t)
	})

	t.Run("IncompleteSeriesIsFetchedAgain", func(t *testing.T) {
		// Arrange: the first run happens early in the year.
		db, err := database.NewDatabase("file::memory:")
		require.NoError(t, err)
		store := database.NewRateStore(db)

		early := new(MockSource)
		early.On("Series", mock.Anything, "USD", mock.Anything, mock.Anything).
			Return(map[string]decimal.Decimal{"2023-01-02": dec("3.5")}, nil).Once()
		_, err = NewProvider(early, store, zap.NewNop()).Table(context.Background(), 2023, "USD")
		require.NoError(t, err)

		later := new(MockSource)
		later.On("Series", mock.Anything, "USD", mock.Anything, mock.Anything).
			Return(map[string]decimal.Decimal{"2023-01-02": dec("3.5"), "2023-06-01": dec("3.9"), "2023-12-29": dec("3.6")}, nil).Once()

		// Act
		table, err := NewProvider(later, store, zap.NewNop()).Table(context.Background(), 2023, "USD")

		// Assert
		require.NoError(t, err)
		v, _ := table.Rate(date(2023, 6, 1))
		assert.True(t, dec("3.9").Equal(v), "got %s", v)
		later.AssertExpectations(t)

		// The complete series now covers the year.
		idle := new(MockSource)
		table, err = NewProvider(idle, store, zap.NewNop()).Table(context.Background(), 2023, "USD")
		require.NoError(t, err)
		v, _ = table.Rate(date(2023, 12, 31))
		assert.True(t, dec("3.6").Equal(v))
		idle.AssertNotCalled(t, "Series", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCoveredUntil(t *testing.T) {
	_, to := Range(2023)

	assert.Equal(t, "2023-12-31", coveredUntil(map[string]decimal.Decimal{"2023-12-28": dec("3.6")}, to))
	assert.Equal(t, "2023-06-01", coveredUntil(map[string]decimal.Decimal{"2023-01-02": dec("3.5"), "2023-06-01": dec("3.9")}, to))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usd.csv")
	content := "Time Period,RER_USD_ILS:D:USD:ILS:ILS:OF00\n" +
		"2022-12-28,3.50\n" +
		"2022-12-30,3.519\n" +
		"2023-01-02,3.531\n" +
		"2024-01-02,3.62\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	from, to := Range(2023)
	series, err := NewFileSource(path).Series(context.Background(), "USD", from, to)

	require.NoError(t, err)
	assert.Len(t, series, 2, "observations outside the range are dropped")

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.csv")).Series(context.Background(), "USD", from, to)
	assert.Error(t, err)
}
