package orders

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const (
	// TradeDateLayout is the Colmex Pro trade date format (month first).
	TradeDateLayout = "1/2/2006"
	// ExecTimeLayout is the Colmex Pro execution time format.
	ExecTimeLayout = "15:04:05"
)

var (
	// ErrNoOrders is returned for a file without any order row.
	ErrNoOrders = errors.New("no orders found")
	// ErrMultiYear is returned when the trade dates fall in more than one year.
	ErrMultiYear = errors.New("orders span multiple years, only files with orders from one year are supported")
	// ErrBadOrderRow is returned for a row that cannot be parsed.
	ErrBadOrderRow = errors.New("invalid order row")
	// ErrBadHeader is returned when the header lacks a required column.
	ErrBadHeader = errors.New("invalid orders header")
)

// requiredColumns lists every export column but the optional Note.
var requiredColumns = []string{
	"Account", "Trade Date", "Currency", "Account Type", "Side", "Symbol",
	"Shares", "Price", "Exec Time", "Commission", "SEC Fee", "TAF Fee",
	"ECN Fee", "Routing Fee", "NSCC Fee", "Clr Type", "Clr Broker",
}

// record mirrors one row of the Colmex Pro orders export.
type record struct {
	Account        string `csv:"Account"`
	TradeDate      string `csv:"Trade Date"`
	Currency       string `csv:"Currency"`
	AccountType    string `csv:"Account Type"`
	Side           string `csv:"Side"`
	Symbol         string `csv:"Symbol"`
	Shares         string `csv:"Shares"`
	Price          string `csv:"Price"`
	ExecTime       string `csv:"Exec Time"`
	Commission     string `csv:"Commission"`
	SECFee         string `csv:"SEC Fee"`
	TAFFee         string `csv:"TAF Fee"`
	ECNFee         string `csv:"ECN Fee"`
	RoutingFee     string `csv:"Routing Fee"`
	NSCCFee        string `csv:"NSCC Fee"`
	ClearingType   string `csv:"Clr Type"`
	ClearingBroker string `csv:"Clr Broker"`
	Note           string `csv:"Note"`
}

// trimmedReader strips the padding and the byte order mark the broker
// export carries, and tolerates rows with a missing trailing Note column.
// The header row is checked for the required columns.
type trimmedReader struct {
	r     *csv.Reader
	first bool
	err   error
}

func newTrimmedReader(in io.Reader) *trimmedReader {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return &trimmedReader{r: r, first: true}
}

func (t *trimmedReader) Read() ([]string, error) {
	row, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	for i := range row {
		if t.first && i == 0 {
			row[i] = strings.TrimPrefix(row[i], "\ufeff")
		}
		row[i] = strings.TrimSpace(row[i])
	}
	if t.first {
		t.first = false
		if err := checkHeader(row); err != nil {
			t.err = err
			return nil, err
		}
	}
	return row, nil
}

func checkHeader(row []string) error {
	present := make(map[string]struct{}, len(row))
	for _, name := range row {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrBadHeader, strings.Join(missing, ", "))
	}
	return nil
}

func (t *trimmedReader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := t.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Load parses a Colmex Pro orders export and returns the orders sorted in
// processing order (see Sort).
func Load(in io.Reader) ([]Order, error) {
	var records []*record
	tr := newTrimmedReader(in)
	if err := gocsv.UnmarshalCSV(tr, &records); err != nil {
		if tr.err != nil {
			return nil, tr.err
		}
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, ErrNoOrders
		}
		return nil, fmt.Errorf("could not read orders: %w", err)
	}

	orders := make([]Order, 0, len(records))
	for i, rec := range records {
		if rec.Symbol == "" && rec.TradeDate == "" && rec.Side == "" {
			continue // blank line padded with separators
		}
		o, err := rec.order()
		if err != nil {
			// +2: one for the header, one for 1-based numbering.
			return nil, fmt.Errorf("%w at line %d: %w", ErrBadOrderRow, i+2, err)
		}
		orders = append(orders, o)
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	Sort(orders)
	return orders, nil
}

func (r *record) order() (Order, error) {
	o := Order{
		Account:        r.Account,
		Currency:       r.Currency,
		AccountType:    r.AccountType,
		Symbol:         r.Symbol,
		ClearingType:   r.ClearingType,
		ClearingBroker: r.ClearingBroker,
		Note:           r.Note,
	}
	if o.Symbol == "" {
		return o, errors.New("missing symbol")
	}

	switch Side(r.Side) {
	case Buy, Sell:
		o.Side = Side(r.Side)
	default:
		return o, fmt.Errorf("side must be '%s' or '%s', got '%s'", Buy, Sell, r.Side)
	}

	var err error
	o.TradeDate, err = time.Parse(TradeDateLayout, r.TradeDate)
	if err != nil {
		return o, fmt.Errorf("invalid trade date: %w", err)
	}
	o.ExecutedAt, err = time.Parse(TradeDateLayout+" "+ExecTimeLayout, r.TradeDate+" "+r.ExecTime)
	if err != nil {
		return o, fmt.Errorf("invalid execution time: %w", err)
	}

	o.Shares, err = strconv.ParseInt(r.Shares, 10, 64)
	if err != nil {
		return o, fmt.Errorf("invalid shares: %w", err)
	}
	if o.Shares <= 0 {
		return o, fmt.Errorf("shares must be positive, got %d", o.Shares)
	}

	o.Price, err = decimal.NewFromString(r.Price)
	if err != nil {
		return o, fmt.Errorf("invalid price: %w", err)
	}

	fees := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"commission", r.Commission, &o.Commission},
		{"SEC fee", r.SECFee, &o.SECFee},
		{"TAF fee", r.TAFFee, &o.TAFFee},
		{"ECN fee", r.ECNFee, &o.ECNFee},
		{"routing fee", r.RoutingFee, &o.RoutingFee},
		{"NSCC fee", r.NSCCFee, &o.NSCCFee},
	}
	for _, fee := range fees {
		if fee.value == "" {
			continue // absent fee is zero
		}
		*fee.dst, err = decimal.NewFromString(fee.value)
		if err != nil {
			return o, fmt.Errorf("invalid %s: %w", fee.name, err)
		}
	}
	return o, nil
}

// Sort orders ascending by execution timestamp, then symbol, then price.
func Sort(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.ExecutedAt.Equal(b.ExecutedAt) {
			return a.ExecutedAt.Before(b.ExecutedAt)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Price.LessThan(b.Price)
	})
}

// Year returns the single calendar year of the orders' trade dates.
func Year(orders []Order) (int, error) {
	if len(orders) == 0 {
		return 0, ErrNoOrders
	}
	years := make(map[int]struct{})
	for _, o := range orders {
		years[o.TradeDate.Year()] = struct{}{}
	}
	if len(years) > 1 {
		found := make([]int, 0, len(years))
		for y := range years {
			found = append(found, y)
		}
		sort.Ints(found)
		return 0, fmt.Errorf("%w: found %v", ErrMultiYear, found)
	}
	return orders[0].TradeDate.Year(), nil
}

// BySymbol groups already sorted orders per symbol. Groups come in order of
// each symbol's first appearance and keep the order within a symbol.
func BySymbol(orders []Order) [][]Order {
	index := make(map[string]int)
	var groups [][]Order
	for _, o := range orders {
		i, ok := index[o.Symbol]
		if !ok {
			i = len(groups)
			index[o.Symbol] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], o)
	}
	return groups
}
