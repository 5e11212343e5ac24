package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// CSVFeeder reads a 2-column CSV (timestamp,close) and emits one tick
// per row. Timestamps are RFC3339 or unix seconds; a header row is
// skipped when its first column does not parse as either.
type CSVFeeder struct {
	symbol string
	ticks  []Tick
	idx    int
}

// NewCSVFeederFromFile constructs a CSV feeder from a file path.
func NewCSVFeederFromFile(symbol, path string) (*CSVFeeder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	defer f.Close()
	return NewCSVFeeder(symbol, f)
}

// NewCSVFeeder constructs a CSV feeder from an io.Reader.
func NewCSVFeeder(symbol string, r io.Reader) (*CSVFeeder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("replay: read csv: %w", err)
	}
	var ticks []Tick
	for i, rec := range records {
		if len(rec) < 2 {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("replay: csv row %d: bad tick, want timestamp,close got %d columns", i+1, len(rec))
		}
		ts, tsErr := parseStamp(rec[0])
		px, pxErr := strconv.ParseFloat(rec[len(rec)-1], 64)
		if tsErr != nil || pxErr != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("replay: csv row %d: bad tick (%q, %q)", i+1, rec[0], rec[len(rec)-1])
		}
		ticks = append(ticks, Tick{Timestamp: ts, Price: px})
	}
	return &CSVFeeder{symbol: symbol, ticks: ticks}, nil
}

func parseStamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts, nil
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("replay: parse timestamp %q: %w", s, err)
	}
	return time.Unix(sec, 0).UTC(), nil
}

func (f *CSVFeeder) Next(ctx context.Context, symbol string) (*Tick, bool, error) {
	if f.idx >= len(f.ticks) {
		return nil, false, nil
	}
	tick := f.ticks[f.idx]
	f.idx++
	return &tick, true, nil
}

// Len returns the number of ticks loaded.
func (f *CSVFeeder) Len() int { return len(f.ticks) }
