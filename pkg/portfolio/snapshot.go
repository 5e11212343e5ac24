package portfolio

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"quantfolio/pkg/ledger"
)

// Snapshot is the serializable image of a book, suitable for a durable
// store between replay sessions.
type Snapshot struct {
	Fund        float64                         `msgpack:"fund" json:"fund"`
	Allocations map[string]float64              `msgpack:"allocations" json:"allocations"`
	Positions   map[string]ledger.PositionState `msgpack:"positions" json:"positions"`
}

// Store persists book snapshots by kind and key. Implementations live
// outside this package (Postgres in internal/repo); the book itself has
// no wire format beyond the encoded snapshot.
type Store interface {
	SaveSnapshot(ctx context.Context, kind, key string, snap *Snapshot) error
	LoadSnapshot(ctx context.Context, kind, key string) (*Snapshot, error)
}

// Snapshot captures the current state of every position.
func (b *Book) Snapshot() *Snapshot {
	positions := make(map[string]ledger.PositionState, len(b.positions))
	for symbol, pos := range b.positions {
		positions[symbol] = pos.State()
	}
	allocs := make(map[string]float64, len(b.allocations))
	for s, w := range b.allocations {
		allocs[s] = w
	}
	return &Snapshot{Fund: b.fund, Allocations: allocs, Positions: positions}
}

// Restore rebuilds a book from a snapshot. Position options (commission
// model, strict cash) apply to every restored position.
func Restore(snap *Snapshot, opts ...ledger.Option) (*Book, error) {
	if snap == nil {
		return nil, fmt.Errorf("portfolio: nil snapshot")
	}
	if len(snap.Positions) == 0 {
		return nil, fmt.Errorf("portfolio: snapshot holds no positions")
	}
	positions := make(map[string]*ledger.Position, len(snap.Positions))
	for symbol, st := range snap.Positions {
		positions[symbol] = ledger.FromState(st, opts...)
	}
	allocs := make(map[string]float64, len(snap.Allocations))
	for s, w := range snap.Allocations {
		allocs[s] = w
	}
	return &Book{fund: snap.Fund, allocations: allocs, positions: positions}, nil
}

// Encode serializes the snapshot with msgpack.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("portfolio: encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot deserializes a msgpack-encoded snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("portfolio: decode snapshot: %w", err)
	}
	return &snap, nil
}
