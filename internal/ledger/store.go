// Package ledger implements the record store: create, list, update and
// delete over a whole-snapshot backend, plus the date-range summary.
//
// Every operation re-reads the backend. Nothing is cached between calls and
// there is no locking, so two concurrent writers can lose each other's
// changes.
package ledger

import (
	"context"
	"fmt"

	"gastos/internal/core"
	"gastos/internal/log"

	"github.com/shopspring/decimal"
)

// Snapshot persists the whole record sequence at once.
type Snapshot interface {
	Load(ctx context.Context) ([]core.Record, error)
	Save(ctx context.Context, records []core.Record) error
}

// Notifier is told about committed mutations.
type Notifier interface {
	NotifyChange(ctx context.Context, change Change) error
}

// Change describes one committed mutation.
type Change struct {
	Op    string
	Index int
	Count int
}

type Store struct {
	snap     Snapshot
	notifier Notifier
	logger   *log.Logger
	events   *log.StructuredLogger
}

type Option func(*Store)

// WithNotifier publishes a Change after every successful mutation.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(snap Snapshot, opts ...Option) *Store {
	s := &Store{snap: snap}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Load returns the stored sequence; an absent backing store is empty.
func (s *Store) Load(ctx context.Context) ([]core.Record, error) {
	return s.snap.Load(ctx)
}

// Save overwrites the stored sequence.
func (s *Store) Save(ctx context.Context, records []core.Record) error {
	return s.snap.Save(ctx, records)
}

// Append validates a new record, stores it at the end of the sequence and
// returns its index.
func (s *Store) Append(ctx context.Context, t core.RecordType, amount decimal.Decimal, description string, date core.Date) (int, error) {
	rec, err := core.NewRecord(t, amount, description, date)
	if err != nil {
		return 0, err
	}

	records, err := s.snap.Load(ctx)
	if err != nil {
		return 0, err
	}
	records = append(records, rec)
	if err := s.snap.Save(ctx, records); err != nil {
		return 0, err
	}

	index := len(records) - 1
	s.committed(ctx, log.OpAppend, index, rec, len(records))
	return index, nil
}

// Update replaces the record at index. The record is validated before the
// store is touched.
func (s *Store) Update(ctx context.Context, index int, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	records, err := s.snap.Load(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return &core.IndexError{Index: index, Len: len(records)}
	}
	records[index] = rec
	if err := s.snap.Save(ctx, records); err != nil {
		return err
	}

	s.committed(ctx, log.OpUpdate, index, rec, len(records))
	return nil
}

// Delete removes the record at index and returns it. Later records shift
// down by one position.
func (s *Store) Delete(ctx context.Context, index int) (core.Record, error) {
	records, err := s.snap.Load(ctx)
	if err != nil {
		return core.Record{}, err
	}
	if index < 0 || index >= len(records) {
		return core.Record{}, &core.IndexError{Index: index, Len: len(records)}
	}
	removed := records[index]
	records = append(records[:index], records[index+1:]...)
	if err := s.snap.Save(ctx, records); err != nil {
		return core.Record{}, err
	}

	s.committed(ctx, log.OpDelete, index, removed, len(records))
	return removed, nil
}

// Get returns the record currently at index.
func (s *Store) Get(ctx context.Context, index int) (core.Record, error) {
	records, err := s.snap.Load(ctx)
	if err != nil {
		return core.Record{}, err
	}
	if index < 0 || index >= len(records) {
		return core.Record{}, &core.IndexError{Index: index, Len: len(records)}
	}
	return records[index], nil
}

// List returns every record with its current position.
func (s *Store) List(ctx context.Context) ([]core.Entry, error) {
	records, err := s.snap.Load(ctx)
	if err != nil {
		return nil, err
	}
	return core.Indexed(records), nil
}

// Filter returns the records dated within r, keeping their positions.
func (s *Store) Filter(ctx context.Context, r core.Range) ([]core.Entry, error) {
	records, err := s.snap.Load(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterRange(records, r), nil
}

// Summary filters by r and totals the matching records.
func (s *Store) Summary(ctx context.Context, r core.Range) (core.Report, error) {
	entries, err := s.Filter(ctx, r)
	if err != nil {
		return core.Report{}, err
	}
	return core.Report{
		Range:   r,
		Summary: core.SummarizeEntries(entries),
		Entries: entries,
	}, nil
}

func (s *Store) committed(ctx context.Context, op string, index int, rec core.Record, count int) {
	s.events.LogRecordChanged(ctx, op, index, rec.Type.String(), rec.Amount.String(), rec.Description, rec.Date.String())
	if s.notifier == nil {
		return
	}
	// The mutation is already saved; a failed notification is only logged.
	if err := s.notifier.NotifyChange(ctx, Change{Op: op, Index: index, Count: count}); err != nil {
		s.events.LogError(ctx, "Failed to publish ledger change", fmt.Errorf("notify %s: %w", op, err),
			log.ComponentAMQP, op, log.NewFields().WithRecord(index, rec.Type.String(), rec.Amount.String(), rec.Description, rec.Date.String()))
	}
}
