package backend

import (
	"context"

	"gastos/internal/core"
	"gastos/internal/ledger"

	"github.com/shopspring/decimal"
)

// Backend is the record store as seen by the presentation layer.
type Backend interface {
	Load(ctx context.Context) ([]core.Record, error)
	Append(ctx context.Context, t core.RecordType, amount decimal.Decimal, description string, date core.Date) (int, error)
	Get(ctx context.Context, index int) (core.Record, error)
	Update(ctx context.Context, index int, rec core.Record) error
	Delete(ctx context.Context, index int) (core.Record, error)
	List(ctx context.Context) ([]core.Entry, error)
	Filter(ctx context.Context, r core.Range) ([]core.Entry, error)
	Summary(ctx context.Context, r core.Range) (core.Report, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	// Snapshot is the raw storage behind Backend, for readers such as the
	// mirror worker.
	Snapshot ledger.Snapshot
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// JSON file specific
	DataFile string

	// SQLite specific
	SQLiteDBPath string

	// Change notifications; empty URL disables them.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// SkipNotifier leaves the publisher out for processes that never
	// mutate the ledger.
	SkipNotifier bool
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
