// Package memory is an in-process ledger mirror, used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

type Mirror struct {
	mu      sync.Mutex
	records []core.Record
	writes  int
}

var _ ports.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// Mirror replaces the held copy and returns a synthetic reference.
func (m *Mirror) Mirror(_ context.Context, records []core.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]core.Record(nil), records...)
	m.writes++
	return fmt.Sprintf("mem:%d:%d", m.writes, len(records)), nil
}

func (m *Mirror) ReadRecords(_ context.Context) ([]core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Record{}, m.records...), nil
}

// Writes reports how many times Mirror was called.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
