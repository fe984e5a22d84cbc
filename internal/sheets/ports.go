package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror replaces the remote copy of the ledger with records.
	LedgerMirror interface {
		Mirror(ctx context.Context, records []core.Record) (ref string, err error)
	}

	// LedgerReader reads the mirrored rows back.
	LedgerReader interface {
		ReadRecords(ctx context.Context) ([]core.Record, error)
	}

	Mirror interface {
		LedgerMirror
		LedgerReader
	}
)

// Header is the first row written to a mirrored sheet.
var Header = []string{"tipo", "monto", "descripcion", "fecha"}
