// Package worker keeps the Google Sheets mirror in step with the ledger.
package worker

import (
	"context"
	"fmt"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// Source yields the current ledger.
type Source interface {
	Load(ctx context.Context) ([]core.Record, error)
}

// Consumer delivers ledger change messages.
type Consumer interface {
	ConsumeLedgerChanges(ctx context.Context, handler func(context.Context, *amqp.LedgerChangedMessage) error) error
}

// MirrorWorker copies the whole ledger to a mirror on every change message
// and on a periodic resync.
type MirrorWorker struct {
	source Source
	mirror sheets.Mirror
	logger *log.Logger
}

func NewMirrorWorker(source Source, mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes one change message. Positions may have shifted
// since the message was sent, so the full ledger is mirrored.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldOperation, msg.Op,
		log.FieldIndex, msg.Index,
		log.FieldCount, msg.Count)

	records, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	ref, err := w.mirror.Mirror(ctx, records)
	if err != nil {
		return fmt.Errorf("mirror ledger: %w", err)
	}
	w.logger.InfoContext(ctx, "Ledger mirrored",
		log.FieldSheetsRef, ref,
		log.FieldCount, len(records))
	return nil
}

// Resync mirrors the ledger only when the remote copy differs. It covers
// messages lost while the worker was down. It reports whether a write
// happened.
func (w *MirrorWorker) Resync(ctx context.Context) (bool, error) {
	local, err := w.source.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load ledger: %w", err)
	}
	remote, err := w.mirror.ReadRecords(ctx)
	if err != nil {
		// An unreadable mirror is overwritten.
		w.logger.WarnContext(ctx, "Could not read mirror, rewriting it", log.FieldError, err.Error())
		remote = nil
	} else if sameRecords(local, remote) {
		w.logger.DebugContext(ctx, "Mirror up to date", log.FieldCount, len(local))
		return false, nil
	}

	ref, err := w.mirror.Mirror(ctx, local)
	if err != nil {
		return false, fmt.Errorf("mirror ledger: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirror resynced",
		log.FieldSheetsRef, ref,
		log.FieldCount, len(local),
		"previous_count", len(remote))
	return true, nil
}

// Run resyncs once, then consumes change messages and resyncs every
// interval until ctx is cancelled or one side fails. A nil consumer runs the
// periodic resync only.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	if _, err := w.Resync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup resync failed", log.FieldError, err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeLedgerChanges(ctx, w.HandleChange)
		})
	}
	if interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if _, err := w.Resync(ctx); err != nil {
						w.logger.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err.Error())
					}
				}
			}
		})
	}
	return g.Wait()
}

func sameRecords(a, b []core.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
