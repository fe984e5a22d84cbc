package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets/memory"

	"github.com/shopspring/decimal"
)

type staticSource struct {
	records []core.Record
	err     error
}

func (s *staticSource) Load(context.Context) ([]core.Record, error) {
	return s.records, s.err
}

// chanConsumer hands queued messages to the handler, then blocks until ctx
// is done.
type chanConsumer struct {
	msgs    []*amqp.LedgerChangedMessage
	handled chan error
}

func (c *chanConsumer) ConsumeLedgerChanges(ctx context.Context, handler func(context.Context, *amqp.LedgerChangedMessage) error) error {
	for _, m := range c.msgs {
		c.handled <- handler(ctx, m)
	}
	<-ctx.Done()
	return ctx.Err()
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func sample() []core.Record {
	return []core.Record{
		{Type: core.Income, Amount: decimal.NewFromInt(1000), Description: "salary", Date: core.NewDate(2024, 1, 1)},
	}
}

func TestHandleChangeMirrorsLedger(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(&staticSource{records: sample()}, mirror, quietLogger())

	if err := w.HandleChange(context.Background(), amqp.NewLedgerChangedMessage("append", 0, 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got, _ := mirror.ReadRecords(context.Background())
	if len(got) != 1 || got[0].Description != "salary" {
		t.Fatalf("unexpected mirror %+v", got)
	}
}

func TestHandleChangeLoadError(t *testing.T) {
	w := NewMirrorWorker(&staticSource{err: errors.New("corrupt")}, memory.New(), quietLogger())
	if err := w.HandleChange(context.Background(), amqp.NewLedgerChangedMessage("delete", 0, 0)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}

func TestResyncSkipsWhenUpToDate(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(&staticSource{records: sample()}, mirror, quietLogger())
	ctx := context.Background()

	wrote, err := w.Resync(ctx)
	if err != nil || !wrote {
		t.Fatalf("first resync should write: wrote=%v err=%v", wrote, err)
	}
	wrote, err = w.Resync(ctx)
	if err != nil || wrote {
		t.Fatalf("second resync should be a no-op: wrote=%v err=%v", wrote, err)
	}
	if mirror.Writes() != 1 {
		t.Fatalf("expected 1 write, got %d", mirror.Writes())
	}
}

func TestRunConsumesAndStops(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(&staticSource{records: sample()}, mirror, quietLogger())
	consumer := &chanConsumer{
		msgs:    []*amqp.LedgerChangedMessage{amqp.NewLedgerChangedMessage("append", 0, 1)},
		handled: make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer, time.Hour) }()

	select {
	case err := <-consumer.handled:
		if err != nil {
			t.Fatalf("handler: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message was not handled")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
	// startup resync + one message
	if mirror.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", mirror.Writes())
	}
}
