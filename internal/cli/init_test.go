package cli

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/sheets/memory"
)

func TestSetupLogger(t *testing.T) {
	l := SetupLogger("debug", log.ComponentWorker)
	if l.Component() != log.ComponentWorker {
		t.Fatalf("unexpected component %q", l.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("default logger should be at debug")
	}
	SetupLogger("info", log.ComponentApp)
}

func TestInitMirrorFallsBackToMemory(t *testing.T) {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	m, err := InitMirror(context.Background(), logger, &config.Config{})
	if err != nil {
		t.Fatalf("InitMirror: %v", err)
	}
	if _, ok := m.(*memory.Mirror); !ok {
		t.Fatalf("expected memory mirror, got %T", m)
	}
}
