package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithKVAttachesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	ctx := WithKV(context.Background(), "stage", "clean")
	ctx = WithKV(ctx, "file", "2004.csv")
	Warnf(ctx, "skipped %d rows", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "skipped 3 rows" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["stage"] != "clean" || fields["file"] != "2004.csv" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init("loud", "production"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
