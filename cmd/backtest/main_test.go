package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"WalkSim/internal/domain/models"
)

func TestRunSyntheticWritesExports(t *testing.T) {
	dir := t.TempDir()
	o := options{
		symbols: "AAPL", days: 30, balance: 10000, source: "synthetic",
		bars: 300, model: "logreg", split: "chronological", seed: 7,
		workers: 1, outDir: dir, format: "csv", logLevel: "error",
	}
	if err := run(context.Background(), o); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"AAPL_trades.csv", "AAPL_equity.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestRunRejectsOutOfRangeInputs(t *testing.T) {
	base := options{symbols: "AAPL", days: 30, balance: 10000, source: "synthetic", bars: 300, model: "logreg", split: "chronological", workers: 1, logLevel: "error"}
	bad := base
	bad.days = 10
	if err := run(context.Background(), bad); err == nil {
		t.Fatalf("expected days error")
	}
	bad = base
	bad.balance = 10
	if err := run(context.Background(), bad); err == nil {
		t.Fatalf("expected balance error")
	}
	bad = base
	bad.source = "ftp"
	if err := run(context.Background(), bad); err == nil {
		t.Fatalf("expected source error")
	}
}

func TestReportListsFailuresWithKind(t *testing.T) {
	var buf bytes.Buffer
	failed := map[string]error{
		"ZZZ": models.NewError(models.KindInsufficientSamples, "simulate", "ZZZ", errors.New("too short")),
	}
	report(&buf, nil, failed)
	out := buf.String()
	if !strings.Contains(out, "ZZZ") || !strings.Contains(out, string(models.KindInsufficientSamples)) {
		t.Fatalf("unexpected report: %q", out)
	}
}
