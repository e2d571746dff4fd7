package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestRecentParsesNewestFirst(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", "activity.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	book.clock = func() time.Time { return fixed }
	book.Info("KYC approved · %s", "Rajesh Kumar")
	book.Error("Reject failed · %s: %s", "Amit Singh", "multi\nline")

	entries := book.Recent(10)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != LevelError || entries[0].Message != "Reject failed · Amit Singh: multi line" {
		t.Fatalf("unexpected newest entry %+v", entries[0])
	}
	if entries[1].Level != LevelInfo || !entries[1].Time.Equal(fixed) {
		t.Fatalf("unexpected oldest entry %+v", entries[1])
	}
}

func TestMissingFileYieldsNothing(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "activity.log"))
	if err != nil {
		t.Fatal(err)
	}
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v/%d", lines, total)
	}
	var nilBook *Logbook
	nilBook.Info("ignored")
	if entries := nilBook.Recent(3); len(entries) != 0 {
		t.Fatalf("expected no entries from nil logbook")
	}
}
