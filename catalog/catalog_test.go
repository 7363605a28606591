package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndRecent(t *testing.T) {
	c := openTestCatalog(t)

	first := Run{
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DataPath:   "cs248.txt",
		DataHash:   "00aa",
		MetaPath:   "cs248_meta.txt",
		MetaHash:   "00bb",
		Rows:       10000,
		ScaleMode:  "user",
		ScaleMin:   0,
		ScaleMax:   3000,
		Cmap:       "jet",
		OutputPath: "cs248_output.png",
	}
	if _, err := c.Record(first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	second := first
	second.StartedAt = second.StartedAt.Add(time.Hour)
	second.OutputPath = "cs248_v2.png"
	if _, err := c.Record(second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	runs, err := c.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs; got %d", len(runs))
	}
	if runs[0].OutputPath != "cs248_v2.png" {
		t.Fatalf("expected newest first; got %q", runs[0].OutputPath)
	}
	got := runs[1]
	if got.DataPath != first.DataPath || got.Rows != first.Rows ||
		got.ScaleMax != first.ScaleMax || got.Cmap != first.Cmap {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if !got.StartedAt.Equal(first.StartedAt) {
		t.Fatalf("expected timestamp %v; got %v", first.StartedAt, got.StartedAt)
	}
}

func TestRecentLimit(t *testing.T) {
	c := openTestCatalog(t)
	for i := 0; i < 5; i++ {
		if _, err := c.Record(Run{StartedAt: time.Now(), ScaleMode: "auto", Cmap: "viridis"}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	runs, err := c.Recent(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected limit of 3; got %d", len(runs))
	}
}

func TestFingerprintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("-118.5 34.0 500\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	a, err := FingerprintFile(path)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	b, err := FingerprintFile(path)
	if err != nil {
		t.Fatalf("fingerprint again: %v", err)
	}
	if a != b {
		t.Fatalf("expected stable fingerprint; got %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars; got %q", a)
	}

	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(other, []byte("-118.5 34.0 501\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ohash, err := FingerprintFile(other)
	if err != nil {
		t.Fatalf("fingerprint other: %v", err)
	}
	if ohash == a {
		t.Fatalf("expected different contents to hash differently")
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	if _, err := FingerprintFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
