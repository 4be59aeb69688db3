package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dupescan/logger"
)

func TestWriterCreatesFreshLedger(t *testing.T) {
	logger.Init("error")
	path := filepath.Join(t.TempDir(), "hashedFiles.csv")
	if err := os.WriteFile(path, []byte("stale content\n"), 0600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Append("aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", "/data/a.txt"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "stale") {
		t.Fatal("prior ledger content must be discarded")
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) != 2 || lines[0] != Header {
		t.Fatalf("unexpected ledger content: %q", content)
	}
	if lines[1] != "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d,/data/a.txt" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestWriterConcurrentAppends(t *testing.T) {
	logger.Init("error")
	path := filepath.Join(t.TempDir(), "ledger.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hash := strings.Repeat("ab", 20)
			if err := w.Append(hash, filepath.Join("/data", "file", string(rune('a'+i%26)))); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if w.Rows() != n {
		t.Fatalf("expected %d rows, got %d", n, w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != n {
		t.Fatalf("expected %d records, got %d", n, len(records))
	}
	for _, r := range records {
		if len(r.Hash) != 40 {
			t.Fatalf("interleaved row detected: %+v", r)
		}
	}
}

func TestLoadMissingLedger(t *testing.T) {
	logger.Init("error")
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	logger.Init("error")
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := Header + "\n" +
		"aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d,/data/a.txt\n" +
		"not-a-row\n" +
		"\n" +
		"7c211433f02071597741e6ff5a8ea34789abbf43,/data/b.txt\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Path != "/data/a.txt" || records[1].Path != "/data/b.txt" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
