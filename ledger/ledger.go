// Package ledger owns the hash ledger file: an append-only CSV-style
// record of (hash, path) pairs produced during one scan.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"dupescan/logger"
)

// Header is the first row of every ledger file.
const Header = "HASH,Filename"

// ErrLedgerNotFound marks a grouping run invoked without a ledger.
var ErrLedgerNotFound = errors.New("hash ledger not found")

// Record is one successfully hashed file. Written once, never mutated.
type Record struct {
	Hash string
	Path string
}

// Writer serializes (hash, path) appends to the ledger file. The file
// is created fresh per run; any prior ledger at the path is discarded.
//
// Rows are written raw, without CSV quoting. A path containing a comma
// corrupts its own row; this matches the documented ledger format and
// is a known limitation.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	rows int64
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("could not create ledger %s: %w", path, err)
	}
	w := &Writer{
		file: f,
		buf:  bufio.NewWriterSize(f, 1024*1024),
	}
	if _, err := w.buf.WriteString(Header + "\n"); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.buf.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Append writes one row. Safe for concurrent use; rows never interleave.
func (w *Writer) Append(hash, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.WriteString(hash + "," + path + "\n"); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of records appended so far.
func (w *Writer) Rows() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Load reads a ledger back into memory, preserving row order.
// Malformed rows are skipped with a warning.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLedgerNotFound, path)
		}
		return nil, fmt.Errorf("could not open ledger %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if line == 1 && text == Header {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts := strings.SplitN(text, ",", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			logger.Warnf("Skipping malformed ledger row %d in %s", line, path)
			continue
		}
		records = append(records, Record{Hash: parts[0], Path: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("could not read ledger %s: %w", path, err)
	}
	return records, nil
}
