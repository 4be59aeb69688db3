// Package dupes groups hash ledger records into duplicate sets and
// writes the duplicates report.
package dupes

import (
	"encoding/csv"
	"fmt"
	"os"

	"dupescan/ledger"
)

// Find returns the ledger rows whose hash occurs more than once.
// Groups keep first-seen hash order; members keep ledger order.
// Groups of size one are dropped entirely.
func Find(records []ledger.Record) []ledger.Record {
	byHash := make(map[string][]ledger.Record, len(records))
	var order []string
	for _, r := range records {
		if _, seen := byHash[r.Hash]; !seen {
			order = append(order, r.Hash)
		}
		byHash[r.Hash] = append(byHash[r.Hash], r)
	}

	var result []ledger.Record
	for _, hash := range order {
		group := byHash[hash]
		if len(group) > 1 {
			result = append(result, group...)
		}
	}
	return result
}

// WriteReport overwrites the duplicates report at path with one quoted
// CSV row per duplicate file, under a HASH,Path header.
func WriteReport(path string, rows []ledger.Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not create duplicates report %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"HASH", "Path"}); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Hash, r.Path}); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
