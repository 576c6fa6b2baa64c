// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/cograph/internal/record"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAllRecords reads all records from a JSONL file.
// Returns an error if any record fails structural validation (fail-fast).
func ReadAllRecords(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file is an empty record set
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var records []record.Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r record.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record on line %d: %w", lineNum, err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return records, nil
}

// AppendRecords adds records to the end of a JSONL file.
func AppendRecords(path string, records []record.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()

	return writeRecords(f, records)
}

// WriteAllRecords writes all records to a JSONL file, replacing existing content.
func WriteAllRecords(path string, records []record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}
	defer f.Close()

	return writeRecords(f, records)
}

func writeRecords(f *os.File, records []record.Record) error {
	w := bufio.NewWriter(f)
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing records: %w", err)
	}
	return nil
}

// MergeResult summarizes a MergeRecords call.
type MergeResult struct {
	Added    int `json:"added"`
	Replaced int `json:"replaced"`
}

// MergeRecords returns existing with incoming folded in. A record whose
// (kind, source) already exists replaces it in place; new records are
// appended in incoming order.
func MergeRecords(existing, incoming []record.Record) ([]record.Record, MergeResult) {
	merged := make([]record.Record, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	index := make(map[record.Key]int, len(merged))
	for i := range merged {
		index[merged[i].Key()] = i
	}

	var res MergeResult
	for _, r := range incoming {
		k := r.Key()
		if i, ok := index[k]; ok {
			merged[i] = r
			res.Replaced++
			continue
		}
		index[k] = len(merged)
		merged = append(merged, r)
		res.Added++
	}
	return merged, res
}
