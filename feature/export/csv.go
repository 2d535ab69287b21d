package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"lakehouse-utils/core/table"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Encoding looks up a text encoding by its web name, e.g. "shift_jis" or "windows-1252".
// An empty name or "utf-8" returns nil, which readers and writers treat as UTF-8.
func Encoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == encoding.Nop {
		return nil, nil
	}
	if n, _ := htmlindex.Name(enc); n == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// WriteCSV writes a header row followed by one record per row.
// Nulls are written as empty fields and list cells as comma-joined text.
func WriteCSV(w io.Writer, t *table.Table, enc encoding.Encoding) error {
	var tw *transform.Writer
	if enc != nil {
		tw = transform.NewWriter(w, enc.NewEncoder())
		w = tw
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, rec := range t.Records() {
		for j, v := range rec {
			record[j] = cellText(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}

// ReadCSV reads a CSV document whose first record is the header.
// Empty fields become nulls; every other field is kept as a string.
func ReadCSV(r io.Reader, enc encoding.Encoding) (*table.Table, error) {
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return newTableFromRecords(records)
}
