package export

import (
	"errors"
	"fmt"
	"os"

	"lakehouse-utils/core/table"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used when none is given.
const DefaultSheet = "Sheet1"

// WriteXLSX writes a single table to a new xlsx workbook.
func WriteXLSX(path string, t *table.Table, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return WriteSheets(path, []*table.Table{t}, []string{sheet}, false)
}

// WriteSheets writes one sheet per table. When sheetNames is nil the sheets are named
// Sheet1, Sheet2, ... With appendMode set and an existing file at path, the new sheets
// are added next to the existing ones; a name clash is an error.
func WriteSheets(path string, tables []*table.Table, sheetNames []string, appendMode bool) error {
	names, err := resolveSheetNames(len(tables), sheetNames)
	if err != nil {
		return err
	}

	f, existing, err := openWorkbook(path, appendMode)
	if err != nil {
		return err
	}
	defer f.Close()

	if existing {
		for _, name := range names {
			idx, err := f.GetSheetIndex(name)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrSheetNames, err)
			}
			if idx >= 0 {
				return fmt.Errorf("%w: sheet %q already exists in %s", ErrSheetNames, name, path)
			}
		}
	}

	for i, t := range tables {
		name := names[i]
		if i == 0 && !existing {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, t); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ReadXLSX reads a sheet of an xlsx workbook; the first row is the header.
// An empty sheet name reads the first sheet.
func ReadXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	records := rows[:0]
	for _, r := range rows {
		if len(r) > 0 {
			records = append(records, r)
		}
	}
	return newTableFromRecords(records)
}

func resolveSheetNames(n int, names []string) ([]string, error) {
	if names == nil {
		names = make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("Sheet%d", i+1)
		}
		return names, nil
	}

	if len(names) != n {
		return nil, fmt.Errorf("%w: got %d names for %d tables", ErrSheetNames, len(names), n)
	}

	seen := make(map[string]struct{}, n)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate sheet name %q", ErrSheetNames, name)
		}
		seen[name] = struct{}{}
	}
	return names, nil
}

func openWorkbook(path string, appendMode bool) (*excelize.File, bool, error) {
	if !appendMode {
		return excelize.NewFile(), false, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), false, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s for append: %w", path, err)
	}
	return f, true, nil
}

func writeSheet(f *excelize.File, sheet string, t *table.Table) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}

	for i, rec := range t.Records() {
		for j, v := range rec {
			rec[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}
