package export

import (
	"fmt"
	"io"

	"lakehouse-utils/core/table"

	"github.com/extrame/xls"
	"gitlab.com/osaki-lab/iowrapper"
)

// ReadXLS reads a sheet of a legacy BIFF (.xls) workbook; the first row is the header.
func ReadXLS(r io.Reader, sheetIndex int) (t *table.Table, err error) {
	defer func() {
		if p := recover(); p != nil {
			t, err = nil, fmt.Errorf("failed to read xls file: %v", p)
		}
	}()

	wb, err := xls.OpenReader(iowrapper.NewSeeker(r), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls file: %w", err)
	}

	sheet := wb.GetSheet(sheetIndex)
	if sheet == nil {
		return nil, fmt.Errorf("%w: sheet %d", ErrEmptySheet, sheetIndex)
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row, ok := sheetRow(sheet, i)
		if !ok || row == nil {
			continue
		}

		record := make([]string, 0, row.LastCol())
		for col := 0; col < row.LastCol(); col++ {
			record = append(record, row.Col(col))
		}
		records = append(records, record)
	}

	return newTableFromRecords(records)
}

// sheetRow guards against the panics xls raises for rows missing from the sheet.
func sheetRow(sheet *xls.WorkSheet, i int) (r *xls.Row, ok bool) {
	defer func() {
		if recover() != nil {
			r, ok = nil, false
		}
	}()
	return sheet.Row(i), true
}
