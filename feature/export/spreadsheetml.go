package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"lakehouse-utils/core/table"
)

const (
	spreadsheetNS  = "urn:schemas-microsoft-com:office:spreadsheet"
	dateStyleID    = "sDate"
	dateTimeLayout = "2006-01-02T15:04:05.000"
)

type xmlWorkbook struct {
	XMLName   xml.Name     `xml:"urn:schemas-microsoft-com:office:spreadsheet Workbook"`
	NSOffice  string       `xml:"xmlns:o,attr"`
	NSExcel   string       `xml:"xmlns:x,attr"`
	NSSheet   string       `xml:"xmlns:ss,attr"`
	Styles    []xmlStyle   `xml:"Styles>Style"`
	Worksheet xmlWorksheet `xml:"Worksheet"`
}

type xmlStyle struct {
	ID           string          `xml:"ss:ID,attr"`
	NumberFormat xmlNumberFormat `xml:"NumberFormat"`
}

type xmlNumberFormat struct {
	Format string `xml:"ss:Format,attr"`
}

type xmlWorksheet struct {
	Name string   `xml:"ss:Name,attr"`
	Rows []xmlRow `xml:"Table>Row"`
}

type xmlRow struct {
	Cells []xmlCell `xml:"Cell"`
}

type xmlCell struct {
	Index   int     `xml:"ss:Index,attr,omitempty"`
	StyleID string  `xml:"ss:StyleID,attr,omitempty"`
	Data    xmlData `xml:"Data"`
}

type xmlData struct {
	Type  string `xml:"ss:Type,attr"`
	Value string `xml:",chardata"`
}

// WriteSpreadsheetML writes a table as an Excel 2003 XML workbook with a single sheet.
// Null cells are left out; the next written cell carries ss:Index so columns stay aligned.
func WriteSpreadsheetML(w io.Writer, t *table.Table, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	wb := xmlWorkbook{
		NSOffice: "urn:schemas-microsoft-com:office:office",
		NSExcel:  "urn:schemas-microsoft-com:office:excel",
		NSSheet:  spreadsheetNS,
		Styles: []xmlStyle{
			{ID: dateStyleID, NumberFormat: xmlNumberFormat{Format: "DD/MM/YYYY"}},
		},
		Worksheet: xmlWorksheet{Name: sheet},
	}

	header := xmlRow{Cells: make([]xmlCell, len(t.Columns))}
	for i, c := range t.Columns {
		header.Cells[i] = xmlCell{Data: xmlData{Type: "String", Value: c}}
	}
	wb.Worksheet.Rows = append(wb.Worksheet.Rows, header)

	for _, rec := range t.Records() {
		var row xmlRow
		skipped := false
		for j, v := range rec {
			c, ok := spreadsheetCell(v)
			if !ok {
				skipped = true
				continue
			}
			if skipped {
				c.Index = j + 1
				skipped = false
			}
			row.Cells = append(row.Cells, c)
		}
		wb.Worksheet.Rows = append(wb.Worksheet.Rows, row)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(wb); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return enc.Close()
}

// spreadsheetCell converts a value into a typed cell. It returns false for nulls.
func spreadsheetCell(v any) (xmlCell, bool) {
	v = cellValue(v)
	switch x := v.(type) {
	case nil:
		return xmlCell{}, false
	case time.Time:
		return xmlCell{
			StyleID: dateStyleID,
			Data:    xmlData{Type: "DateTime", Value: x.Format(dateTimeLayout)},
		}, true
	case bool:
		value := "0"
		if x {
			value = "1"
		}
		return xmlCell{Data: xmlData{Type: "Boolean", Value: value}}, true
	case float64:
		return floatCell(x), true
	case float32:
		return floatCell(float64(x)), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return xmlCell{Data: xmlData{Type: "Number", Value: fmt.Sprintf("%d", x)}}, true
	default:
		return xmlCell{Data: xmlData{Type: "String", Value: cellText(x)}}, true
	}
}

func floatCell(f float64) xmlCell {
	if math.IsInf(f, 0) {
		return xmlCell{Data: xmlData{Type: "String", Value: strconv.FormatFloat(f, 'f', -1, 64)}}
	}
	return xmlCell{Data: xmlData{Type: "Number", Value: strconv.FormatFloat(f, 'f', -1, 64)}}
}
