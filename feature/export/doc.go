// Package export moves tables in and out of spreadsheet and delimited files.
//
// # Formats
//
//   - xlsx: WriteXLSX, WriteSheets and ReadXLSX, backed by excelize.
//   - Excel 2003 XML (SpreadsheetML): WriteSpreadsheetML. Dates use a DD/MM/YYYY style,
//     numbers are typed as Number and null cells are skipped with ss:Index keeping the
//     remaining cells aligned.
//   - CSV: WriteCSV and ReadCSV, with an optional source encoding.
//   - Legacy xls: ReadXLS (read only).
//
// ReadFile and WriteFile dispatch on the file extension and are what the commands use.
//
// Readers return every cell as a string or nil; apply a schema.Schema to get typed values.
package export
