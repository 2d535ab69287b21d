package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lakehouse-utils/core/table"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/encoding"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options tune ReadFile and WriteFile.
type Options struct {
	// Sheet selects the worksheet. For xls files it is a zero-based index.
	Sheet string

	// Encoding is the text encoding of CSV files. Nil means UTF-8.
	Encoding encoding.Encoding
}

// Format returns the normalized extension of a path, e.g. "csv" or "xlsx".
func Format(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// ReadFile reads a csv, xlsx, xls or json file into a table.
func ReadFile(path string, opts Options) (*table.Table, error) {
	switch Format(path) {
	case "xlsx", "xlsm":
		return ReadXLSX(path, opts.Sheet)
	case "csv", "txt", "xls", "json":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch Format(path) {
	case "csv", "txt":
		return ReadCSV(f, opts.Encoding)
	case "xls":
		idx := 0
		if opts.Sheet != "" {
			if idx, err = strconv.Atoi(opts.Sheet); err != nil {
				return nil, fmt.Errorf("xls sheet must be an index, got %q", opts.Sheet)
			}
		}
		return ReadXLS(f, idx)
	case "json":
		var t table.Table
		if err := json.NewDecoder(f).Decode(&t); err != nil {
			return nil, err
		}
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// WriteFile writes a table to a csv, xlsx, xml (SpreadsheetML) or json file.
func WriteFile(path string, t *table.Table, opts Options) error {
	if Format(path) == "xlsx" {
		return WriteXLSX(path, t, opts.Sheet)
	}

	switch Format(path) {
	case "csv", "xml", "json":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch Format(path) {
	case "csv":
		err = WriteCSV(f, t, opts.Encoding)
	case "xml":
		err = WriteSpreadsheetML(f, t, opts.Sheet)
	case "json":
		err = json.NewEncoder(f).Encode(t)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
