package export

import "errors"

var (
	// ErrEmptySheet is returned when a sheet or file has no header row.
	ErrEmptySheet = errors.New("no header row found")
	// ErrDuplicateHeader is returned when two header cells share a name.
	ErrDuplicateHeader = errors.New("duplicate column header")
	// ErrSheetNames is returned when sheet names do not line up with the tables to write.
	ErrSheetNames = errors.New("invalid sheet names")
	// ErrUnsupportedFormat is returned for file extensions no reader or writer handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
