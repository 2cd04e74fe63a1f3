package adapter

import "io"

// Row is one spreadsheet row keyed by column header, as uploaded.
type Row map[string]string

// SpreadsheetReader turns an uploaded binary file into rows. The importer
// consumes the rows; it never touches the binary format itself.
type SpreadsheetReader interface {
	Rows(r io.Reader) ([]Row, error)
}
