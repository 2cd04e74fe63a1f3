package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
)

var _ adapter.SpreadsheetReader = (*XLSXReader)(nil)

// XLSXReader reads the first sheet of an Excel workbook and maps every data
// row onto the header row. Header names are lower-cased so callers can look
// up columns without caring how the export tool capitalised them.
type XLSXReader struct{}

func NewXLSXReader() *XLSXReader { return &XLSXReader{} }

func (x *XLSXReader) Rows(r io.Reader) ([]adapter.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]adapter.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(adapter.Row, len(header))
		for i, cell := range raw {
			if i >= len(header) || header[i] == "" {
				continue
			}
			// Two headers can collapse to one name after lower-casing
			// ("code" and "CODE"); the first column wins, later variants
			// never overwrite it.
			if _, ok := row[header[i]]; ok {
				continue
			}
			row[header[i]] = strings.TrimSpace(cell)
		}
		out = append(out, row)
	}
	return out, nil
}
