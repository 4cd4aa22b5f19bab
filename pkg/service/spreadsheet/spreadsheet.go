package spreadsheet

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/utils/safe"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheet is returned when a workbook has no worksheet
	ErrNoSheet = goerr.New("workbook has no sheet")
	// ErrNoHeader is returned when the first sheet has no header row
	ErrNoHeader = goerr.New("sheet has no header row")
)

// Row is a data row keyed by header. Number is the 1-based sheet row.
type Row struct {
	Number int
	Values map[string]string
}

// IsBlank reports whether every cell of the row is empty
func (r Row) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Read parses the first sheet of an xlsx workbook. Row 1 is the header;
// blank rows and columns without a header are skipped.
func Read(ctx context.Context, r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open workbook")
	}
	defer safe.Close(ctx, f)

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, goerr.Wrap(ErrNoSheet, "failed to read workbook")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rows", goerr.V("sheet", sheets[0]))
	}
	if len(rows) == 0 {
		return nil, goerr.Wrap(ErrNoHeader, "failed to read workbook", goerr.V("sheet", sheets[0]))
	}

	headers := make([]string, len(rows[0]))
	hasHeader := false
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			hasHeader = true
		}
	}
	if !hasHeader {
		return nil, goerr.Wrap(ErrNoHeader, "failed to read workbook", goerr.V("sheet", sheets[0]))
	}

	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		row := Row{Number: i + 2, Values: make(map[string]string, len(headers))}
		for col, header := range headers {
			if header == "" {
				continue
			}
			if col < len(cells) {
				row.Values[header] = strings.TrimSpace(cells[col])
			} else {
				row.Values[header] = ""
			}
		}
		if row.IsBlank() {
			continue
		}
		out = append(out, row)
	}

	return out, nil
}

// Sheet is a table to be written as a workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Write renders sheet as an xlsx workbook with a bold, frozen header row.
func Write(ctx context.Context, w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer safe.Close(ctx, f)

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		index, err := f.NewSheet(name)
		if err != nil {
			return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", name))
		}
		f.SetActiveSheet(index)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return goerr.Wrap(err, "failed to delete default sheet")
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create header style")
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return goerr.Wrap(err, "failed to write header", goerr.V("sheet", name))
	}
	if len(sheet.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve header range")
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return goerr.Wrap(err, "failed to style header")
		}
	}

	for i, values := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve cell", goerr.V("row", i+2))
		}
		row := values
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return goerr.Wrap(err, "failed to write row", goerr.V("row", i+2))
		}
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return goerr.Wrap(err, "failed to freeze header")
	}

	if _, err := f.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}
