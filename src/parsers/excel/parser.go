package excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/username/partsviewer/backend/src/models"
)

// MaxColumns limits imports to columns A..Z.
const MaxColumns = 26

var ErrNoData = errors.New("spreadsheet has no data rows")

type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first worksheet with raw (unformatted) cell values.
func (p *XLSXParser) Parse(file io.Reader) (*models.Sheet, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}
	return BuildSheet(sheetName, rows)
}

type XLSParser struct{}

func NewXLSParser() *XLSParser {
	return &XLSParser{}
}

// Parse reads the first worksheet of a legacy BIFF workbook.
func (p *XLSParser) Parse(file io.Reader) (*models.Sheet, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls upload: %w", err)
	}
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, ErrNoData
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoData
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return BuildSheet(sheet.Name, rows)
}

// BuildSheet turns a cell matrix whose first row is the header into a Sheet.
// Headers are labelled by column letter ("A열: 부품명", or "B열 (빈칸)" when
// blank) so blank and repeated captions stay distinct. Fully blank data rows
// are dropped.
func BuildSheet(name string, matrix [][]string) (*models.Sheet, error) {
	if len(matrix) < 2 {
		return nil, ErrNoData
	}

	width := len(matrix[0])
	if width > MaxColumns {
		width = MaxColumns
	}
	headers := make([]string, width)
	for i := 0; i < width; i++ {
		headers[i] = ColumnLabel(i, matrix[0][i])
	}

	sheet := &models.Sheet{Name: name, Headers: headers, Rows: make([]models.Row, 0, len(matrix)-1)}
	for _, cells := range matrix[1:] {
		row := make(models.Row, width)
		blank := true
		for i, h := range headers {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			row[h] = v
		}
		if !blank {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	if len(sheet.Rows) == 0 {
		return nil, ErrNoData
	}
	return sheet, nil
}

// ColumnLabel renders the header label of the zero-based column idx.
func ColumnLabel(idx int, caption string) string {
	letter := string(rune('A' + idx))
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return letter + "열 (빈칸)"
	}
	return letter + "열: " + caption
}
