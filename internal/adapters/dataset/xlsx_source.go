package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

// XLSXSource reads the dataset from a spreadsheet on every Load
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource creates a spreadsheet-backed source. An empty sheet selects
// the first sheet of the workbook.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

// Path returns the file the source reads
func (s *XLSXSource) Path() string {
	return s.path
}

// Load reads and parses the workbook
func (s *XLSXSource) Load(ctx context.Context) (*entities.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to read dataset %s", s.path), err)
	}
	return ParseXLSX(s.path, bytes.NewReader(data), s.sheet)
}

// ParseXLSX parses one sheet of a workbook whose first row is the header
func ParseXLSX(source string, r io.Reader, sheet string) (*entities.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("malformed spreadsheet %s", source), err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: workbook has no sheets", source), nil)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to read sheet %q of %s", sheet, source), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: empty dataset, no header row", source), nil)
	}
	return ParseRows(source, rows[0], rows[1:])
}
