package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads the dataset from a local CSV file on every Load
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV-backed dataset source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Path returns the file the source reads
func (s *CSVSource) Path() string {
	return s.path
}

// Load reads and parses the whole file
func (s *CSVSource) Load(ctx context.Context) (*entities.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to read dataset %s", s.path), err)
	}
	return ParseCSV(s.path, bytes.NewReader(data))
}

// ParseCSV parses a CSV document whose first row is the header. The
// delimiter is ',' or ';', whichever appears more often in the header line.
func ParseCSV(source string, r io.Reader) (*entities.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to read dataset %s", source), err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("malformed CSV in %s", source), err)
	}
	if len(all) == 0 {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: empty dataset, no header row", source), nil)
	}
	return ParseRows(source, all[0], all[1:])
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
