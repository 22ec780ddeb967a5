// Package dataset loads the medication table from CSV, XLSX or HTTP sources
// and keeps an optional in-memory snapshot of it.
package dataset

import (
	"fmt"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

type column int

const (
	columnName column = iota
	columnCode
	columnNotes
	columnOverride
)

var columnLabels = map[column]string{
	columnName:     "medication name",
	columnCode:     "diagnosis code",
	columnNotes:    "notes",
	columnOverride: "dispensing mode",
}

// Header aliases after utils.HeaderKey normalization. Flag columns are
// recognized through entities.ParseLocationCode.
var headerAliases = map[string]column{
	"medicamento":            columnName,
	"medicamentos":           columnName,
	"nome":                   columnName,
	"nome_medicamento":       columnName,
	"medication":             columnName,
	"medication_name":        columnName,
	"cid":                    columnCode,
	"cid10":                  columnCode,
	"cid_10":                 columnCode,
	"codigo":                 columnCode,
	"code":                   columnCode,
	"diagnosis_code":         columnCode,
	"informacoes_adicionais": columnNotes,
	"informacoes":            columnNotes,
	"observacoes":            columnNotes,
	"obs":                    columnNotes,
	"notes":                  columnNotes,
	"local_de_dispensacao":   columnOverride,
	"local_dispensacao":      columnOverride,
	"dispensing_mode":        columnOverride,
}

var (
	truthyCells = map[string]bool{"1": true, "1.0": true, "true": true, "sim": true, "s": true, "x": true, "yes": true}
	falsyCells  = map[string]bool{"": true, "0": true, "0.0": true, "false": true, "nao": true, "n": true, "no": true, "nan": true}
)

// headerMap resolves column positions for one table
type headerMap struct {
	columns map[column]int
	flags   map[entities.LocationCode]int
	width   int
}

func parseHeader(source string, header []string) (*headerMap, error) {
	h := &headerMap{
		columns: make(map[column]int),
		flags:   make(map[entities.LocationCode]int),
		width:   len(header),
	}

	for i, raw := range header {
		key := utils.HeaderKey(raw)
		if key == "" {
			continue
		}
		if col, ok := headerAliases[key]; ok {
			if _, dup := h.columns[col]; dup {
				return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: duplicate %s column %q", source, columnLabels[col], raw), nil)
			}
			h.columns[col] = i
			continue
		}
		if code, ok := entities.ParseLocationCode(key); ok {
			if _, dup := h.flags[code]; dup {
				return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: duplicate flag column %q", source, raw), nil)
			}
			h.flags[code] = i
		}
	}

	for _, required := range []column{columnName, columnCode, columnNotes} {
		if _, ok := h.columns[required]; !ok {
			return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: missing required %s column", source, columnLabels[required]), nil)
		}
	}
	return h, nil
}

func (h *headerMap) cell(row []string, col column) string {
	i, ok := h.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseRows turns a header and its data rows into a Dataset. Cells are
// trimmed; rows where every cell is blank are skipped. Invalid flag or
// override values are DATA_LOAD errors naming the row and column.
func ParseRows(source string, header []string, rows [][]string) (*entities.Dataset, error) {
	if len(header) == 0 {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("%s: empty dataset, no header row", source), nil)
	}

	h, err := parseHeader(source, header)
	if err != nil {
		return nil, err
	}

	records := make([]entities.MedicationRecord, 0, len(rows))
	for i, row := range rows {
		rowNumber := i + 1
		if blankRow(row) {
			continue
		}

		record := entities.MedicationRecord{
			Row:            rowNumber,
			MedicationName: h.cell(row, columnName),
			DiagnosisCode:  h.cell(row, columnCode),
			Notes:          h.cell(row, columnNotes),
		}

		if raw := h.cell(row, columnOverride); !isBlankCell(raw) {
			code, ok := entities.ParseLocationCode(raw)
			if !ok {
				return nil, apperrors.NewDataLoadError(
					fmt.Sprintf("%s: row %d column %q: unknown dispensing mode %q", source, rowNumber, header[h.columns[columnOverride]], raw), nil)
			}
			record.DispensingMode = code
		}

		for _, code := range entities.AllLocationCodes() {
			idx, ok := h.flags[code]
			if !ok {
				continue
			}
			value := ""
			if idx < len(row) {
				value = row[idx]
			}
			flag, err := parseFlag(value)
			if err != nil {
				return nil, apperrors.NewDataLoadError(
					fmt.Sprintf("%s: row %d column %q", source, rowNumber, header[idx]), err)
			}
			if flag {
				if record.DispensingFlags == nil {
					record.DispensingFlags = make(map[entities.LocationCode]bool)
				}
				record.DispensingFlags[code] = true
			}
		}

		records = append(records, record)
	}

	return entities.NewDataset(source, records), nil
}

func parseFlag(raw string) (bool, error) {
	v := utils.StripAccents(strings.ToLower(strings.TrimSpace(raw)))
	switch {
	case truthyCells[v]:
		return true, nil
	case falsyCells[v]:
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag value %q", raw)
	}
}

func isBlankCell(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "nan")
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
