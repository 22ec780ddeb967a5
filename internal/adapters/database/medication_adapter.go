package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/postgres"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

// DefaultMedicationTable is the table read when none is configured
const DefaultMedicationTable = "medications"

// MedicationAdapter reads the medication table from Postgres. Every Load
// runs one SELECT ordered by row_number.
type MedicationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	table  string
}

var _ repositories.DatasetSource = (*MedicationAdapter)(nil)

// NewMedicationAdapter creates a new medication adapter
func NewMedicationAdapter(client *postgres.Client, table string) *MedicationAdapter {
	if strings.TrimSpace(table) == "" {
		table = DefaultMedicationTable
	}
	return &MedicationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		table:  table,
	}
}

// Load implements repositories.DatasetSource
func (a *MedicationAdapter) Load(ctx context.Context) (*entities.Dataset, error) {
	source := "postgres:" + a.table

	query, args, err := a.db.Select(
		"row_number", "medication_name", "diagnosis_code", "notes", "dispensing_mode",
		"district", "municipal", "special",
	).From(a.table).
		Order(goqu.I("row_number").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewDataLoadError("failed to build medication query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to query %s", a.table), err)
	}
	defer rows.Close()

	var records []entities.MedicationRecord
	for rows.Next() {
		var (
			row                          int
			name, code                   sql.NullString
			notes, mode                  sql.NullString
			district, municipal, special sql.NullBool
		)
		if err := rows.Scan(&row, &name, &code, &notes, &mode, &district, &municipal, &special); err != nil {
			return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to scan %s", a.table), err)
		}

		record := entities.MedicationRecord{
			Row:            row,
			MedicationName: strings.TrimSpace(name.String),
			DiagnosisCode:  strings.TrimSpace(code.String),
			Notes:          strings.TrimSpace(notes.String),
			DispensingFlags: map[entities.LocationCode]bool{
				entities.LocationDistrict:  district.Valid && district.Bool,
				entities.LocationMunicipal: municipal.Valid && municipal.Bool,
				entities.LocationSpecial:   special.Valid && special.Bool,
			},
		}
		if raw := strings.TrimSpace(mode.String); raw != "" {
			loc, ok := entities.ParseLocationCode(raw)
			if !ok {
				return nil, apperrors.NewDataLoadError(
					fmt.Sprintf("%s: row %d: unknown dispensing_mode %q", source, row, raw), nil)
			}
			record.DispensingMode = loc
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to read %s", a.table), err)
	}

	return entities.NewDataset(source, records), nil
}

const medicationSchema = `CREATE TABLE IF NOT EXISTS %s (
	row_number      INTEGER PRIMARY KEY,
	medication_name TEXT NOT NULL DEFAULT '',
	diagnosis_code  TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	dispensing_mode TEXT,
	district        BOOLEAN NOT NULL DEFAULT FALSE,
	municipal       BOOLEAN NOT NULL DEFAULT FALSE,
	special         BOOLEAN NOT NULL DEFAULT FALSE
)`

// EnsureSchema creates the medication table when it does not exist
func (a *MedicationAdapter) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(medicationSchema, pq.QuoteIdentifier(a.table))
	if _, err := a.client.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s: %w", a.table, err)
	}
	return nil
}

// Replace swaps the whole table content for ds in one transaction, so
// readers see either the old rows or the new ones.
func (a *MedicationAdapter) Replace(ctx context.Context, ds *entities.Dataset) error {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := a.db.Delete(a.table).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear %s: %w", a.table, err)
	}

	if ds.Len() > 0 {
		rows := make([]interface{}, 0, ds.Len())
		for _, r := range ds.Records {
			var mode interface{}
			if r.DispensingMode != "" {
				mode = string(r.DispensingMode)
			}
			rows = append(rows, goqu.Record{
				"row_number":      r.Row,
				"medication_name": r.MedicationName,
				"diagnosis_code":  r.DiagnosisCode,
				"notes":           r.Notes,
				"dispensing_mode": mode,
				"district":        r.Flag(entities.LocationDistrict),
				"municipal":       r.Flag(entities.LocationMunicipal),
				"special":         r.Flag(entities.LocationSpecial),
			})
		}
		query, args, err = a.db.Insert(a.table).Rows(rows...).ToSQL()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", a.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", a.table, err)
	}
	return nil
}
