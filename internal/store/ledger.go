package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/model"
)

// ReplaceLedgerFile atomically replaces the contribution of one source
// file in lancamentos: stage the materialized rows, widen the
// destination if they carry new columns, then delete-and-insert the
// file's partition inside a single transaction. Re-ingesting a file
// name always leaves exactly the latest generation of its rows, never
// a union of old and new.
func (s *Store) ReplaceLedgerFile(fileName string, table *model.Table, policy RetryPolicy) error {
	if fileName == "" {
		return fmt.Errorf("empty source file name")
	}

	columns := append([]string{}, table.Columns...)
	columns = append(columns, model.ColSourceFileName, model.ColIngestedAt)

	staged := &model.Table{Columns: columns, Rows: stampControl(table, fileName)}

	if err := s.EnsureLedgerColumns(columns); err != nil {
		return fmt.Errorf("failed to widen lancamentos: %w", err)
	}

	staging, err := s.createStaging(columns)
	if err != nil {
		return err
	}
	defer s.dropStaging(staging)

	if err := s.fillStaging(staging, staged); err != nil {
		return err
	}

	cols, err := quoteIdents(columns)
	if err != nil {
		return err
	}
	colList := strings.Join(cols, ", ")

	return policy.Do(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(
			"DELETE FROM lancamentos WHERE source_file_name = ?", fileName,
		); err != nil {
			return fmt.Errorf("failed to delete prior generation: %w", err)
		}
		if _, err := tx.Exec(fmt.Sprintf(
			"INSERT INTO lancamentos (%s) SELECT %s FROM %s", colList, colList, staging,
		)); err != nil {
			return fmt.Errorf("failed to insert staged rows: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit scoped replace: %w", err)
		}
		return nil
	})
}

// stampControl appends the control values to every row.
func stampControl(table *model.Table, fileName string) [][]sql.NullString {
	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	rows := make([][]sql.NullString, len(table.Rows))
	for i, row := range table.Rows {
		stamped := make([]sql.NullString, 0, len(row)+2)
		stamped = append(stamped, row...)
		stamped = append(stamped,
			sql.NullString{String: fileName, Valid: true},
			sql.NullString{String: ingestedAt, Valid: true},
		)
		rows[i] = stamped
	}
	return rows
}

// EnsureLedgerColumns widens lancamentos so it contains every required
// column. Widening is monotonic: columns are only ever added, never
// dropped or renamed.
func (s *Store) EnsureLedgerColumns(required []string) error {
	existing, err := s.LedgerColumns()
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}

	for _, col := range required {
		if have[col] {
			continue
		}
		q, err := quoteIdent(col)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(
			fmt.Sprintf("ALTER TABLE lancamentos ADD COLUMN %s TEXT", q),
		); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col, err)
		}
	}
	return nil
}

// LedgerColumns returns the current lancamentos column names in table
// order.
func (s *Store) LedgerColumns() ([]string, error) {
	rows, err := s.db.Query("PRAGMA table_info(lancamentos)")
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cols, nil
}

// CountLedgerFile returns how many rows a source file currently
// contributes.
func (s *Store) CountLedgerFile(fileName string) (int, error) {
	var n int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM lancamentos WHERE source_file_name = ?", fileName,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}
