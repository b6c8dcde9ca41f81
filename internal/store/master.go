package store

import (
	"fmt"
	"strings"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/model"
)

// ReplaceMaster overwrites base_processos wholesale with the staged
// row set. The master workbook is always authoritative in full, so
// there is no merge: delete everything, insert everything, one
// transaction.
func (s *Store) ReplaceMaster(table *model.Table) error {
	cols, err := quoteIdents(table.Columns)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM base_processos"); err != nil {
		return fmt.Errorf("failed to clear base_processos: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO base_processos (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		placeholders(len(cols)),
	))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountMaster returns the number of rows in base_processos.
func (s *Store) CountMaster() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM base_processos").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
