package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/model"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/pkg/logger"
)

const stagingPrefix = "stg_ledger_"

// createStaging creates a throwaway staging table for one ingestion.
// The creation timestamp is embedded in the name so a stale table left
// behind by a crashed run can be swept by age alone.
func (s *Store) createStaging(columns []string) (string, error) {
	cols, err := quoteIdents(columns)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s%d_%s", stagingPrefix, time.Now().Unix(), uuid.NewString()[:8])
	ddl := fmt.Sprintf("CREATE TABLE %s (%s TEXT)", name, strings.Join(cols, " TEXT, "))
	if _, err := s.db.Exec(ddl); err != nil {
		return "", fmt.Errorf("failed to create staging table: %w", err)
	}
	return name, nil
}

// fillStaging batch-inserts the materialized rows into the staging
// table inside one transaction.
func (s *Store) fillStaging(name string, table *model.Table) error {
	cols, err := quoteIdents(table.Columns)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(cols, ", "), placeholders(len(cols)),
	))
	if err != nil {
		return fmt.Errorf("failed to prepare staging insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to stage row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit staging rows: %w", err)
	}
	return nil
}

// dropStaging discards a staging table. Best effort: a leftover table
// cannot corrupt future runs and is swept by age later.
func (s *Store) dropStaging(name string) {
	if _, err := s.db.Exec("DROP TABLE IF EXISTS " + name); err != nil {
		logger.Warnf("failed to drop staging table %s: %v", name, err)
	}
}

// SweepStaging drops staging tables older than maxAge, regardless of
// who created them. Returns how many were dropped.
func (s *Store) SweepStaging(maxAge time.Duration) (int, error) {
	rows, err := s.db.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ?",
		stagingPrefix+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to list staging tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return 0, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("rows error: %w", err)
	}

	cutoff := time.Now().Add(-maxAge).Unix()
	dropped := 0
	for _, name := range names {
		ts, ok := stagingTimestamp(name)
		if ok && ts > cutoff {
			continue
		}
		// unparseable names are treated as stale
		s.dropStaging(name)
		dropped++
	}
	return dropped, nil
}

func stagingTimestamp(name string) (int64, bool) {
	rest := strings.TrimPrefix(name, stagingPrefix)
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return 0, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
