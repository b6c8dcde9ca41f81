package store

import (
	"time"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/parser"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/pkg/logger"
)

// Audit sink column widths.
const (
	statusMaxLen  = 50
	messageMaxLen = 1500
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// AppendStatus appends an audit row. Best effort: a failure to log is
// printed and swallowed so it can never abort or mask the ingestion
// outcome it describes.
func (s *Store) AppendStatus(fileName, status, message string) {
	_, err := s.db.Exec(`
		INSERT INTO status_log (sent_at, file_name, status, message)
		VALUES (?, ?, ?, ?)
	`,
		time.Now().UTC().Format(time.RFC3339),
		fileName,
		parser.Truncate(status, statusMaxLen),
		parser.Truncate(message, messageMaxLen),
	)
	if err != nil {
		logger.Warnf("failed to append status log for %s: %v", fileName, err)
	}
}

// StatusRecord is one audit entry.
type StatusRecord struct {
	SentAt   string
	FileName string
	Status   string
	Message  string
}

// LastStatus returns the most recent audit entry for a file, or nil.
func (s *Store) LastStatus(fileName string) (*StatusRecord, error) {
	row := s.db.QueryRow(`
		SELECT sent_at, file_name, status, message
		FROM status_log WHERE file_name = ?
		ORDER BY id DESC LIMIT 1
	`, fileName)

	var rec StatusRecord
	if err := row.Scan(&rec.SentAt, &rec.FileName, &rec.Status, &rec.Message); err != nil {
		return nil, err
	}
	return &rec, nil
}
