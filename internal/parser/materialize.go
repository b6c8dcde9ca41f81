package parser

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/model"
)

// CoerceString is the single point of type erasure between source cell
// values and the string-typed destination. Blanks, NaN in any spelling,
// and nil all collapse to SQL NULL; everything else becomes its trimmed
// textual representation.
func CoerceString(v interface{}) sql.NullString {
	switch t := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		s := strings.TrimSpace(t)
		if s == "" || isNaNText(s) {
			return sql.NullString{}
		}
		return sql.NullString{String: s, Valid: true}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return sql.NullString{}
		}
		return sql.NullString{String: strconv.FormatFloat(t, 'f', -1, 64), Valid: true}
	case float32:
		return CoerceString(float64(t))
	case int:
		return sql.NullString{String: strconv.Itoa(t), Valid: true}
	case int64:
		return sql.NullString{String: strconv.FormatInt(t, 10), Valid: true}
	case bool:
		return sql.NullString{String: strconv.FormatBool(t), Valid: true}
	case time.Time:
		if t.IsZero() {
			return sql.NullString{}
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return sql.NullString{String: t.Format("2006-01-02"), Valid: true}
		}
		return sql.NullString{String: t.Format("2006-01-02 15:04:05"), Valid: true}
	default:
		return CoerceString(fmt.Sprintf("%v", v))
	}
}

func isNaNText(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "#n/a", "#n/d", "null":
		return true
	}
	return false
}

// Truncate caps s at max runes. Destination column widths (audit
// status 50, message 1500) are enforced with this before any write.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Materialize applies a resolved alignment to its data rows and emits
// the uniform string-or-null table. Rows that end up null in every
// column are dropped.
func Materialize(rs *ResolvedSheet) *model.Table {
	rows := make([][]sql.NullString, 0, len(rs.Rows))
	for _, src := range rs.Rows {
		out := make([]sql.NullString, len(rs.Columns))
		blank := true
		for tgt, srcIdx := range rs.Sources {
			if srcIdx < 0 || srcIdx >= len(src) {
				continue
			}
			out[tgt] = CoerceString(src[srcIdx])
			if out[tgt].Valid {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, out)
	}
	return &model.Table{Columns: rs.Columns, Rows: rows}
}
