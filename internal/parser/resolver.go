package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/model"
)

var (
	// ErrEmptySheet marks a workbook with no usable data rows. Malformed
	// input, not infrastructure: never retried.
	ErrEmptySheet = errors.New("sheet has no data rows")

	// ErrHeaderMismatch marks a ledger header that matches neither
	// accepted column ordering.
	ErrHeaderMismatch = errors.New("ledger header does not match an accepted layout")
)

// ResolvedSheet is the alignment of one sheet against a target column
// list: for every target column the source column index feeding it
// (-1 = always null), plus the surviving data rows.
type ResolvedSheet struct {
	SheetName string
	Columns   []string
	Sources   []int
	Rows      [][]string
}

// ResolveMaster picks the sheet and aligns its columns against the
// fixed master field list. targetSheetSlug selects the preferred sheet
// by slugged name; the first sheet is the fallback.
func ResolveMaster(f *excelize.File, targetSheetSlug string) (*ResolvedSheet, error) {
	sheet := pickSheet(f, targetSheetSlug)
	rows, err := loadRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySheet)
	}

	sources := make([]int, len(model.MasterFields))
	for i := range sources {
		sources[i] = -1
	}

	if HasHeader(rows[0]) {
		for srcIdx, slug := range SlugHeaders(rows[0]) {
			field, ok := CanonicalField(slug, model.MasterFields)
			if !ok {
				continue
			}
			tgt := fieldIndex(model.MasterFields, field)
			if tgt >= 0 && sources[tgt] == -1 {
				sources[tgt] = srcIdx
			}
		}
	} else {
		// No credible header: the first row is a human caption and the
		// remaining columns line up positionally. Shorter sheets leave
		// the trailing fields null, wider sheets lose the excess.
		for i := range sources {
			sources[i] = i
		}
	}

	data := rows[1:]
	if len(data) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySheet)
	}

	return &ResolvedSheet{
		SheetName: sheet,
		Columns:   model.MasterFields,
		Sources:   sources,
		Rows:      data,
	}, nil
}

// ResolveLedger aligns the first sheet of a ledger workbook. With a
// header row present the literal tokens must match one of the two
// accepted orderings (with or without subclasse); headerless files are
// aligned positionally, inserting a null subclasse when only eight
// data columns arrive.
func ResolveLedger(f *excelize.File) (*ResolvedSheet, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	sheet := sheets[0]

	rows, err := loadRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySheet)
	}

	// The generic header heuristic misfires on text-heavy ledger data
	// rows, so headers are recognized by their tokens instead: an exact
	// match against an accepted ordering is a header, a row that merely
	// contains canonical tokens is a malformed header, anything else is
	// data.
	slugs := SlugHeaders(rows[0][:trimmedWidth(rows[0])])
	if columns, sources, ok := matchLedgerHeader(slugs); ok {
		data := rows[1:]
		if len(data) == 0 {
			return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySheet)
		}
		return &ResolvedSheet{SheetName: sheet, Columns: columns, Sources: sources, Rows: data}, nil
	}
	if countLedgerTokens(slugs) >= 2 {
		return nil, fmt.Errorf("%w: got %s", ErrHeaderMismatch, strings.Join(slugs, ", "))
	}

	// Headerless exports carry only the nine core columns, or eight
	// when subclasse is omitted.
	width := 0
	for _, row := range rows {
		if w := trimmedWidth(row); w > width {
			width = w
		}
	}
	sources := make([]int, len(model.LedgerDataFields))
	for i := range sources {
		switch {
		case width <= len(model.LedgerDataFields)-1 && i == model.SubclasseIndex:
			sources[i] = -1
		case width <= len(model.LedgerDataFields)-1 && i > model.SubclasseIndex:
			sources[i] = i - 1
		default:
			sources[i] = i
		}
	}

	return &ResolvedSheet{
		SheetName: sheet,
		Columns:   model.LedgerDataFields,
		Sources:   sources,
		Rows:      rows,
	}, nil
}

// matchLedgerHeader compares slugged header tokens against the
// 13-column (with subclasse) and 12-column (without) orderings and
// builds the alignment for whichever one matches.
func matchLedgerHeader(slugs []string) (columns []string, sources []int, ok bool) {
	full := model.LedgerHeaderWithSubclasse()
	if slugsEqual(slugs, full) {
		sources = make([]int, len(full))
		for i := range sources {
			sources[i] = i
		}
		return full, sources, true
	}

	if slugsEqual(slugs, model.LedgerHeaderWithoutSubclasse()) {
		sources = make([]int, len(full))
		for i := range sources {
			switch {
			case i == model.SubclasseIndex:
				sources[i] = -1
			case i > model.SubclasseIndex:
				sources[i] = i - 1
			default:
				sources[i] = i
			}
		}
		return full, sources, true
	}

	return nil, nil, false
}

// countLedgerTokens counts how many cells are, verbatim, canonical
// ledger column names. Two or more means someone wrote a header row,
// just not an accepted one.
func countLedgerTokens(slugs []string) int {
	known := make(map[string]bool)
	for _, f := range model.LedgerHeaderWithSubclasse() {
		known[f] = true
	}
	n := 0
	for _, s := range slugs {
		if known[s] {
			n++
		}
	}
	return n
}

// HasHeader reports whether a first row looks like a genuine header:
// at least max(3, 40% of its cells) are alphabetic text rather than
// numbers, dates or blanks.
func HasHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	alpha := 0
	for _, cell := range row {
		if isAlphaText(cell) {
			alpha++
		}
	}
	need := (len(row)*2 + 4) / 5 // ceil(0.4 * n)
	if need < 3 {
		need = 3
	}
	return alpha >= need
}

func isAlphaText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// pickSheet prefers the sheet whose slugged name matches target, else
// the first sheet.
func pickSheet(f *excelize.File, targetSlug string) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	if targetSlug != "" {
		for _, name := range sheets {
			if Slug(name) == targetSlug {
				return name
			}
		}
	}
	return sheets[0]
}

// loadRows reads a sheet and drops fully-blank rows.
func loadRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	kept := rows[:0]
	for _, row := range rows {
		if trimmedWidth(row) > 0 {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// trimmedWidth is the row width after trimming trailing blank cells.
func trimmedWidth(row []string) int {
	w := len(row)
	for w > 0 && strings.TrimSpace(row[w-1]) == "" {
		w--
	}
	return w
}

func fieldIndex(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

func slugsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
