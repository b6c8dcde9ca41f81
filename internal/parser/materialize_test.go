package parser

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestCoerceString(t *testing.T) {
	t.Parallel()

	null := []interface{}{
		nil,
		"",
		"   ",
		"NaN",
		"nan",
		"#N/A",
		math.NaN(),
		math.Inf(1),
		time.Time{},
	}
	for _, v := range null {
		if got := CoerceString(v); got.Valid {
			t.Fatalf("CoerceString(%#v) should be null, got %q", v, got.String)
		}
	}

	cases := []struct {
		in   interface{}
		want string
	}{
		{" Empresa X ", "Empresa X"},
		{float64(1500.5), "1500.5"},
		{float64(2024), "2024"},
		{42, "42"},
		{int64(7), "7"},
		{true, "true"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), "2024-03-01 14:30:00"},
	}
	for _, c := range cases {
		got := CoerceString(c.in)
		if !got.Valid || got.String != c.want {
			t.Fatalf("CoerceString(%#v) want=%q got=%+v", c.in, c.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("curto", 50); got != "curto" {
		t.Fatalf("short string should pass through, got %q", got)
	}

	long := strings.Repeat("mensagem de erro ", 200)
	got := Truncate(long, 1500)
	if n := len([]rune(got)); n != 1500 {
		t.Fatalf("truncated length want=1500 got=%d", n)
	}

	// rune-aware: must not split multibyte characters
	acc := strings.Repeat("ç", 60)
	got = Truncate(acc, 50)
	if n := len([]rune(got)); n != 50 {
		t.Fatalf("rune length want=50 got=%d", n)
	}
	if !strings.HasSuffix(got, "ç") {
		t.Fatalf("truncation split a rune: %q", got)
	}
}

func TestMaterialize_DropsAllNullRows(t *testing.T) {
	t.Parallel()

	rs := &ResolvedSheet{
		Columns: []string{"a", "b"},
		Sources: []int{0, 1},
		Rows: [][]string{
			{"x", "y"},
			{"", "  "},
			{"", "z"},
		},
	}

	table := Materialize(rs)
	if len(table.Rows) != 2 {
		t.Fatalf("rows want=2 got=%d", len(table.Rows))
	}
	if table.Rows[1][0].Valid {
		t.Fatalf("blank cell should be null")
	}
	if got := table.Rows[1][1]; !got.Valid || got.String != "z" {
		t.Fatalf("cell want=z got=%+v", got)
	}
}

func TestMaterialize_UnmappedColumnsAreNull(t *testing.T) {
	t.Parallel()

	rs := &ResolvedSheet{
		Columns: []string{"a", "b", "c"},
		Sources: []int{1, -1, 5},
		Rows:    [][]string{{"first", "second"}},
	}

	table := Materialize(rs)
	row := table.Rows[0]
	if got := row[0]; !got.Valid || got.String != "second" {
		t.Fatalf("mapped cell want=second got=%+v", got)
	}
	if row[1].Valid {
		t.Fatalf("unmapped column should be null")
	}
	if row[2].Valid {
		t.Fatalf("out-of-range source should be null")
	}
}
