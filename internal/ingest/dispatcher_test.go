package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/model"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/store"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		kind FileKind
		key  string
	}{
		{"base_legal.xlsx", KindMaster, "base_legal.xlsx"},
		{"BASE_GERAL.XLSX", KindMaster, "BASE_GERAL.XLSX"},
		{"minha-pasta/base_legal.xlsx", KindMaster, "base_legal.xlsx"},
		{"minha-pasta/credores_jan.xlsx", KindLedger, "credores_jan.xlsx"},
		{"Credores ACME.xlsx", KindLedger, "Credores ACME.xlsx"},
		{"notas.txt", KindSkip, "notas.txt"},
		{"planilha.xls", KindSkip, "planilha.xls"},
	}
	for _, c := range cases {
		kind, key := Classify(c.name)
		if kind != c.kind || key != c.key {
			t.Fatalf("Classify(%q) want=(%v,%q) got=(%v,%q)", c.name, c.kind, c.key, kind, key)
		}
	}
}

func saveWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "db", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	root := filepath.Join(dir, "buckets")
	d := New(st, DirBlobSource{Root: root}, "relacao_de_informacoes")
	return d, st, root
}

func ledgerHeader() []interface{} {
	fields := model.LedgerHeaderWithSubclasse()
	row := make([]interface{}, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return row
}

func TestHandle_MissingFieldsIsNoop(t *testing.T) {
	t.Parallel()
	d, st, _ := newTestDispatcher(t)

	if err := d.Handle(Event{}); err != nil {
		t.Fatalf("empty event should settle quietly: %v", err)
	}
	if err := d.Handle(Event{Bucket: "uploads"}); err != nil {
		t.Fatalf("event without name should settle quietly: %v", err)
	}

	if _, err := st.LastStatus(""); err == nil {
		t.Fatalf("noop must not write audit rows")
	}
}

func TestHandle_SkipsNonXlsx(t *testing.T) {
	t.Parallel()
	d, st, _ := newTestDispatcher(t)

	if err := d.Handle(Event{Bucket: "uploads", Name: "notas.txt", Size: 10}); err != nil {
		t.Fatalf("non-xlsx should be ignored: %v", err)
	}
	if _, err := st.LastStatus("notas.txt"); err == nil {
		t.Fatalf("skipped files must not write audit rows")
	}
}

func TestHandle_MasterFullReplace(t *testing.T) {
	t.Parallel()
	d, st, root := newTestDispatcher(t)

	saveWorkbook(t, filepath.Join(root, "uploads", "base_legal.xlsx"), [][]interface{}{
		{"UF", "Empresa", "Situação"},
		{"SP", "Empresa A", "Ativa"},
		{"RJ", "Empresa B", "Encerrada"},
		{"MG", "Empresa C", "Ativa"},
	})
	if err := d.Handle(Event{Bucket: "uploads", Name: "base_legal.xlsx", Size: 1}); err != nil {
		t.Fatalf("first ingestion: %v", err)
	}

	saveWorkbook(t, filepath.Join(root, "uploads", "base_legal.xlsx"), [][]interface{}{
		{"UF", "Empresa", "Situação"},
		{"SP", "Empresa A", "Ativa"},
	})
	if err := d.Handle(Event{Bucket: "uploads", Name: "base_legal.xlsx", Size: 1}); err != nil {
		t.Fatalf("second ingestion: %v", err)
	}

	n, err := st.CountMaster()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("master rows want=1 got=%d", n)
	}

	rec, err := st.LastStatus("base_legal.xlsx")
	if err != nil {
		t.Fatalf("LastStatus: %v", err)
	}
	if rec.Status != store.StatusSuccess {
		t.Fatalf("status want=SUCCESS got=%q", rec.Status)
	}
}

func TestHandle_LedgerIdempotentByFilename(t *testing.T) {
	t.Parallel()
	d, st, root := newTestDispatcher(t)

	path := filepath.Join(root, "uploads", "credores_jan.xlsx")
	saveWorkbook(t, path, [][]interface{}{
		ledgerHeader(),
		{"G1", "Empresa X", "RJ", "Quirografário", "Fornecedor", "Credor A", "BRL", "1500.00", "2024-03-01"},
		{"G1", "Empresa X", "RJ", "Trabalhista", "", "Credor B", "BRL", "800.00", "2024-03-02"},
	})

	ev := Event{Bucket: "uploads", Name: "credores_jan.xlsx", Size: 1}
	for i := 0; i < 2; i++ {
		if err := d.Handle(ev); err != nil {
			t.Fatalf("ingestion %d: %v", i, err)
		}
	}

	n, err := st.CountLedgerFile("credores_jan.xlsx")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("ledger rows want=2 got=%d", n)
	}
}

func TestHandle_LedgerValidationErrorIsSwallowed(t *testing.T) {
	t.Parallel()
	d, st, root := newTestDispatcher(t)

	header := ledgerHeader()
	header = append(header[:3], append([]interface{}{"coluna_extra"}, header[3:]...)...)
	saveWorkbook(t, filepath.Join(root, "uploads", "quebrado.xlsx"), [][]interface{}{
		header,
		{"G1", "Empresa X", "RJ", "x", "Quirografário", "", "Credor A", "BRL", "1.00", "2024-01-01"},
	})

	err := d.Handle(Event{Bucket: "uploads", Name: "quebrado.xlsx", Size: 1})
	if err != nil {
		t.Fatalf("validation failure must settle the event, got %v", err)
	}

	rec, err := st.LastStatus("quebrado.xlsx")
	if err != nil {
		t.Fatalf("LastStatus: %v", err)
	}
	if rec.Status != store.StatusError {
		t.Fatalf("status want=ERROR got=%q", rec.Status)
	}

	if n, _ := st.CountLedgerFile("quebrado.xlsx"); n != 0 {
		t.Fatalf("rejected file must write zero rows, got %d", n)
	}
}

func TestHandle_MissingObjectReRaises(t *testing.T) {
	t.Parallel()
	d, st, _ := newTestDispatcher(t)

	err := d.Handle(Event{Bucket: "uploads", Name: "inexistente.xlsx", Size: 1})
	if err == nil {
		t.Fatalf("infrastructure failure must re-raise for redelivery")
	}

	rec, err := st.LastStatus("inexistente.xlsx")
	if err != nil {
		t.Fatalf("LastStatus: %v", err)
	}
	if rec.Status != store.StatusError {
		t.Fatalf("status want=ERROR got=%q", rec.Status)
	}
}

func TestIngestFile_LocalPath(t *testing.T) {
	t.Parallel()
	d, st, _ := newTestDispatcher(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "credores_locais.xlsx")
	saveWorkbook(t, path, [][]interface{}{
		ledgerHeader(),
		{"G2", "Empresa Y", "Falência", "Com Garantia", "", "Credor C", "USD", "5000.00", "2024-04-01"},
	})

	if err := d.IngestFile(path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n, _ := st.CountLedgerFile("credores_locais.xlsx"); n != 1 {
		t.Fatalf("ledger rows want=1 got=%d", n)
	}
}
