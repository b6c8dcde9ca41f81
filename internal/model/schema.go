package model

import "database/sql"

// MasterFields is the destination column list of the base_processos
// table, in declaration order. The order matters: headerless master
// workbooks are aligned positionally against it. All columns are
// nullable TEXT; source workbooks are too inconsistently formatted to
// preserve numeric or date typing past ingestion.
var MasterFields = []string{
	"grupo",
	"empresa",
	"cnpj",
	"situacao",
	"tipo_processo",
	"n_processo",
	"vara",
	"comarca",
	"estado",
	"data_pedido",
	"data_deferimento",
	"data_concessao",
	"data_encerramento",
	"prazo_fiscalizacao",
	"administrador_judicial_1",
	"administrador_judicial_2",
	"administrador_judicial_3",
	"remuneracao_aj_1",
	"remuneracao_aj_2",
	"remuneracao_aj_3",
	"forma_pagamento_aj",
	"percentual_remuneracao",
	"valor_causa",
	"valor_divida",
	"qtd_credores",
	"classe_i",
	"classe_ii",
	"classe_iii",
	"classe_iv",
	"data_primeira_assembleia",
	"data_aprovacao_plano",
	"data_homologacao",
	"link_processo",
	"link_plano",
	"link_relatorio",
	"advogado",
	"escritorio",
	"juiz",
	"segmento",
	"subsegmento",
	"observacoes",
	"fonte",
	"atualizado_em",
}

// LedgerDataFields are the nine core columns of a ledger row.
// Subclasse is optional on the wire: 8-column files simply omit it.
var LedgerDataFields = []string{
	"grupo",
	"empresa",
	"origem",
	"classe",
	"subclasse",
	"credor",
	"moeda",
	"valor",
	"data",
}

// SubclasseIndex is the position of subclasse within LedgerDataFields.
const SubclasseIndex = 4

// LedgerEnrichmentFields are optional trailing columns newer ledger
// revisions carry. The destination table is widened on demand when
// they first appear.
var LedgerEnrichmentFields = []string{
	"data_primeira_assembleia",
	"taxa_cambio",
	"fonte_taxa",
	"valor_convertido",
}

// Control columns stamped onto every ledger row at load time.
const (
	ColSourceFileName = "source_file_name"
	ColIngestedAt     = "ingested_at"
)

// LedgerHeaderWithSubclasse returns the accepted 13-token header
// ordering (core fields plus enrichment, subclasse present).
func LedgerHeaderWithSubclasse() []string {
	out := make([]string, 0, len(LedgerDataFields)+len(LedgerEnrichmentFields))
	out = append(out, LedgerDataFields...)
	out = append(out, LedgerEnrichmentFields...)
	return out
}

// LedgerHeaderWithoutSubclasse returns the accepted 12-token ordering
// (same as above with subclasse omitted).
func LedgerHeaderWithoutSubclasse() []string {
	full := LedgerHeaderWithSubclasse()
	out := make([]string, 0, len(full)-1)
	out = append(out, full[:SubclasseIndex]...)
	out = append(out, full[SubclasseIndex+1:]...)
	return out
}

// Table is a materialized row set ready for loading: named columns and
// string-or-null cells, one slice per row, aligned to Columns.
type Table struct {
	Columns []string
	Rows    [][]sql.NullString
}
