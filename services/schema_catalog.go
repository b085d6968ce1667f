package services

import (
	"fmt"
	"strings"
)

// CatalogTable is one allow-listed table: its schema-qualified name and
// the ordered set of columns the DB strategy may reference.
type CatalogTable struct {
	Name    string
	Columns []string
}

// SchemaCatalog is the static allow-list of queryable tables and
// columns. It is immutable for the process lifetime and defines the
// entire universe of identifiers generated SQL may reference.
type SchemaCatalog struct {
	tables []CatalogTable
	// columnsByTable is keyed by both the schema-qualified and the
	// short table name, lower-cased; values are lower-cased column sets.
	columnsByTable map[string]map[string]bool
}

// NewSchemaCatalog builds a catalog and its lookup index.
func NewSchemaCatalog(tables []CatalogTable) *SchemaCatalog {
	index := make(map[string]map[string]bool, 2*len(tables))
	for _, table := range tables {
		columns := make(map[string]bool, len(table.Columns))
		for _, col := range table.Columns {
			columns[strings.ToLower(col)] = true
		}
		full := strings.ToLower(table.Name)
		index[full] = columns
		if dot := strings.LastIndex(full, "."); dot >= 0 {
			index[full[dot+1:]] = columns
		}
	}
	return &SchemaCatalog{tables: tables, columnsByTable: index}
}

// DefaultSchemaCatalog returns the tlc_trips star schema this service
// is deployed against.
func DefaultSchemaCatalog() *SchemaCatalog {
	return NewSchemaCatalog([]CatalogTable{
		{Name: "tlc_trips.dim_empresa", Columns: []string{"sk_empresa", "cd_empresa", "ds_empresa"}},
		{Name: "tlc_trips.dim_tarifa", Columns: []string{"sk_tarifa", "cd_tarifa", "ds_tarifa"}},
		{Name: "tlc_trips.dim_pagamento", Columns: []string{"sk_pagamento", "cd_pagamento", "ds_pagamento"}},
		{Name: "tlc_trips.dim_transmissao", Columns: []string{"sk_transmissao", "fl_transmissao", "ds_transmissao"}},
		{Name: "tlc_trips.dim_zona", Columns: []string{"sk_zona", "cd_zona", "ds_zona", "ds_distrito", "ds_zona_servico"}},
		{Name: "tlc_trips.dim_calendario", Columns: []string{"dt_calendario", "ano", "mes", "dia", "trimestre", "ano_mes"}},
		{Name: "tlc_trips.ft_corrida_taxi", Columns: []string{
			"cd_empresa", "qt_passageiros", "vl_total", "ts_inicio_corrida", "ts_fim_corrida",
			"vl_distancia_mi", "cd_tarifa", "fl_transmissao", "cd_zona_embarque", "cd_zona_desembarque",
			"cd_pagamento", "vl_tarifa_base", "vl_extra", "vl_mta_tax", "vl_gorjeta", "vl_pedagio",
			"vl_sobretaxa_melhoria", "vl_sobretaxa_congestionamento", "vl_taxa_aeroporto",
		}},
	})
}

// PromptText renders one "table(col, col, ...)" line per table for
// embedding into the SQL generation prompt.
func (c *SchemaCatalog) PromptText() string {
	lines := make([]string, 0, len(c.tables))
	for _, table := range c.tables {
		lines = append(lines, fmt.Sprintf("%s(%s)", table.Name, strings.Join(table.Columns, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Lookup resolves a table reference, schema-qualified or short, to its
// allowed column set. Matching is case-insensitive.
func (c *SchemaCatalog) Lookup(table string) (map[string]bool, bool) {
	columns, ok := c.columnsByTable[strings.ToLower(table)]
	return columns, ok
}
