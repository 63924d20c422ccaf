package tables

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethpandaops/abimatch/dbtypes"
)

type ColumnType int

const (
	TypeBytes ColumnType = iota
	TypeText
	TypeInteger
	TypeBool
)

// Column describes one column of a relation
type Column struct {
	Name string
	Type ColumnType
}

// Relation is a handle to a materialized scratch table.
// Relations are immutable, every operation derives a new relation.
type Relation struct {
	engine  *Engine
	table   string
	columns []Column
}

func (t ColumnType) ddl(engine *Engine) string {
	switch t {
	case TypeBytes:
		return engine.EngineQuery(map[dbtypes.DBEngineType]string{
			dbtypes.DBEngineSqlite: "BLOB",
			dbtypes.DBEnginePgsql:  "BYTEA",
		})
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return engine.EngineQuery(map[dbtypes.DBEngineType]string{
			dbtypes.DBEngineSqlite: "INTEGER",
			dbtypes.DBEnginePgsql:  "BIGINT",
		})
	case TypeBool:
		// stored as small integers so aggregates behave the same on both engines
		return engine.EngineQuery(map[dbtypes.DBEngineType]string{
			dbtypes.DBEngineSqlite: "INTEGER",
			dbtypes.DBEnginePgsql:  "SMALLINT",
		})
	}
	return "TEXT"
}

// NewRelation materializes the supplied rows as a new relation.
// Row values must be ordered like the column list, nil values become NULL.
func (e *Engine) NewRelation(ctx context.Context, columns []Column, rows [][]any) (*Relation, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("relation needs at least one column")
	}

	var ddl strings.Builder
	table := e.allocTable()
	fmt.Fprintf(&ddl, `CREATE TABLE %v (`, table)
	for i, col := range columns {
		quotedName, err := quoteIdent(col.Name)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			fmt.Fprintf(&ddl, ", ")
		}
		fmt.Fprintf(&ddl, "%v %v", quotedName, col.Type.ddl(e))
	}
	fmt.Fprintf(&ddl, ")")

	_, err := e.db.ExecContext(ctx, ddl.String())
	if err != nil {
		return nil, fmt.Errorf("error creating relation table: %w", err)
	}

	rel := &Relation{
		engine:  e,
		table:   table,
		columns: append([]Column{}, columns...),
	}

	err = rel.insertRows(ctx, rows)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *Relation) insertRows(ctx context.Context, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	colCount := len(r.columns)
	batchSize := 500 / colCount
	if batchSize == 0 {
		batchSize = 1
	}

	colNames := make([]string, colCount)
	for i, col := range r.columns {
		quotedName, _ := quoteIdent(col.Name)
		colNames[i] = quotedName
	}

	for batchStart := 0; batchStart < len(rows); batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > len(rows) {
			batchEnd = len(rows)
		}
		batch := rows[batchStart:batchEnd]

		var sql strings.Builder
		fmt.Fprintf(&sql, `INSERT INTO %v (%v) VALUES `, r.table, strings.Join(colNames, ", "))

		argIdx := 0
		args := make([]any, 0, len(batch)*colCount)
		for rowIdx, row := range batch {
			if len(row) != colCount {
				return fmt.Errorf("row %v has %v values, expected %v", batchStart+rowIdx, len(row), colCount)
			}
			if rowIdx > 0 {
				fmt.Fprintf(&sql, ", ")
			}
			fmt.Fprintf(&sql, "(")
			for colIdx, value := range row {
				if colIdx > 0 {
					fmt.Fprintf(&sql, ", ")
				}
				fmt.Fprintf(&sql, "$%v", argIdx+1)
				if boolVal, isBool := value.(bool); isBool {
					// bool columns are stored as 0/1
					if boolVal {
						value = 1
					} else {
						value = 0
					}
				}
				args = append(args, value)
				argIdx++
			}
			fmt.Fprintf(&sql, ")")
		}

		_, err := r.engine.db.ExecContext(ctx, sql.String(), args...)
		if err != nil {
			return fmt.Errorf("error inserting relation rows: %w", err)
		}
	}

	return nil
}

// Columns returns a copy of the relation's column descriptors
func (r *Relation) Columns() []Column {
	return append([]Column{}, r.columns...)
}

// ColumnNames returns the relation's column names in order
func (r *Relation) ColumnNames() []string {
	names := make([]string, len(r.columns))
	for i, col := range r.columns {
		names[i] = col.Name
	}
	return names
}

func (r *Relation) column(name string) *Column {
	for i := range r.columns {
		if r.columns[i].Name == name {
			return &r.columns[i]
		}
	}
	return nil
}

// quotedColumn resolves a column name against the relation and quotes it
func (r *Relation) quotedColumn(name string) (string, error) {
	if r.column(name) == nil {
		return "", fmt.Errorf("unknown column %q", name)
	}
	return quoteIdent(name)
}

// Count returns the number of rows in the relation
func (r *Relation) Count(ctx context.Context) (uint64, error) {
	var count uint64
	err := r.engine.db.GetContext(ctx, &count, fmt.Sprintf(`SELECT COUNT(*) FROM %v`, r.table))
	if err != nil {
		return 0, fmt.Errorf("error counting relation rows: %w", err)
	}
	return count, nil
}

// Rows reads back all rows of the relation as column name keyed maps
func (r *Relation) Rows(ctx context.Context) ([]map[string]any, error) {
	colNames := make([]string, len(r.columns))
	for i, col := range r.columns {
		quotedName, _ := quoteIdent(col.Name)
		colNames[i] = quotedName
	}

	sqlRows, err := r.engine.db.QueryxContext(ctx, fmt.Sprintf(`SELECT %v FROM %v`, strings.Join(colNames, ", "), r.table))
	if err != nil {
		return nil, fmt.Errorf("error reading relation rows: %w", err)
	}
	defer sqlRows.Close()

	rows := []map[string]any{}
	for sqlRows.Next() {
		row := map[string]any{}
		err := sqlRows.MapScan(row)
		if err != nil {
			return nil, fmt.Errorf("error scanning relation row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := sqlRows.Err(); err != nil {
		return nil, fmt.Errorf("error reading relation rows: %w", err)
	}
	return rows, nil
}

// Drop releases the relation's scratch table
func (r *Relation) Drop(ctx context.Context) error {
	return r.engine.dropTable(ctx, r.table)
}
