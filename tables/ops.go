package tables

import (
	"context"
	"fmt"
	"strings"
)

// Predicate is a row filter condition for Relation.Filter
type Predicate int

const (
	IsNull Predicate = iota
	IsNotNull
)

// JoinKey pairs one left-side column with the right-side column it is matched against
type JoinKey struct {
	Left  string
	Right string
}

// SortColumn is one component of an explicit total order
type SortColumn struct {
	Column string
	Desc   bool
}

// Project derives a relation containing only the given columns, in the given order
func (r *Relation) Project(ctx context.Context, columns ...string) (*Relation, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("projection needs at least one column")
	}

	outCols := make([]Column, len(columns))
	quotedNames := make([]string, len(columns))
	for i, name := range columns {
		col := r.column(name)
		if col == nil {
			return nil, fmt.Errorf("unknown column %q in projection", name)
		}
		quotedName, err := quoteIdent(name)
		if err != nil {
			return nil, err
		}
		outCols[i] = *col
		quotedNames[i] = quotedName
	}

	rel, err := r.engine.materialize(ctx, outCols, fmt.Sprintf(
		`SELECT %v FROM %v`,
		strings.Join(quotedNames, ", "), r.table,
	))
	if err != nil {
		return nil, fmt.Errorf("projection failed: %w", err)
	}
	return rel, nil
}

// Extend derives a relation with an additional computed column
func (r *Relation) Extend(ctx context.Context, name string, expr Expr) (*Relation, error) {
	if r.column(name) != nil {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	quotedName, err := quoteIdent(name)
	if err != nil {
		return nil, err
	}
	for _, ref := range expr.columnRefs() {
		if r.column(ref) == nil {
			return nil, fmt.Errorf("expression references unknown column %q", ref)
		}
	}
	exprSql, err := expr.render()
	if err != nil {
		return nil, err
	}

	outCols := append(r.Columns(), Column{Name: name, Type: expr.exprType()})
	rel, err := r.engine.materialize(ctx, outCols, fmt.Sprintf(
		`SELECT t.*, %v AS %v FROM %v t`,
		exprSql, quotedName, r.table,
	))
	if err != nil {
		return nil, fmt.Errorf("column extension failed: %w", err)
	}
	return rel, nil
}

// Filter derives a relation containing only rows satisfying the predicate on the given column
func (r *Relation) Filter(ctx context.Context, column string, predicate Predicate) (*Relation, error) {
	quotedName, err := r.quotedColumn(column)
	if err != nil {
		return nil, err
	}

	condition := "IS NULL"
	if predicate == IsNotNull {
		condition = "IS NOT NULL"
	}

	rel, err := r.engine.materialize(ctx, r.Columns(), fmt.Sprintf(
		`SELECT * FROM %v WHERE %v %v`,
		r.table, quotedName, condition,
	))
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}
	return rel, nil
}

// LeftJoin derives a relation joining this relation against the right relation on the
// given key pairs. All left columns are preserved, the right relation contributes its
// non-key columns (null-filled for unmatched left rows). Column name collisions between
// the two sides are rejected.
func (r *Relation) LeftJoin(ctx context.Context, right *Relation, keys []JoinKey) (*Relation, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("join needs at least one key pair")
	}

	rightKeyCols := map[string]bool{}
	conditions := make([]string, len(keys))
	for i, key := range keys {
		leftName, err := r.quotedColumn(key.Left)
		if err != nil {
			return nil, fmt.Errorf("invalid left join key: %w", err)
		}
		rightName, err := right.quotedColumn(key.Right)
		if err != nil {
			return nil, fmt.Errorf("invalid right join key: %w", err)
		}
		conditions[i] = fmt.Sprintf("l.%v = r.%v", leftName, rightName)
		rightKeyCols[key.Right] = true
	}

	outCols := r.Columns()
	selectCols := []string{"l.*"}
	for _, col := range right.columns {
		if rightKeyCols[col.Name] {
			continue
		}
		if r.column(col.Name) != nil {
			return nil, fmt.Errorf("join column collision on %q", col.Name)
		}
		quotedName, err := quoteIdent(col.Name)
		if err != nil {
			return nil, err
		}
		outCols = append(outCols, col)
		selectCols = append(selectCols, "r."+quotedName)
	}

	rel, err := r.engine.materialize(ctx, outCols, fmt.Sprintf(
		`SELECT %v FROM %v l LEFT JOIN %v r ON %v`,
		strings.Join(selectCols, ", "), r.table, right.table, strings.Join(conditions, " AND "),
	))
	if err != nil {
		return nil, fmt.Errorf("left join failed: %w", err)
	}
	return rel, nil
}

// GroupCount derives a relation grouping rows by the group columns, counting group
// members into the count column. Carry columns are not part of the grouping key and
// are aggregated to their minimum value per group to stay deterministic.
func (r *Relation) GroupCount(ctx context.Context, groupColumns []string, carryColumns []string, countColumn string) (*Relation, error) {
	if len(groupColumns) == 0 {
		return nil, fmt.Errorf("grouping needs at least one column")
	}

	outCols := []Column{}
	selectCols := []string{}
	groupCols := []string{}
	for _, name := range groupColumns {
		quotedName, err := r.quotedColumn(name)
		if err != nil {
			return nil, fmt.Errorf("invalid group column: %w", err)
		}
		outCols = append(outCols, *r.column(name))
		selectCols = append(selectCols, quotedName)
		groupCols = append(groupCols, quotedName)
	}
	for _, name := range carryColumns {
		quotedName, err := r.quotedColumn(name)
		if err != nil {
			return nil, fmt.Errorf("invalid carry column: %w", err)
		}
		outCols = append(outCols, *r.column(name))
		selectCols = append(selectCols, fmt.Sprintf("MIN(%v) AS %v", quotedName, quotedName))
	}

	quotedCountName, err := quoteIdent(countColumn)
	if err != nil {
		return nil, err
	}
	if r.column(countColumn) != nil {
		return nil, fmt.Errorf("count column %q collides with an input column", countColumn)
	}
	outCols = append(outCols, Column{Name: countColumn, Type: TypeInteger})
	selectCols = append(selectCols, fmt.Sprintf("COUNT(*) AS %v", quotedCountName))

	rel, err := r.engine.materialize(ctx, outCols, fmt.Sprintf(
		`SELECT %v FROM %v GROUP BY %v`,
		strings.Join(selectCols, ", "), r.table, strings.Join(groupCols, ", "),
	))
	if err != nil {
		return nil, fmt.Errorf("group count failed: %w", err)
	}
	return rel, nil
}

// TopPerGroup derives a relation keeping, for each distinct combination of the
// partition columns, only the first row under the given total order.
func (r *Relation) TopPerGroup(ctx context.Context, partitionColumns []string, order []SortColumn) (*Relation, error) {
	if len(partitionColumns) == 0 || len(order) == 0 {
		return nil, fmt.Errorf("top-per-group needs partition and order columns")
	}

	partitionCols := make([]string, len(partitionColumns))
	for i, name := range partitionColumns {
		quotedName, err := r.quotedColumn(name)
		if err != nil {
			return nil, fmt.Errorf("invalid partition column: %w", err)
		}
		partitionCols[i] = quotedName
	}

	orderCols := make([]string, len(order))
	for i, sortCol := range order {
		quotedName, err := r.quotedColumn(sortCol.Column)
		if err != nil {
			return nil, fmt.Errorf("invalid order column: %w", err)
		}
		direction := "ASC"
		if sortCol.Desc {
			direction = "DESC"
		}
		orderCols[i] = fmt.Sprintf("%v %v", quotedName, direction)
	}

	selectCols := make([]string, len(r.columns))
	for i, col := range r.columns {
		quotedName, _ := quoteIdent(col.Name)
		selectCols[i] = quotedName
	}

	rel, err := r.engine.materialize(ctx, r.Columns(), fmt.Sprintf(
		`SELECT %v FROM (
			SELECT t.*, ROW_NUMBER() OVER (PARTITION BY %v ORDER BY %v) AS _row_rank FROM %v t
		) ranked WHERE ranked._row_rank = 1`,
		strings.Join(selectCols, ", "), strings.Join(partitionCols, ", "), strings.Join(orderCols, ", "), r.table,
	))
	if err != nil {
		return nil, fmt.Errorf("top-per-group failed: %w", err)
	}
	return rel, nil
}

// Concat derives a relation containing the rows of this relation followed by the rows
// of the other relation. Both relations must have the same column set, the other
// relation's columns are reordered to this relation's column order if needed.
func (r *Relation) Concat(ctx context.Context, other *Relation) (*Relation, error) {
	if len(r.columns) != len(other.columns) {
		return nil, fmt.Errorf("concat column count mismatch: %v != %v", len(r.columns), len(other.columns))
	}

	selectCols := make([]string, len(r.columns))
	for i, col := range r.columns {
		otherCol := other.column(col.Name)
		if otherCol == nil || otherCol.Type != col.Type {
			return nil, fmt.Errorf("concat column mismatch on %q", col.Name)
		}
		quotedName, _ := quoteIdent(col.Name)
		selectCols[i] = quotedName
	}

	colList := strings.Join(selectCols, ", ")
	rel, err := r.engine.materialize(ctx, r.Columns(), fmt.Sprintf(
		`SELECT %v FROM %v UNION ALL SELECT %v FROM %v`,
		colList, r.table, colList, other.table,
	))
	if err != nil {
		return nil, fmt.Errorf("concat failed: %w", err)
	}
	return rel, nil
}
