package tables

import (
	"fmt"
	"strings"
)

// Expr is a scalar expression usable with Relation.Extend
type Expr interface {
	render() (string, error)
	exprType() ColumnType
	columnRefs() []string
}

type litExpr struct {
	value int64
}

// Lit returns an integer literal expression
func Lit(value int64) Expr {
	return &litExpr{value: value}
}

func (e *litExpr) render() (string, error) {
	return fmt.Sprintf("%d", e.value), nil
}

func (e *litExpr) exprType() ColumnType {
	return TypeInteger
}

func (e *litExpr) columnRefs() []string {
	return nil
}

type notNullFlagExpr struct {
	column string
}

// NotNullFlag returns an expression evaluating to 1 if the column is not null, else 0
func NotNullFlag(column string) Expr {
	return &notNullFlagExpr{column: column}
}

func (e *notNullFlagExpr) render() (string, error) {
	quotedName, err := quoteIdent(e.column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE WHEN %v IS NOT NULL THEN 1 ELSE 0 END", quotedName), nil
}

func (e *notNullFlagExpr) exprType() ColumnType {
	return TypeInteger
}

func (e *notNullFlagExpr) columnRefs() []string {
	return []string{e.column}
}

type sumExpr struct {
	terms []Expr
}

// Sum returns the addition of all term expressions
func Sum(terms ...Expr) Expr {
	return &sumExpr{terms: terms}
}

func (e *sumExpr) render() (string, error) {
	if len(e.terms) == 0 {
		return "0", nil
	}
	parts := make([]string, len(e.terms))
	for i, term := range e.terms {
		termSql, err := term.render()
		if err != nil {
			return "", err
		}
		parts[i] = termSql
	}
	return "(" + strings.Join(parts, " + ") + ")", nil
}

func (e *sumExpr) exprType() ColumnType {
	return TypeInteger
}

func (e *sumExpr) columnRefs() []string {
	refs := []string{}
	for _, term := range e.terms {
		refs = append(refs, term.columnRefs()...)
	}
	return refs
}
