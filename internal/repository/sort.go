package repository

import (
	"fmt"
	"strings"
)

// SortField names a sortable column. Each store maps the closed set below
// to its own representation and rejects anything else.
type SortField string

const (
	SortFieldID        SortField = "id"
	SortFieldCreatedAt SortField = "createdAt"
	SortFieldUpdatedAt SortField = "updatedAt"
	SortFieldTitle     SortField = "title"
	SortFieldStatus    SortField = "status"
	SortFieldPriority  SortField = "priority"
	SortFieldName      SortField = "name"
)

// SortKey is one level of an ORDER BY chain.
type SortKey struct {
	Field      SortField
	Descending bool
}

// Asc builds an ascending key.
func Asc(field SortField) SortKey {
	return SortKey{Field: field}
}

// Desc builds a descending key.
func Desc(field SortField) SortKey {
	return SortKey{Field: field, Descending: true}
}

func orderByClause(keys []SortKey, columns map[SortField]string) (string, error) {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		column, ok := columns[key.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field %q", key.Field)
		}
		direction := "ASC"
		if key.Descending {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}
	return strings.Join(parts, ", "), nil
}

func rankExpression(column string, values []string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, value := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", value, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(values))
	return b.String()
}
