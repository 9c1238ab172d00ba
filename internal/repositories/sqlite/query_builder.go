package sqlite

import (
	"fmt"
	"strings"

	"inventory-api/internal/models"
)

// whereBuilder accumulates AND-ed conditions and their arguments
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func newWhere() *whereBuilder {
	return &whereBuilder{}
}

// add appends a raw condition with its arguments
func (w *whereBuilder) add(condition string, args ...interface{}) *whereBuilder {
	w.conditions = append(w.conditions, condition)
	w.args = append(w.args, args...)
	return w
}

// eq adds column = value
func (w *whereBuilder) eq(column string, value interface{}) *whereBuilder {
	return w.add(column+" = ?", value)
}

// eqIf adds column = value when value is not empty
func (w *whereBuilder) eqIf(column, value string) *whereBuilder {
	if value == "" {
		return w
	}
	return w.eq(column, value)
}

// search adds a case-insensitive substring match over any of the columns
func (w *whereBuilder) search(term string, columns ...string) *whereBuilder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return w
	}
	parts := make([]string, 0, len(columns))
	pattern := "%" + strings.ToLower(term) + "%"
	for _, c := range columns {
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ?", c))
		w.args = append(w.args, pattern)
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
	return w
}

// clause renders the WHERE clause, or an empty string without conditions
func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conditions, " AND ")
}

// orderClause renders ORDER BY from a whitelisted sort key. Unknown keys
// fall back to the default column; direction defaults to descending.
func orderClause(sortBy, sortOrder string, allowed map[string]string, defaultColumn string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = defaultColumn
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

// pageClause renders LIMIT/OFFSET for a normalized page request
func pageClause(page models.PageRequest) (string, []interface{}) {
	page = page.Normalize()
	return "LIMIT ? OFFSET ?", []interface{}{page.Limit, page.Offset()}
}
