package database

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/hilthontt/encore/internal/domain/filter"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var naming = schema.NamingStrategy{}

type QueryBuilder struct {
	Conditions []string
	Args       []any
}

func (qb *QueryBuilder) Add(condition string, args ...any) {
	qb.Conditions = append(qb.Conditions, condition)
	qb.Args = append(qb.Args, args...)
}

func (qb *QueryBuilder) Build() (string, []any) {
	if len(qb.Conditions) == 0 {
		return "", nil
	}
	return strings.Join(qb.Conditions, " AND "), qb.Args
}

// GenerateDynamicQuery turns the filter map into a parameterised WHERE clause.
// Keys that are not fields of T are ignored. Conditions are emitted in key order.
func GenerateDynamicQuery[T any](f *filter.DynamicFilter, dialect string) (string, []any) {
	qb := &QueryBuilder{}

	if f == nil || !f.HasFilters() {
		return qb.Build()
	}

	typeT := reflect.TypeOf(*new(T))

	keys := make([]string, 0, len(f.Filter))
	for k := range f.Filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, fieldName := range keys {
		columnName, ok := SafeColumnName(fieldName, typeT)
		if !ok {
			continue
		}

		condition, args := generateFilterCondition(columnName, f.Filter[fieldName], likeOperator(dialect))
		if condition != "" {
			qb.Add(condition, args...)
		}
	}

	return qb.Build()
}

func likeOperator(dialect string) string {
	if dialect == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

// generateFilterCondition creates a single filter condition with parameters
func generateFilterCondition(columnName string, f filter.Filter, like string) (string, []any) {
	switch f.Type {
	case filter.FilterContains:
		return fmt.Sprintf("%s %s ?", columnName, like), []any{"%" + f.From + "%"}

	case filter.FilterNotContains:
		return fmt.Sprintf("%s NOT %s ?", columnName, like), []any{"%" + f.From + "%"}

	case filter.FilterStartsWith:
		return fmt.Sprintf("%s %s ?", columnName, like), []any{f.From + "%"}

	case filter.FilterEndsWith:
		return fmt.Sprintf("%s %s ?", columnName, like), []any{"%" + f.From}

	case filter.FilterEquals:
		return fmt.Sprintf("%s = ?", columnName), []any{f.From}

	case filter.FilterNotEqual:
		return fmt.Sprintf("%s != ?", columnName), []any{f.From}

	case filter.FilterLessThan:
		return fmt.Sprintf("%s < ?", columnName), []any{f.From}

	case filter.FilterLessThanOrEqual:
		return fmt.Sprintf("%s <= ?", columnName), []any{f.From}

	case filter.FilterGreaterThan:
		return fmt.Sprintf("%s > ?", columnName), []any{f.From}

	case filter.FilterGreaterThanOrEqual:
		return fmt.Sprintf("%s >= ?", columnName), []any{f.From}

	case filter.FilterInRange:
		if f.From == "" || f.To == "" {
			return "", nil
		}
		return fmt.Sprintf("%s BETWEEN ? AND ?", columnName), []any{f.From, f.To}

	default:
		return "", nil
	}
}

// GenerateDynamicSort creates ORDER BY clause
func GenerateDynamicSort[T any](f *filter.DynamicFilter) string {
	if f == nil || len(f.Sort) == 0 {
		return ""
	}

	typeT := reflect.TypeOf(*new(T))
	sortClauses := make([]string, 0, len(f.Sort))

	for _, sortCfg := range f.Sort {
		columnName, ok := SafeColumnName(sortCfg.ColID, typeT)
		if !ok {
			continue
		}

		direction := strings.ToUpper(string(sortCfg.Sort))
		if direction != "ASC" && direction != "DESC" {
			continue
		}

		sortClauses = append(sortClauses, fmt.Sprintf("%s %s", columnName, direction))
	}

	return strings.Join(sortClauses, ", ")
}

// ApplyDynamicFilter applies filtering and sorting to a GORM query
func ApplyDynamicFilter[T any](db *gorm.DB, f *filter.DynamicFilter) *gorm.DB {
	if whereClause, args := GenerateDynamicQuery[T](f, db.Dialector.Name()); whereClause != "" {
		db = db.Where(whereClause, args...)
	}

	if orderClause := GenerateDynamicSort[T](f); orderClause != "" {
		db = db.Order(orderClause)
	}

	return db
}

// SafeColumnName maps a Go field name of the model to its column. Only
// declared fields resolve, so user input never reaches the SQL text.
func SafeColumnName(fieldName string, modelType reflect.Type) (string, bool) {
	fld, ok := modelType.FieldByName(fieldName)
	if !ok || !fld.IsExported() {
		return "", false
	}

	if tag := fld.Tag.Get("gorm"); tag != "" {
		for part := range strings.SplitSeq(tag, ";") {
			if after, ok := strings.CutPrefix(part, "column:"); ok {
				return after, true
			}
		}
	}

	return naming.ColumnName("", fld.Name), true
}
