package database

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoFields     = errors.New("no fields given")
	ErrEmptyWhere   = errors.New("where clause must not be empty")
	ErrIdentifier   = errors.New("invalid identifier")
	ErrDuplicateKey = errors.New("duplicate field name")
)

var (
	identPattern   = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	orderByPattern = regexp.MustCompile(`^([a-z_][a-z0-9_]*)(\s+(?i:asc|desc))?$`)
)

// Field is one column/value pair. Fields keep insertion order, which is the
// order placeholders are numbered and arguments are bound.
type Field struct {
	Name  string
	Value any
}

type Fields []Field

// F builds a Field.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Set replaces the value of an existing field or appends a new one.
func (f Fields) Set(name string, value any) Fields {
	for i := range f {
		if f[i].Name == name {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (f Fields) Get(name string) (any, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, field := range f {
		names[i] = field.Name
	}
	return names
}

func (f Fields) validate() error {
	seen := make(map[string]struct{}, len(f))
	for _, field := range f {
		if err := checkIdent(field.Name); err != nil {
			return err
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}

// SelectQuery describes a SELECT against one table. Where entries are ANDed
// equality comparisons; a nil value compares with IS NULL.
type SelectQuery struct {
	Table   string
	Columns []string
	Where   Fields
	OrderBy string
	Limit   int
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrIdentifier, name)
	}
	return nil
}

func columnList(columns []string) (string, error) {
	if len(columns) == 0 {
		return "*", nil
	}
	for _, c := range columns {
		if c == "*" {
			continue
		}
		if err := checkIdent(c); err != nil {
			return "", err
		}
	}
	return strings.Join(columns, ", "), nil
}

func orderByClause(orderBy string) (string, error) {
	parts := strings.Split(orderBy, ",")
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		m := orderByPattern.FindStringSubmatch(part)
		if m == nil {
			return "", fmt.Errorf("%w: order by %q", ErrIdentifier, orderBy)
		}
		term := m[1]
		if dir := strings.TrimSpace(m[2]); dir != "" {
			term += " " + strings.ToUpper(dir)
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, ", "), nil
}

// whereClause renders "a = $n AND b IS NULL ..." starting at placeholder
// index start, appending bound values to args.
func whereClause(where Fields, start int, args []any) (string, []any) {
	clauses := make([]string, 0, len(where))
	n := start
	for _, field := range where {
		if field.Value == nil {
			clauses = append(clauses, field.Name+" IS NULL")
			continue
		}
		clauses = append(clauses, field.Name+" = $"+strconv.Itoa(n))
		args = append(args, field.Value)
		n++
	}
	return strings.Join(clauses, " AND "), args
}

// BuildInsert renders a parameterized INSERT ... RETURNING statement.
func BuildInsert(table string, data Fields, returning []string) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, ErrNoFields
	}
	if err := data.validate(); err != nil {
		return "", nil, err
	}
	ret, err := columnList(returning)
	if err != nil {
		return "", nil, err
	}

	placeholders := make([]string, len(data))
	args := make([]any, len(data))
	for i, field := range data {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = field.Value
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(data.Names(), ", "), strings.Join(placeholders, ", "), ret)
	return query, args, nil
}

// BuildSelect renders a parameterized SELECT statement.
func BuildSelect(q SelectQuery) (string, []any, error) {
	if err := checkIdent(q.Table); err != nil {
		return "", nil, err
	}
	if err := q.Where.validate(); err != nil {
		return "", nil, err
	}
	cols, err := columnList(q.Columns)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, q.Table)

	if len(q.Where) > 0 {
		var clause string
		clause, args = whereClause(q.Where, 1, args)
		sb.WriteString(" WHERE " + clause)
	}

	if q.OrderBy != "" {
		order, err := orderByClause(q.OrderBy)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ORDER BY " + order)
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}

	return sb.String(), args, nil
}

// BuildUpdate renders a parameterized UPDATE ... RETURNING statement. SET
// values take the first placeholders, WHERE values follow.
func BuildUpdate(table string, data, where Fields, returning []string) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, ErrNoFields
	}
	if len(where) == 0 {
		return "", nil, ErrEmptyWhere
	}
	if err := data.validate(); err != nil {
		return "", nil, err
	}
	if err := where.validate(); err != nil {
		return "", nil, err
	}
	ret, err := columnList(returning)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, len(data))
	args := make([]any, 0, len(data)+len(where))
	for i, field := range data {
		sets[i] = field.Name + " = $" + strconv.Itoa(i+1)
		args = append(args, field.Value)
	}

	clause, args := whereClause(where, len(data)+1, args)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
		table, strings.Join(sets, ", "), clause, ret)
	return query, args, nil
}

// BuildDelete renders a parameterized DELETE statement.
func BuildDelete(table string, where Fields) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(where) == 0 {
		return "", nil, ErrEmptyWhere
	}
	if err := where.validate(); err != nil {
		return "", nil, err
	}

	clause, args := whereClause(where, 1, nil)
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, clause), args, nil
}
