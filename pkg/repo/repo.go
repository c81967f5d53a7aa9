package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the query surface shared by *pgxpool.Pool and pgx.Tx.
type Tx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Join concatenates non-empty SQL fragments with a single space.
func Join(expressions ...string) string {
	parts := make([]string, 0, len(expressions))
	for _, e := range expressions {
		if strings.TrimSpace(e) == "" {
			continue
		}
		parts = append(parts, e)
	}
	return strings.Join(parts, " ")
}

func JoinWhere(expressions ...string) string {
	if len(expressions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(expressions, " AND ")
}

// Insert builds "INSERT INTO table (f1, f2) VALUES ($1, $2) [RETURNING ...]".
func Insert(tableName string, fields []string, returning ...string) string {
	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	var values string
	if len(fields) == 0 {
		values = "DEFAULT VALUES"
	} else {
		values = fmt.Sprintf("(%s) VALUES (%s)", strings.Join(fields, ", "), strings.Join(placeholders, ", "))
	}
	q := fmt.Sprintf("INSERT INTO %s %s", tableName, values)
	if len(returning) > 0 {
		q += " RETURNING " + strings.Join(returning, ", ")
	}
	return q
}

// Update builds "UPDATE table SET f1 = $1, f2 = $2 [WHERE ...]".
func Update(tableName string, fields []string, where ...string) string {
	setters := make([]string, len(fields))
	for i, f := range fields {
		setters[i] = fmt.Sprintf("%s = $%d", f, i+1)
	}
	return Join(
		fmt.Sprintf("UPDATE %s SET %s", tableName, strings.Join(setters, ", ")),
		JoinWhere(where...),
	)
}

func OrderBy(fields []string, direction SortDirection) string {
	if len(fields) == 0 {
		return ""
	}
	return fmt.Sprintf("ORDER BY %s %s", strings.Join(fields, ", "), direction)
}

func FormatLimitOffset(limit, offset int) string {
	if limit > 0 && offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	}
	if limit > 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	}
	if offset > 0 {
		return fmt.Sprintf("OFFSET %d", offset)
	}
	return ""
}
