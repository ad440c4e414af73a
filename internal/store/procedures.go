package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// NamedArg is one named argument to a stored procedure call, Postgres
// "=>" named-notation style (SELECT * FROM proc(arg_name => $1, ...)).
type NamedArg struct {
	Name  string
	Value any
}

// CallProcedure invokes a Postgres function positionally and returns its
// result set as rows (spec §4.1: "call stored procedure... returns either
// a result set or a single JSON document").
func (d *DB) CallProcedure(ctx context.Context, name string, args ...any) ([]Row, error) {
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("SELECT * FROM %s(%s)", name, strings.Join(placeholders, ", "))

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	rows, _, err := d.queryRows(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "call procedure "+name)
	}
	return rows, nil
}

// CallProcedureNamed invokes a Postgres function using named-argument
// notation, so callers don't depend on the function's declared parameter
// order.
func (d *DB) CallProcedureNamed(ctx context.Context, name string, args []NamedArg) ([]Row, error) {
	parts := make([]string, len(args))
	values := make([]any, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%s => $%d", a.Name, i+1)
		values[i] = a.Value
	}
	query := fmt.Sprintf("SELECT * FROM %s(%s)", name, strings.Join(parts, ", "))

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	rows, _, err := d.queryRows(ctx, query, values...)
	if err != nil {
		return nil, classify(err, "call procedure "+name)
	}
	return rows, nil
}

// CallProcedureJSON invokes a Postgres function that returns a single
// jsonb/json document (rather than a row set) and unmarshals it into out.
func (d *DB) CallProcedureJSON(ctx context.Context, name string, out any, args ...any) error {
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("SELECT %s(%s)", name, strings.Join(placeholders, ", "))

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	var raw []byte
	if err := d.dbu.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return classify(err, "call procedure json "+name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return classify(err, "decode procedure json "+name)
	}
	return nil
}

// queryRows is the shared row-materializing helper behind CallProcedure*.
func (d *DB) queryRows(ctx context.Context, query string, args ...any) ([]Row, int64, error) {
	rows, err := d.dbu.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, int64(len(out)), nil
}
