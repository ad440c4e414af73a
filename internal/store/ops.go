package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/hanzidojo/engine/internal/engerr"
)

// Row is a generic column-name to value map, the currency of the typed CRUD
// API. JSON-typed columns (json_columns.go) are transparently (de)serialized
// at the boundary of every operation in this file.
type Row map[string]any

// Conditions is an equality-conditions map (AND-ed together) used by
// UpdateWhere, DeleteWhere, SelectWhere, and CountWhere.
type Conditions map[string]any

// FetchMode selects what Query returns.
type FetchMode int

const (
	FetchAll      FetchMode = iota // all matching rows
	FetchOne                       // first matching row, or sql.ErrNoRows
	FetchAffected                  // number of rows affected (for DML)
)

// sortedKeys returns m's keys in a deterministic order so generated SQL
// (and therefore its placeholder numbering) is stable and testable.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Insert inserts a single row and returns it as persisted (including any
// server-assigned defaults the RETURNING clause picks up).
func (d *DB) Insert(ctx context.Context, table string, row Row) (Row, error) {
	rows, err := d.InsertBatch(ctx, table, []Row{row})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// InsertBatch inserts many rows sharing the same column set in one
// round-trip and returns each inserted row via RETURNING *.
func (d *DB) InsertBatch(ctx context.Context, table string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := sortedKeys(rows[0])

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))

	args := make([]any, 0, len(rows)*len(cols))
	placeholder := 1
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, col := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", placeholder)
			placeholder++
			v, err := encodeValue(col, row[col])
			if err != nil {
				return nil, engerrQuery(err, "insert: encode column %s", col)
			}
			args = append(args, v)
		}
		sb.WriteString(")")
	}
	sb.WriteString(" RETURNING *")

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	sqlRows, err := d.dbu.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, classify(err, "insert")
	}
	defer sqlRows.Close()

	out, err := scanRows(sqlRows)
	if err != nil {
		return nil, classify(err, "insert scan")
	}
	return out, nil
}

// UpdateWhere updates every row matching where with the values in set,
// returning the number of affected rows.
func (d *DB) UpdateWhere(ctx context.Context, table string, set Row, where Conditions) (int64, error) {
	if len(set) == 0 {
		return 0, engerrQuery(nil, "update: empty set clause")
	}
	setCols := sortedKeys(set)
	whereCols := sortedKeys(where)

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", table)
	args := make([]any, 0, len(setCols)+len(whereCols))
	placeholder := 1
	for i, col := range setCols {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", col, placeholder)
		placeholder++
		v, err := encodeValue(col, set[col])
		if err != nil {
			return 0, engerrQuery(err, "update: encode column %s", col)
		}
		args = append(args, v)
	}
	writeWhereClause(&sb, whereCols, &placeholder)
	for _, col := range whereCols {
		args = append(args, where[col])
	}

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	res, err := d.dbu.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, classify(err, "update")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err, "update rows-affected")
	}
	return n, nil
}

// DeleteWhere deletes every row matching where, returning the number of
// affected rows.
func (d *DB) DeleteWhere(ctx context.Context, table string, where Conditions) (int64, error) {
	whereCols := sortedKeys(where)
	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", table)
	placeholder := 1
	writeWhereClause(&sb, whereCols, &placeholder)

	args := make([]any, 0, len(whereCols))
	for _, col := range whereCols {
		args = append(args, where[col])
	}

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	res, err := d.dbu.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, classify(err, "delete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err, "delete rows-affected")
	}
	return n, nil
}

// SelectOptions tunes SelectWhere beyond simple equality filtering.
type SelectOptions struct {
	Columns []string // projection; empty means "*"
	OrderBy string   // raw ORDER BY clause, e.g. "created_at DESC"
	Limit   int      // 0 means unlimited
}

// SelectWhere returns every row matching where, honoring an optional
// column projection, order, and limit.
func (d *DB) SelectWhere(ctx context.Context, table string, where Conditions, opts SelectOptions) ([]Row, error) {
	projection := "*"
	if len(opts.Columns) > 0 {
		projection = strings.Join(opts.Columns, ", ")
	}
	whereCols := sortedKeys(where)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, table)
	placeholder := 1
	writeWhereClause(&sb, whereCols, &placeholder)
	if opts.OrderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY %s", opts.OrderBy)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}

	args := make([]any, 0, len(whereCols))
	for _, col := range whereCols {
		args = append(args, where[col])
	}

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	rows, err := d.dbu.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, classify(err, "select")
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, classify(err, "select scan")
	}
	return out, nil
}

// CountWhere returns the number of rows matching where.
func (d *DB) CountWhere(ctx context.Context, table string, where Conditions) (int64, error) {
	whereCols := sortedKeys(where)
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT count(*) FROM %s", table)
	placeholder := 1
	writeWhereClause(&sb, whereCols, &placeholder)

	args := make([]any, 0, len(whereCols))
	for _, col := range whereCols {
		args = append(args, where[col])
	}

	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	var n int64
	if err := d.dbu.QueryRow(ctx, sb.String(), args...).Scan(&n); err != nil {
		return 0, classify(err, "count")
	}
	return n, nil
}

// Query executes a caller-supplied parameterized statement in one of three
// fetch modes (spec §4.1): all rows, one row, or an affected-row count.
func (d *DB) Query(ctx context.Context, mode FetchMode, query string, args ...any) ([]Row, int64, error) {
	ctx, cancel := d.withStatementTimeout(ctx)
	defer cancel()

	switch mode {
	case FetchAffected:
		res, err := d.dbu.Exec(ctx, query, args...)
		if err != nil {
			return nil, 0, classify(err, "query exec")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, 0, classify(err, "query rows-affected")
		}
		return nil, n, nil
	case FetchOne:
		rows, err := d.dbu.Query(ctx, query, args...)
		if err != nil {
			return nil, 0, classify(err, "query one")
		}
		defer rows.Close()
		out, err := scanRows(rows)
		if err != nil {
			return nil, 0, classify(err, "query one scan")
		}
		if len(out) == 0 {
			return nil, 0, classify(sql.ErrNoRows, "query one")
		}
		return out[:1], 1, nil
	default: // FetchAll
		rows, err := d.dbu.Query(ctx, query, args...)
		if err != nil {
			return nil, 0, classify(err, "query all")
		}
		defer rows.Close()
		out, err := scanRows(rows)
		if err != nil {
			return nil, 0, classify(err, "query all scan")
		}
		return out, int64(len(out)), nil
	}
}

func writeWhereClause(sb *strings.Builder, cols []string, placeholder *int) {
	if len(cols) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(sb, "%s = $%d", col, *placeholder)
		*placeholder++
	}
}

// scanRows materializes *sql.Rows into []Row, decoding JSON columns back
// into generic any values (maps/slices) so callers get typed-ish data
// without needing to know which columns were JSON.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			v := raw[i]
			if isJSONColumn(col) {
				if b, ok := v.([]byte); ok && len(b) > 0 {
					var decoded any
					if err := decodeValue(b, &decoded); err != nil {
						return nil, err
					}
					v = decoded
				}
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// engerrQuery wraps a caller-side input problem (not a driver failure) as
// a QueryError directly, bypassing classify's driver-error heuristics.
func engerrQuery(err error, format string, args ...any) error {
	return engerr.WrapQueryError(err, format, args...)
}
