package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/pkg/utils"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB is a SQL database holding accident rows.
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to a sqlite3 or postgres database and verifies the
// connection.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases alive across queries.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &DB{db: db, driver: driver}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// LoadRows reads every row of table, keeping the table's column order.
// Text values are typed the same way CSV cells are; NULL becomes nil.
func (d *DB) LoadRows(ctx context.Context, table string) ([]model.Row, []string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", table, err)
	}

	var out []model.Row
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(model.Row, len(columns))
		for i, c := range columns {
			row[c] = fromSQL(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, columns, nil
}

func fromSQL(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return utils.ParseValue(string(val))
	case string:
		return utils.ParseValue(val)
	case int64:
		return int(val)
	case float64, bool:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		s, ok := utils.FormatValue(val)
		if !ok {
			return nil
		}
		return utils.ParseValue(s)
	}
}

// SaveRows replaces table with rows: any existing table is dropped and
// recreated in the same transaction as the inserts, so a failed save keeps
// the previous contents. Columns holding only numbers get a numeric type,
// all others text.
func (d *DB) SaveRows(ctx context.Context, table string, columns []string, rows []model.Row) (int, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("save %s: no columns", table)
	}

	defs := make([]string, len(columns))
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		defs[i] = quoted[i] + " " + d.columnType(c, rows)
		marks[i] = d.placeholder(i + 1)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", table, err)
	}
	createTable := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createTable); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	args := make([]interface{}, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			args[i] = toSQL(row[c])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return count, fmt.Errorf("insert row %d: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count, nil
}

func toSQL(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, int, int64, float64, bool, string:
		return val
	default:
		s, ok := utils.FormatValue(val)
		if !ok {
			return nil
		}
		return s
	}
}

func (d *DB) columnType(column string, rows []model.Row) string {
	numeric := false
	for _, row := range rows {
		v, ok := row.Value(column)
		if !ok {
			continue
		}
		switch v.(type) {
		case int, int64, float64:
			numeric = true
		default:
			return "TEXT"
		}
	}
	if !numeric {
		return "TEXT"
	}
	if d.driver == DriverPostgres {
		return "DOUBLE PRECISION"
	}
	return "NUMERIC"
}

func (d *DB) placeholder(n int) string {
	if d.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quoteIdent quotes a table or column name for both supported dialects.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
