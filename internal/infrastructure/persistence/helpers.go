package persistence

import (
	"context"
	"database/sql"
	"time"
)

// Executor abstracts *sql.DB and *sql.Tx so repository methods can run
// inside a caller-owned transaction when one exists.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// executorFor resolves the context transaction when one was injected by
// TransactionManager, falling back to the repository's own connection.
// Mutating methods route through this so a service can group several
// repository writes into one transaction.
func executorFor(ctx context.Context, db *sql.DB) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// QueryMaps runs an arbitrary SELECT and scans every row into a map keyed by
// column name. []byte values come back as strings. Saved views and admin
// reports use this; their column sets are not known at compile time.
func QueryMaps(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = val
			}
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

// parseTime parses the raw bytes MySQL returns for DATETIME columns.
// Tries the plain datetime layout first, then RFC3339.
func parseTime(raw []byte) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02 15:04:05", string(raw)); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, string(raw)); err == nil {
		return t
	}
	return time.Time{}
}

// parseTimePtr is parseTime for nullable columns
func parseTimePtr(raw []byte) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	t := parseTime(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
