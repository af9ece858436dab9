package database

import (
	"database/sql"
	"strconv"
	"time"
)

// Row is one record keyed by column name.
type Row map[string]any

// Result is the normalized outcome of Execute. Select-like statements fill
// Rows; every other statement fills Meta.
type Result struct {
	Rows []Row
	Meta *Meta
}

// Meta describes a write statement.
type Meta struct {
	AffectedRows int64
	// RowCount mirrors AffectedRows.
	RowCount int64
	// InsertID is the generated key of an insert, nil when none was reported.
	InsertID *int64
	// Rows holds rows returned by a RETURNING clause.
	Rows []Row
}

// Affected returns the affected row count, or 0 for select-like results.
func (r *Result) Affected() int64 {
	if r == nil || r.Meta == nil {
		return 0
	}
	return r.Meta.AffectedRows
}

// InsertID returns the generated key of an insert, or 0.
func (r *Result) InsertID() int64 {
	if r == nil || r.Meta == nil || r.Meta.InsertID == nil {
		return 0
	}
	return *r.Meta.InsertID
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Has reports whether the column is present and not NULL.
func (r Row) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

// Int reads a column as int64. NULL and unparseable values read as 0.
func (r Row) Int(column string) int64 {
	n, _ := toInt64(r[column])
	return n
}

// Float reads a column as float64. NULL and unparseable values read as 0.
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		n, _ := toInt64(v)
		return float64(n)
	}
}

// String reads a column as a string. NULL reads as "".
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Bool reads a column as a bool. MySQL TINYINT(1) columns read as integers.
func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		n, _ := toInt64(v)
		return n != 0
	}
}

// Time reads a column as time.Time. NULL reads as the zero time.
func (r Row) Time(column string) time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(n, 64)
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	case []byte:
		return toInt64(string(n))
	default:
		return 0, false
	}
}
