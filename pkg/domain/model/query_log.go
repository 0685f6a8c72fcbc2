package model

import "time"

// QueryLog is an audit record of one answered question
type QueryLog struct {
	ID           int64
	UserQuestion string
	Persona      string
	AIResponse   string
	CreatedAt    time.Time
}

// Answer is the payload returned to the caller of both question answering modes
type Answer struct {
	Persona string
	Text    string
}

// Row is one result row of a raw read query, keeping the column order of the
// statement.
type Row struct {
	Columns []string
	Values  []any
}

// Map returns the row as column name to value
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, col := range r.Columns {
		if i < len(r.Values) {
			m[col] = r.Values[i]
		}
	}
	return m
}
