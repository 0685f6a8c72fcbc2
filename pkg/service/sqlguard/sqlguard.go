// Package sqlguard cleans and checks SQL text produced by the language model
// before it reaches the database.
package sqlguard

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rqlite/sql"
)

var (
	// ErrEmptyStatement is returned when nothing is left after cleaning
	ErrEmptyStatement = goerr.New("empty SQL statement")
	// ErrMultipleStatements is returned for text holding more than one statement
	ErrMultipleStatements = goerr.New("multiple SQL statements")
	// ErrNotReadOnly is returned for statements that are not plain reads
	ErrNotReadOnly = goerr.New("SQL statement is not read-only")
	// ErrSyntax is returned when the text does not parse as SQLite SQL
	ErrSyntax = goerr.New("invalid SQL syntax")
)

var (
	// An info string (```sql, ```postgresql, ...) is only taken when a line
	// break follows it, so ```SELECT 1``` keeps its first keyword.
	leadingFence  = regexp.MustCompile("^```(?:[A-Za-z][A-Za-z0-9_+-]*[ \t]*\r?\n|(?i:sql(?:ite)?)[ \t]+)?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// Extract strips a surrounding code fence (```sql ... ```) and whitespace
func Extract(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Validate accepts exactly one SELECT statement, optionally introduced by a
// WITH clause, and returns it without a trailing semicolon.
func Validate(statement string) (string, error) {
	s := strings.TrimSpace(statement)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return "", goerr.Wrap(ErrEmptyStatement, "invalid generated SQL", goerr.T(model.ErrTagStore))
	}

	parser := sql.NewParser(strings.NewReader(s))
	stmt, err := parser.ParseStatement()
	if errors.Is(err, io.EOF) {
		return "", goerr.Wrap(ErrEmptyStatement, "invalid generated SQL", goerr.V("statement", s), goerr.T(model.ErrTagStore))
	}
	if err != nil {
		return "", goerr.Wrap(ErrSyntax, "invalid generated SQL",
			goerr.V("statement", s),
			goerr.V("parse_error", err.Error()),
			goerr.T(model.ErrTagStore))
	}

	if _, ok := stmt.(*sql.SelectStatement); !ok {
		return "", goerr.Wrap(ErrNotReadOnly, "invalid generated SQL",
			goerr.V("statement", s),
			goerr.V("kind", statementKind(s)),
			goerr.T(model.ErrTagStore))
	}

	if _, err := parser.ParseStatement(); !errors.Is(err, io.EOF) {
		return "", goerr.Wrap(ErrMultipleStatements, "invalid generated SQL", goerr.V("statement", s), goerr.T(model.ErrTagStore))
	}

	return s, nil
}

// statementKind is the leading keyword, for logs
func statementKind(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return strings.ToUpper(fields[0])
	}
	return ""
}
