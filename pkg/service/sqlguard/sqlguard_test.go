package sqlguard_test

import (
	"testing"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/service/sqlguard"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "sql fence",
			raw:      "```sql\nSELECT COUNT(*) FROM contents\n```",
			expected: "SELECT COUNT(*) FROM contents",
		},
		{
			name:     "fence with surrounding whitespace",
			raw:      "  \n```sql\n  SELECT 1;\n```  \n",
			expected: "SELECT 1;",
		},
		{
			name:     "bare fence",
			raw:      "```\nSELECT title FROM contents\n```",
			expected: "SELECT title FROM contents",
		},
		{
			name:     "fence on one line",
			raw:      "```sql SELECT 1```",
			expected: "SELECT 1",
		},
		{
			name:     "no fence",
			raw:      "  SELECT DISTINCT topic FROM contents  ",
			expected: "SELECT DISTINCT topic FROM contents",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, sqlguard.Extract(tc.raw)).Equal(tc.expected)
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	testCases := []struct {
		name      string
		statement string
		expected  string
	}{
		{"simple select", "SELECT COUNT(*) FROM contents", "SELECT COUNT(*) FROM contents"},
		{"trailing semicolon", "SELECT 1;", "SELECT 1"},
		{"lower case", "select topic from contents", "select topic from contents"},
		{"cte", "WITH t AS (SELECT topic FROM contents) SELECT * FROM t", "WITH t AS (SELECT topic FROM contents) SELECT * FROM t"},
		{"keyword inside literal", "SELECT * FROM contents WHERE title = 'DROP TABLE; now'", "SELECT * FROM contents WHERE title = 'DROP TABLE; now'"},
		{"escaped quote", "SELECT * FROM contents WHERE title = 'it''s'", "SELECT * FROM contents WHERE title = 'it''s'"},
		{"column resembling keyword", "SELECT updated_at, created_at FROM contents", "SELECT updated_at, created_at FROM contents"},
		{"grouping", "SELECT topic, COUNT(*) FROM contents GROUP BY topic ORDER BY COUNT(*) DESC", "SELECT topic, COUNT(*) FROM contents GROUP BY topic ORDER BY COUNT(*) DESC"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sqlguard.Validate(tc.statement)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tc.expected)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	testCases := []struct {
		name      string
		statement string
		expected  error
	}{
		{"empty", "   ", sqlguard.ErrEmptyStatement},
		{"only semicolon", ";", sqlguard.ErrEmptyStatement},
		{"delete", "DELETE FROM contents", sqlguard.ErrNotReadOnly},
		{"update", "UPDATE contents SET title = 'x'", sqlguard.ErrNotReadOnly},
		{"insert", "INSERT INTO query_logs (user_question) VALUES ('x')", sqlguard.ErrNotReadOnly},
		{"drop", "drop table query_logs", sqlguard.ErrNotReadOnly},
		{"stacked statements", "SELECT 1; DELETE FROM contents", sqlguard.ErrMultipleStatements},
		{"two selects", "SELECT 1; SELECT 2", sqlguard.ErrMultipleStatements},
		{"unterminated literal", "SELECT 'abc", sqlguard.ErrSyntax},
		{"explanation text", "Here is the query: SELECT 1", sqlguard.ErrSyntax},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sqlguard.Validate(tc.statement)
			gt.Error(t, err).Is(tc.expected)
			gt.Bool(t, goerr.HasTag(err, model.ErrTagStore)).True()
		})
	}
}

func TestValidateRejectsWrites(t *testing.T) {
	for _, statement := range []string{
		"PRAGMA query_only = 0",
		"WITH x AS (SELECT 1) DELETE FROM contents",
		"ATTACH DATABASE 'other.db' AS other",
		"CREATE TABLE t (id INTEGER)",
	} {
		t.Run(statement, func(t *testing.T) {
			_, err := sqlguard.Validate(statement)
			gt.Error(t, err)
			gt.Bool(t, goerr.HasTag(err, model.ErrTagStore)).True()
		})
	}
}

func TestExtractThenValidate(t *testing.T) {
	got, err := sqlguard.Validate(sqlguard.Extract("```sql\nSELECT DISTINCT topic FROM contents WHERE grade = 'Grade 5';\n```"))
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("SELECT DISTINCT topic FROM contents WHERE grade = 'Grade 5'")
}

func TestExtractKeepsStatementAfterBareFence(t *testing.T) {
	gt.Value(t, sqlguard.Extract("```SELECT 1```")).Equal("SELECT 1")
	gt.Value(t, sqlguard.Extract("```SQLite\nSELECT 2\n```")).Equal("SELECT 2")
}

func TestExtractAnyInfoString(t *testing.T) {
	for _, lang := range []string{"postgresql", "mysql", "PostgreSQL", "tsql", "plpgsql"} {
		t.Run(lang, func(t *testing.T) {
			raw := "```" + lang + "\nSELECT DISTINCT topic FROM contents\n```"
			gt.Value(t, sqlguard.Extract(raw)).Equal("SELECT DISTINCT topic FROM contents")

			got, err := sqlguard.Validate(sqlguard.Extract(raw))
			gt.NoError(t, err)
			gt.Value(t, got).Equal("SELECT DISTINCT topic FROM contents")
		})
	}
}
