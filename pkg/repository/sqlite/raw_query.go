package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// rawQueryExecutor runs statements on the read-only handle. query_only is set
// on every connection of that handle, so writes fail at the engine level even
// if a statement slipped past validation.
type rawQueryExecutor struct {
	db      *sql.DB
	maxRows int
	timeout time.Duration
}

func (x *rawQueryExecutor) Query(ctx context.Context, statement string) ([]model.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	rows, err := x.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to execute query", goerr.V("statement", statement), goerr.T(model.ErrTagStore))
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get columns", goerr.T(model.ErrTagStore))
	}

	result := []model.Row{}
	for rows.Next() {
		if len(result) >= x.maxRows {
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, goerr.Wrap(err, "failed to scan row", goerr.T(model.ErrTagStore))
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		result = append(result, model.Row{
			Columns: columns,
			Values:  values,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate rows", goerr.V("statement", statement), goerr.T(model.ErrTagStore))
	}
	return result, nil
}
