package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type queryLogRepository struct {
	db *sql.DB
}

func (r *queryLogRepository) Create(ctx context.Context, log *model.QueryLog) (*model.QueryLog, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO query_logs (user_question, ai_response, persona, created_at)
		VALUES (?, ?, ?, ?)`,
		log.UserQuestion, log.AIResponse, log.Persona, now,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert query log", goerr.T(model.ErrTagStore))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inserted query log id", goerr.T(model.ErrTagStore))
	}

	created := *log
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

func (r *queryLogRepository) List(ctx context.Context) ([]*model.QueryLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_question, persona, ai_response, created_at
		FROM query_logs ORDER BY created_at, id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list query logs", goerr.T(model.ErrTagStore))
	}
	defer func() { _ = rows.Close() }()

	result := []*model.QueryLog{}
	for rows.Next() {
		var l model.QueryLog
		var createdAt sqlTime
		if err := rows.Scan(&l.ID, &l.UserQuestion, &l.Persona, &l.AIResponse, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan query log", goerr.T(model.ErrTagStore))
		}
		l.CreatedAt = createdAt.Time
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate query logs", goerr.T(model.ErrTagStore))
	}
	return result, nil
}

func (r *queryLogRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM query_logs").Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count query logs", goerr.T(model.ErrTagStore))
	}
	return n, nil
}
