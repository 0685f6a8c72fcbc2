package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type contentRepository struct {
	db *sql.DB
}

const contentColumns = "id, title, topic, grade, content, COALESCE(file_name, ''), chunk_count, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(s rowScanner) (*model.Content, error) {
	var c model.Content
	var createdAt, updatedAt sqlTime
	if err := s.Scan(&c.ID, &c.Title, &c.Topic, &c.Grade, &c.Body, &c.FileName, &c.ChunkCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *contentRepository) Create(ctx context.Context, content *model.Content) (*model.Content, error) {
	return insertContent(ctx, r.db, content)
}

func (r *contentRepository) CreateWithChunks(ctx context.Context, content *model.Content, chunks []string) (*model.Content, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction", goerr.T(model.ErrTagStore))
	}
	defer func() { _ = tx.Rollback() }()

	input := *content
	input.ChunkCount = len(chunks)
	created, err := insertContent(ctx, tx, &input)
	if err != nil {
		return nil, err
	}

	records := make([]*model.ContentChunk, len(chunks))
	for i, text := range chunks {
		records[i] = &model.ContentChunk{ContentID: created.ID, Text: text, Index: i}
	}
	if err := insertChunks(ctx, tx, records); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit content", goerr.V("content_id", created.ID), goerr.T(model.ErrTagStore))
	}
	return created, nil
}

func insertContent(ctx context.Context, db execer, content *model.Content) (*model.Content, error) {
	now := time.Now().UTC()

	var fileName any
	if content.FileName != "" {
		fileName = content.FileName
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO contents (title, topic, grade, content, file_name, chunk_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		content.Title, content.Topic, content.Grade, content.Body, fileName, content.ChunkCount, now, now,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert content", goerr.V("title", content.Title), goerr.T(model.ErrTagStore))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get inserted content id", goerr.T(model.ErrTagStore))
	}

	created := *content
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

func (r *contentRepository) Get(ctx context.Context, id int64) (*model.Content, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM contents WHERE id = ?", id)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrContentNotFound, "content not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get content", goerr.V("id", id), goerr.T(model.ErrTagStore))
	}
	return c, nil
}

func (r *contentRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Content, error) {
	result := make(map[int64]*model.Content, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+contentColumns+" FROM contents WHERE id IN ("+strings.Join(placeholders, ",")+")", args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get contents", goerr.V("ids", ids), goerr.T(model.ErrTagStore))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan content", goerr.T(model.ErrTagStore))
		}
		result[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate contents", goerr.T(model.ErrTagStore))
	}
	return result, nil
}

func (r *contentRepository) List(ctx context.Context, filter model.ContentFilter) ([]*model.Content, error) {
	query := "SELECT " + contentColumns + " FROM contents WHERE 1=1"
	var args []any
	if filter.Grade != "" {
		query += " AND grade = ?"
		args = append(args, filter.Grade)
	}
	if filter.TitleContains != "" {
		// instr is case sensitive, matching the in-memory backend
		query += " AND instr(title, ?) > 0"
		args = append(args, filter.TitleContains)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contents", goerr.V("filter", filter), goerr.T(model.ErrTagStore))
	}
	defer func() { _ = rows.Close() }()

	var result []*model.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan content", goerr.T(model.ErrTagStore))
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate contents", goerr.T(model.ErrTagStore))
	}
	return result, nil
}

func (r *contentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contents").Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count contents", goerr.T(model.ErrTagStore))
	}
	return n, nil
}

func (r *contentRepository) CountDistinctTopics(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT topic) FROM contents").Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count topics", goerr.T(model.ErrTagStore))
	}
	return n, nil
}
