package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type contentChunkRepository struct {
	db *sql.DB
}

func (r *contentChunkRepository) CreateMany(ctx context.Context, chunks []*model.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction", goerr.T(model.ErrTagStore))
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit chunks", goerr.T(model.ErrTagStore))
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, chunks []*model.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_chunks (content_id, chunk_text, chunk_index, created_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare chunk insert", goerr.T(model.ErrTagStore))
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ContentID, chunk.Text, chunk.Index, now); err != nil {
			return goerr.Wrap(err, "failed to insert chunk",
				goerr.V("content_id", chunk.ContentID),
				goerr.V("index", chunk.Index),
				goerr.T(model.ErrTagStore))
		}
	}
	return nil
}

func (r *contentChunkRepository) ListByContentID(ctx context.Context, contentID int64) ([]*model.ContentChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content_id, chunk_text, chunk_index, created_at
		FROM content_chunks WHERE content_id = ? ORDER BY chunk_index`, contentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chunks", goerr.V("content_id", contentID), goerr.T(model.ErrTagStore))
	}
	defer func() { _ = rows.Close() }()

	result := []*model.ContentChunk{}
	for rows.Next() {
		var c model.ContentChunk
		var createdAt sqlTime
		if err := rows.Scan(&c.ID, &c.ContentID, &c.Text, &c.Index, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan chunk", goerr.T(model.ErrTagStore))
		}
		c.CreatedAt = createdAt.Time
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate chunks", goerr.T(model.ErrTagStore))
	}
	return result, nil
}
