package document

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCVNotFound = errors.New("cv not found")

type Repository interface {
	Create(ctx context.Context, userID int, filename, storageURL string, sizeBytes int64) (*CV, error)
	FindByIDForUser(ctx context.Context, id, userID int) (*CV, error)
	ListByUser(ctx context.Context, userID int) ([]CV, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID int, filename, storageURL string, sizeBytes int64) (*CV, error) {
	var cv CV
	err := r.db.GetContext(ctx, &cv, `
		INSERT INTO cvs (user_id, filename, storage_url, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, filename, storage_url, size_bytes, created_at
	`, userID, filename, storageURL, sizeBytes)
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *repository) FindByIDForUser(ctx context.Context, id, userID int) (*CV, error) {
	var cv CV
	err := r.db.GetContext(ctx, &cv, `
		SELECT id, user_id, filename, storage_url, size_bytes, created_at
		FROM cvs
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCVNotFound
		}
		return nil, err
	}
	return &cv, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]CV, error) {
	cvs := []CV{}
	err := r.db.SelectContext(ctx, &cvs, `
		SELECT id, user_id, filename, storage_url, size_bytes, created_at
		FROM cvs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return cvs, nil
}
