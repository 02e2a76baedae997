package role

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrRoleNotFound = errors.New("role not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]Role, error) {
	roles := []Role{}
	err := r.db.SelectContext(ctx, &roles, `
		SELECT id, title, description, tags, is_active, created_at
		FROM roles
		WHERE is_active = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Role, error) {
	var role Role
	err := r.db.GetContext(ctx, &role, `
		SELECT id, title, description, tags, is_active, created_at
		FROM roles
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// SeedDefaults is a single idempotent upsert per default role, safe
// under concurrent first requests.
func (r *repository) SeedDefaults(ctx context.Context) error {
	for _, item := range defaultRoles {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO roles (title, description, tags)
			VALUES ($1, $2, $3)
			ON CONFLICT (title) DO NOTHING
		`, item.Title, item.Description, pq.Array(item.Tags))
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) AddSelections(ctx context.Context, userID int, roleIDs []int) (added, skipped []int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	for _, roleID := range roleIDs {
		var exists bool
		err = tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1 AND is_active = TRUE)`, roleID)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			return nil, nil, ErrRoleNotFound
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO user_role_selections (user_id, role_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, roleID)
		if err != nil {
			return nil, nil, err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, nil, err
		}
		if n > 0 {
			added = append(added, roleID)
		} else {
			skipped = append(skipped, roleID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return added, skipped, nil
}

func (r *repository) ReplaceSelections(ctx context.Context, userID int, roleIDs []int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_role_selections WHERE user_id = $1`, userID); err != nil {
		return err
	}

	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_role_selections (user_id, role_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, roleID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) ListSelections(ctx context.Context, userID int) ([]SelectionWithRole, error) {
	selections := []SelectionWithRole{}
	err := r.db.SelectContext(ctx, &selections, `
		SELECT s.id, r.id AS role_id, r.title AS role_title,
		       r.description AS role_description, r.tags AS role_tags,
		       s.created_at
		FROM user_role_selections s
		JOIN roles r ON s.role_id = r.id
		WHERE s.user_id = $1 AND r.is_active = TRUE
		ORDER BY s.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return selections, nil
}

func (r *repository) ListSelectedTitles(ctx context.Context, userID int) ([]string, error) {
	titles := []string{}
	err := r.db.SelectContext(ctx, &titles, `
		SELECT r.title
		FROM user_role_selections s
		JOIN roles r ON s.role_id = r.id
		WHERE s.user_id = $1 AND r.is_active = TRUE
		ORDER BY s.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *repository) CountActiveByIDs(ctx context.Context, ids []int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM roles WHERE id = ANY($1) AND is_active = TRUE
	`, pq.Array(ids))
	return count, err
}
