package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `id, ref, user_id, kind, role_id, subject_ref, credits_reserved, status, external_session_id, join_url, analysis, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Session) (*Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO billable_sessions (ref, user_id, kind, role_id, subject_ref, credits_reserved, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'created')
		RETURNING %s`, sessionColumns)

	var out Session
	err := r.db.QueryRowxContext(ctx, query,
		s.Ref, s.UserID, s.Kind, s.RoleID, s.SubjectRef, s.CreditsReserved,
	).StructScan(&out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Session, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *repository) FindByIDForUser(ctx context.Context, id, userID int) (*Session, error) {
	return r.findOne(ctx, `WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *repository) FindByRef(ctx context.Context, ref string) (*Session, error) {
	return r.findOne(ctx, `WHERE ref = $1`, ref)
}

func (r *repository) FindByExternalID(ctx context.Context, externalID string) (*Session, error) {
	return r.findOne(ctx, `WHERE external_session_id = $1`, externalID)
}

func (r *repository) findOne(ctx context.Context, where string, args ...interface{}) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM billable_sessions %s`, sessionColumns, where)

	var s Session
	err := r.db.GetContext(ctx, &s, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int, kind string) ([]Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM billable_sessions
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC`, sessionColumns)

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID, kind); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Transitions are conditional updates: the WHERE clause encodes the
// legal source state, so an out-of-order or duplicate caller simply
// affects zero rows.

func (r *repository) MarkActive(ctx context.Context, id int, externalSessionID, joinURL string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE billable_sessions
		SET status = 'active', external_session_id = NULLIF($2, ''), join_url = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1 AND status = 'created'
	`, id, externalSessionID, joinURL)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) MarkReversed(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE billable_sessions
		SET status = 'reservation_reversed', updated_at = NOW()
		WHERE id = $1 AND status = 'created'
	`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) Resolve(ctx context.Context, id int, terminal string) (bool, error) {
	if terminal != StatusDone && terminal != StatusFailed {
		return false, fmt.Errorf("illegal terminal status %q", terminal)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE billable_sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id, terminal)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *repository) SetAnalysis(ctx context.Context, id int, analysis string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE billable_sessions
		SET analysis = $2, updated_at = NOW()
		WHERE id = $1
	`, id, analysis)
	return err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
