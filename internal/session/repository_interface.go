package session

import "context"

type Repository interface {
	Create(ctx context.Context, s *Session) (*Session, error)
	FindByID(ctx context.Context, id int) (*Session, error)
	FindByIDForUser(ctx context.Context, id, userID int) (*Session, error)
	FindByRef(ctx context.Context, ref string) (*Session, error)
	FindByExternalID(ctx context.Context, externalID string) (*Session, error)
	ListByUser(ctx context.Context, userID int, kind string) ([]Session, error)

	// MarkActive applies created → active and records the vendor ids.
	// Returns false when the session was not in created.
	MarkActive(ctx context.Context, id int, externalSessionID, joinURL string) (bool, error)

	// MarkReversed applies created → reservation_reversed.
	MarkReversed(ctx context.Context, id int) (bool, error)

	// Resolve applies active → done|failed. Returns false when the
	// session was not in active, which callers treat as an idempotent
	// no-op.
	Resolve(ctx context.Context, id int, terminal string) (bool, error)

	SetAnalysis(ctx context.Context, id int, analysis string) error
}
