package role

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]Role, error)
	GetByID(ctx context.Context, id int) (*Role, error)
	SeedDefaults(ctx context.Context) error

	// AddSelections inserts the missing (user, role) pairs and reports
	// which ids were added and which were already selected.
	AddSelections(ctx context.Context, userID int, roleIDs []int) (added, skipped []int, err error)
	ReplaceSelections(ctx context.Context, userID int, roleIDs []int) error
	ListSelections(ctx context.Context, userID int) ([]SelectionWithRole, error)
	ListSelectedTitles(ctx context.Context, userID int) ([]string, error)
	CountActiveByIDs(ctx context.Context, ids []int) (int, error)
}
