package role

import (
	"time"

	"github.com/lib/pq"
)

type Role struct {
	ID          int            `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Selection is a user's pick of one role. The (user, role) pair is
// unique; repeated picks are no-ops.
type Selection struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	RoleID    int       `db:"role_id" json:"role_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SelectionWithRole struct {
	ID              int            `db:"id" json:"id"`
	RoleID          int            `db:"role_id" json:"role_id"`
	RoleTitle       string         `db:"role_title" json:"role_title"`
	RoleDescription string         `db:"role_description" json:"role_description"`
	RoleTags        pq.StringArray `db:"role_tags" json:"role_tags"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

type seedRole struct {
	Title       string
	Description string
	Tags        []string
}

var defaultRoles = []seedRole{
	{
		Title:       "Software Engineer",
		Description: "Design, develop, and maintain software systems.",
		Tags:        []string{"software", "engineer", "backend", "frontend"},
	},
	{
		Title:       "Data Analyst",
		Description: "Analyze data to produce insights and dashboards.",
		Tags:        []string{"data", "analyst", "sql", "excel"},
	},
	{
		Title:       "Cybersecurity Specialist",
		Description: "Protect systems and networks from security threats.",
		Tags:        []string{"security", "cyber", "network", "siem"},
	},
	{
		Title:       "Product Manager",
		Description: "Lead product strategy and execution.",
		Tags:        []string{"product", "management", "roadmap"},
	},
	{
		Title:       "Business Analyst",
		Description: "Gather requirements and improve business processes.",
		Tags:        []string{"business", "analyst", "process"},
	},
	{
		Title:       "AI/ML Engineer",
		Description: "Build AI/ML models and deploy them to production.",
		Tags:        []string{"ai", "ml", "python", "mlops"},
	},
}
