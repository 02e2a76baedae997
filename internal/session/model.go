package session

import "time"

const (
	KindInterview = "interview"
	KindScreening = "screening"

	// Status machine. created is the only initial state; done, failed
	// and reservation_reversed are terminal.
	//
	//   created → active                 (external call succeeded)
	//   created → reservation_reversed   (external call failed, credits returned)
	//   active  → done | failed          (reconciliation only)
	StatusCreated  = "created"
	StatusActive   = "active"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusReversed = "reservation_reversed"
)

// Session is one billable unit of externally-fulfilled work. Rows are
// never deleted; they are the only channel between the synchronous
// debit path and the asynchronous reconciliation path.
type Session struct {
	ID                int       `db:"id" json:"id"`
	Ref               string    `db:"ref" json:"ref"`
	UserID            int       `db:"user_id" json:"user_id"`
	Kind              string    `db:"kind" json:"kind"`
	RoleID            *int      `db:"role_id" json:"role_id,omitempty"`
	SubjectRef        *int      `db:"subject_ref" json:"subject_ref,omitempty"`
	CreditsReserved   int       `db:"credits_reserved" json:"credits_reserved"`
	Status            string    `db:"status" json:"status"`
	ExternalSessionID *string   `db:"external_session_id" json:"external_session_id,omitempty"`
	JoinURL           *string   `db:"join_url" json:"join_url,omitempty"`
	Analysis          *string   `db:"analysis" json:"analysis,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Session) Terminal() bool {
	switch s.Status {
	case StatusDone, StatusFailed, StatusReversed:
		return true
	}
	return false
}
