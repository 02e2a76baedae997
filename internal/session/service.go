package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/chakri8826/Student-Interview-App/internal/config"
	"github.com/chakri8826/Student-Interview-App/internal/conversation"
	"github.com/chakri8826/Student-Interview-App/internal/logger"
	"github.com/chakri8826/Student-Interview-App/internal/metrics"
	"github.com/chakri8826/Student-Interview-App/internal/role"
	"github.com/chakri8826/Student-Interview-App/internal/user"
	"github.com/chakri8826/Student-Interview-App/internal/wallet"

	"github.com/google/uuid"
)

const InterviewCost = 5

// ConversationClient is the capability surface of the external vendor
// used by the orchestrator.
type ConversationClient interface {
	CreateConversation(ctx context.Context, req conversation.CreateRequest, instructions string) (*conversation.Conversation, error)
	SendMessage(ctx context.Context, conversationID, role, content string)
}

// Notifier queues a user-facing notification. Always best effort from
// the orchestrator's point of view.
type Notifier interface {
	Send(ctx context.Context, to, name, subject, body string) error
}

type Service interface {
	StartInterview(ctx context.Context, userID, roleID int, cvID *int) (*Session, error)
	GetInterview(ctx context.Context, userID, sessionID int) (*Session, error)
	ListInterviews(ctx context.Context, userID int) ([]Session, error)
}

type service struct {
	sessions   Repository
	walletRepo wallet.Repository
	roleRepo   role.Repository
	userRepo   user.Repository
	client     ConversationClient
	notifier   Notifier
	cfg        *config.Config
}

func NewService(
	sessions Repository,
	walletRepo wallet.Repository,
	roleRepo role.Repository,
	userRepo user.Repository,
	client ConversationClient,
	notifier Notifier,
	cfg *config.Config,
) Service {
	return &service{
		sessions:   sessions,
		walletRepo: walletRepo,
		roleRepo:   roleRepo,
		userRepo:   userRepo,
		client:     client,
		notifier:   notifier,
		cfg:        cfg,
	}
}

// NewRef builds the correlation reference carried in the ledger and in
// vendor callbacks, e.g. "interview_3f2a9c1d04b7".
func NewRef(kind string) string {
	return fmt.Sprintf("%s_%s", kind, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// StartInterview runs the debit-then-attempt protocol for a live
// interview session. The reservation commits before the vendor call
// starts, so no wallet lock is held across the network; it is reversed
// only on a definitive vendor failure. An ambiguous timeout leaves the
// session in created with the credits held, for reconciliation or an
// operator to resolve.
func (s *service) StartInterview(ctx context.Context, userID, roleID int, cvID *int) (*Session, error) {
	rl, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	// Configuration problems must surface before any reservation so a
	// misconfigured deploy never debits anyone.
	profile := s.resolveProfile(rl.Title)
	if s.cfg.TavusAPIKey == "" || !profile.Complete() {
		return nil, conversation.ErrNotConfigured
	}

	ref := NewRef(KindInterview)

	res, err := s.walletRepo.Reserve(ctx, userID, InterviewCost, ref)
	if err != nil {
		metrics.RecordReservation(KindInterview, "rejected")
		return nil, err
	}
	metrics.RecordReservation(KindInterview, "reserved")

	sess, err := s.sessions.Create(ctx, &Session{
		Ref:             ref,
		UserID:          userID,
		Kind:            KindInterview,
		RoleID:          &roleID,
		SubjectRef:      cvID,
		CreditsReserved: InterviewCost,
	})
	if err != nil {
		s.reverse(ctx, res)
		return nil, err
	}

	titles, err := s.roleRepo.ListSelectedTitles(ctx, userID)
	if err != nil {
		logger.Error("failed to load role selections for instructions",
			"user_id", userID, "error", err.Error())
		titles = nil
	}
	instructions := buildInstructions(titles)

	conv, err := s.client.CreateConversation(ctx, conversation.CreateRequest{
		ReplicaID: profile.ReplicaID,
		PersonaID: profile.PersonaID,
	}, instructions)
	if err != nil {
		if conversation.IsTimeout(err) {
			// Outcome unknown: the vendor may have started the session.
			// Refunding here could hand out free work, so the credits
			// stay held and the session stays in created.
			logger.Error("vendor call timed out, leaving session pending",
				"session_id", sess.ID, "ref", ref)
			metrics.RecordSession(KindInterview, StatusCreated)
			return sess, nil
		}

		s.reverse(ctx, res)
		if _, mErr := s.sessions.MarkReversed(ctx, sess.ID); mErr != nil {
			logger.Error("failed to mark session reversed",
				"session_id", sess.ID, "error", mErr.Error())
		}
		metrics.RecordSession(KindInterview, StatusReversed)
		return nil, err
	}

	activated, err := s.sessions.MarkActive(ctx, sess.ID, conv.ID, conv.JoinURL)
	if err != nil || !activated {
		// The vendor session exists and was paid for; never reverse
		// here. The row stays in created for reconciliation.
		logger.Error("failed to activate session after vendor success",
			"session_id", sess.ID, "external_id", conv.ID)
	} else {
		sess.Status = StatusActive
	}
	sess.ExternalSessionID = &conv.ID
	sess.JoinURL = &conv.JoinURL
	metrics.RecordSession(KindInterview, sess.Status)

	if conv.ID != "" && len(titles) > 0 {
		s.client.SendMessage(ctx, conv.ID, "user", seedMessage(titles))
	}

	s.notifyStarted(ctx, userID)

	return sess, nil
}

func (s *service) GetInterview(ctx context.Context, userID, sessionID int) (*Session, error) {
	return s.sessions.FindByIDForUser(ctx, sessionID, userID)
}

func (s *service) ListInterviews(ctx context.Context, userID int) ([]Session, error) {
	return s.sessions.ListByUser(ctx, userID, KindInterview)
}

func (s *service) reverse(ctx context.Context, res *wallet.Reservation) {
	if err := s.walletRepo.Reverse(ctx, res); err != nil {
		logger.Error("failed to reverse reservation",
			"external_ref", res.ExternalRef, "error", err.Error())
		return
	}
	metrics.RecordReversal()
}

// resolveProfile picks the interviewer flavour by role title keywords,
// falling back to the default profile.
func (s *service) resolveProfile(roleTitle string) config.ReplicaProfile {
	title := strings.ToLower(roleTitle)

	pick := func(p config.ReplicaProfile) config.ReplicaProfile {
		if p.Complete() {
			return p
		}
		return s.cfg.ProfileDefault
	}

	switch {
	case strings.Contains(title, "software") || strings.Contains(title, "engineer"):
		return pick(s.cfg.ProfileSoftware)
	case strings.Contains(title, "data") || strings.Contains(title, "analyst"):
		return pick(s.cfg.ProfileData)
	case strings.Contains(title, "security") || strings.Contains(title, "cyber"):
		return pick(s.cfg.ProfileSecurity)
	}
	return s.cfg.ProfileDefault
}

func buildInstructions(titles []string) string {
	if len(titles) == 0 {
		return ""
	}
	return fmt.Sprintf(
		"The candidate has selected the following roles for interview practice: %s. "+
			"Ask questions tailored to these roles, prioritizing the selected CV context if provided.",
		strings.Join(titles, ", "),
	)
}

func seedMessage(titles []string) string {
	return "I want to practice interviews for these roles: " + strings.Join(titles, ", ") +
		". Please conduct a structured interview with increasingly challenging, domain-specific questions. " +
		"Ask one question at a time and wait for my response. Start now."
}

func (s *service) notifyStarted(ctx context.Context, userID int) {
	if s.notifier == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return
	}
	_ = s.notifier.Send(ctx, u.Email, u.Name,
		"Your interview session is ready",
		"Your live interview practice session has started. Join it from your dashboard.")
}
