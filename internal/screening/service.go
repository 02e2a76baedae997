package screening

import (
	"context"
	"fmt"

	"github.com/chakri8826/Student-Interview-App/internal/ai"
	"github.com/chakri8826/Student-Interview-App/internal/document"
	"github.com/chakri8826/Student-Interview-App/internal/logger"
	"github.com/chakri8826/Student-Interview-App/internal/metrics"
	"github.com/chakri8826/Student-Interview-App/internal/session"
	"github.com/chakri8826/Student-Interview-App/internal/wallet"
)

const (
	ScreeningCost = 1

	// excerptLimit bounds how much of the CV is sent for analysis.
	excerptLimit = 15000
)

type Result struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Analysis string `json:"analysis"`
}

type Service interface {
	Run(ctx context.Context, userID, cvID int) (*Result, error)
	Get(ctx context.Context, userID, screeningID int) (*session.Session, error)
}

type service struct {
	sessions   session.Repository
	walletRepo wallet.Repository
	cvRepo     document.Repository
	store      document.ObjectStore
	analyzer   ai.Analyzer
}

func NewService(
	sessions session.Repository,
	walletRepo wallet.Repository,
	cvRepo document.Repository,
	store document.ObjectStore,
	analyzer ai.Analyzer,
) Service {
	return &service{
		sessions:   sessions,
		walletRepo: walletRepo,
		cvRepo:     cvRepo,
		store:      store,
		analyzer:   analyzer,
	}
}

// Run executes a billed CV screening. Credits are reserved up front and
// returned if the document cannot be read; an AI failure, by contrast,
// degrades to a message and is still billed, because the attempt on a
// readable document is the deliverable.
func (s *service) Run(ctx context.Context, userID, cvID int) (*Result, error) {
	cv, err := s.cvRepo.FindByIDForUser(ctx, cvID, userID)
	if err != nil {
		// Nothing reserved yet, nothing to reverse.
		return nil, err
	}

	ref := session.NewRef(session.KindScreening)

	res, err := s.walletRepo.Reserve(ctx, userID, ScreeningCost, ref)
	if err != nil {
		metrics.RecordReservation(session.KindScreening, "rejected")
		return nil, err
	}
	metrics.RecordReservation(session.KindScreening, "reserved")

	sess, err := s.sessions.Create(ctx, &session.Session{
		Ref:             ref,
		UserID:          userID,
		Kind:            session.KindScreening,
		SubjectRef:      &cvID,
		CreditsReserved: ScreeningCost,
	})
	if err != nil {
		s.reverse(ctx, res)
		return nil, err
	}

	text, err := s.readDocument(ctx, cv)
	if err != nil {
		s.reverse(ctx, res)
		if _, mErr := s.sessions.MarkReversed(ctx, sess.ID); mErr != nil {
			logger.Error("failed to mark screening reversed",
				"session_id", sess.ID, "error", mErr.Error())
		}
		metrics.RecordSession(session.KindScreening, session.StatusReversed)
		return nil, err
	}

	if len(text) > excerptLimit {
		text = text[:excerptLimit]
	}

	analysis, err := s.analyzer.Analyze(ctx, ai.ScreeningPrompt, text)
	if err != nil {
		// Degraded result, still billed.
		logger.Error("ai analysis failed", "session_id", sess.ID, "error", err.Error())
		analysis = fmt.Sprintf("AI analysis failed: %v", err)
	}

	if _, err := s.sessions.MarkActive(ctx, sess.ID, "", ""); err != nil {
		logger.Error("failed to activate screening", "session_id", sess.ID, "error", err.Error())
	}
	if _, err := s.sessions.Resolve(ctx, sess.ID, session.StatusDone); err != nil {
		logger.Error("failed to complete screening", "session_id", sess.ID, "error", err.Error())
	}
	if err := s.sessions.SetAnalysis(ctx, sess.ID, analysis); err != nil {
		logger.Error("failed to persist analysis", "session_id", sess.ID, "error", err.Error())
	}
	metrics.RecordSession(session.KindScreening, session.StatusDone)

	return &Result{
		ID:       sess.ID,
		Status:   session.StatusDone,
		Analysis: analysis,
	}, nil
}

func (s *service) Get(ctx context.Context, userID, screeningID int) (*session.Session, error) {
	sess, err := s.sessions.FindByIDForUser(ctx, screeningID, userID)
	if err != nil {
		return nil, err
	}
	if sess.Kind != session.KindScreening {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

func (s *service) readDocument(ctx context.Context, cv *document.CV) (string, error) {
	data, err := s.store.FetchBytes(ctx, cv.StorageURL)
	if err != nil {
		return "", fmt.Errorf("read CV file from storage: %w", err)
	}

	text, err := document.ExtractText(cv.Filename, data)
	if err != nil {
		return "", fmt.Errorf("extract CV text: %w", err)
	}
	return text, nil
}

func (s *service) reverse(ctx context.Context, res *wallet.Reservation) {
	if err := s.walletRepo.Reverse(ctx, res); err != nil {
		logger.Error("failed to reverse screening reservation",
			"external_ref", res.ExternalRef, "error", err.Error())
		return
	}
	metrics.RecordReversal()
}
