package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/chakri8826/Student-Interview-App/internal/session"
	"github.com/chakri8826/Student-Interview-App/internal/user"
)

func TestSessionLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanTables(t, db, "billable_sessions", "wallet_transactions", "wallets", "users")

	repo := session.NewRepository(db)
	ctx := context.Background()

	userID := createTestUser(t, db, "lifecycle@test.com", "Lifecycle User")

	ref := session.NewRef(session.KindInterview)
	sess, err := repo.Create(ctx, &session.Session{
		Ref:             ref,
		UserID:          userID,
		Kind:            session.KindInterview,
		CreditsReserved: 5,
	})
	require.NoError(t, err)
	require.Equal(t, session.StatusCreated, sess.Status)

	// created -> active
	ok, err := repo.MarkActive(ctx, sess.ID, "c_ext_1", "https://join/c_ext_1")
	require.NoError(t, err)
	require.True(t, ok)

	// created -> reservation_reversed no longer possible
	ok, err = repo.MarkReversed(ctx, sess.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// active -> done
	ok, err = repo.Resolve(ctx, sess.ID, session.StatusDone)
	require.NoError(t, err)
	require.True(t, ok)

	// done is terminal
	ok, err = repo.Resolve(ctx, sess.ID, session.StatusFailed)
	require.NoError(t, err)
	require.False(t, ok)

	found, err := repo.FindByExternalID(ctx, "c_ext_1")
	require.NoError(t, err)
	require.Equal(t, sess.ID, found.ID)
	require.Equal(t, session.StatusDone, found.Status)
}

func TestWebhookFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanTables(t, db, "billable_sessions", "wallet_transactions", "wallets", "users")

	sessionRepo := session.NewRepository(db)
	userRepo := user.NewRepository(db)
	ctx := context.Background()

	userID := createTestUser(t, db, "webhook@test.com", "Webhook User")

	ref := session.NewRef(session.KindInterview)
	sess, err := sessionRepo.Create(ctx, &session.Session{
		Ref:             ref,
		UserID:          userID,
		Kind:            session.KindInterview,
		CreditsReserved: 5,
	})
	require.NoError(t, err)

	_, err = sessionRepo.MarkActive(ctx, sess.ID, "c_hook_1", "https://join/c_hook_1")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := session.NewWebhookHandler(sessionRepo, userRepo, nil)
	router.POST("/interviews/webhook", handler.Handle)

	post := func(payload map[string]string) map[string]bool {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/interviews/webhook", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var ack map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
		return ack
	}

	// Resolve by our ref.
	ack := post(map[string]string{"external_ref": ref, "status": "completed"})
	require.True(t, ack["ok"])

	found, err := sessionRepo.FindByRef(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, session.StatusDone, found.Status)

	// Replayed notification is a harmless no-op.
	ack = post(map[string]string{"external_ref": ref, "status": "completed"})
	require.True(t, ack["ok"])

	// Unknown correlation is acknowledged without effect.
	ack = post(map[string]string{"conversation_id": "c_foreign", "status": "failed"})
	require.True(t, ack["ok"])
}
