package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chakri8826/Student-Interview-App/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		TavusBaseURL: baseURL,
		TavusAPIKey:  "test-key",
	})
}

func TestCreateConversation_Success(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/conversations", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]string{
			"conversation_id":  "c_123",
			"conversation_url": "https://example.com/join/c_123",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	conv, err := client.CreateConversation(context.Background(), CreateRequest{
		ReplicaID: "r1",
		PersonaID: "p1",
	}, "act as an interviewer")
	require.NoError(t, err)
	assert.Equal(t, "c_123", conv.ID)
	assert.Equal(t, "https://example.com/join/c_123", conv.JoinURL)
	assert.Equal(t, "act as an interviewer", gotPayload["instructions"])
}

func TestCreateConversation_UnknownFieldRetriesOnce(t *testing.T) {
	var payloads []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		payloads = append(payloads, p)

		if _, ok := p["instructions"]; ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"unknown field: instructions"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"conversation_id":  "c_456",
			"conversation_url": "https://example.com/join/c_456",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	conv, err := client.CreateConversation(context.Background(), CreateRequest{
		ReplicaID: "r1",
		PersonaID: "p1",
	}, "instructions text")
	require.NoError(t, err)
	assert.Equal(t, "c_456", conv.ID)

	require.Len(t, payloads, 2)
	assert.Contains(t, payloads[0], "instructions")
	assert.NotContains(t, payloads[1], "instructions")
}

func TestCreateConversation_NoRetryOnOtherErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.CreateConversation(context.Background(), CreateRequest{
		ReplicaID: "r1",
		PersonaID: "p1",
	}, "instructions text")
	require.ErrorIs(t, err, ErrExternalService)
	assert.Equal(t, 1, calls)
}

func TestCreateConversation_SecondFailureSurfaces(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unknown field: instructions"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.CreateConversation(context.Background(), CreateRequest{
		ReplicaID: "r1",
		PersonaID: "p1",
	}, "instructions text")
	require.ErrorIs(t, err, ErrExternalService)
	assert.Equal(t, 2, calls)
}

func TestCreateConversation_MalformedSuccessIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"conversation_id": "c_789"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.CreateConversation(context.Background(), CreateRequest{ReplicaID: "r1", PersonaID: "p1"}, "")
	require.ErrorIs(t, err, ErrExternalService)
}

func TestCreateConversation_MissingAPIKey(t *testing.T) {
	client := NewClient(&config.Config{TavusBaseURL: "https://example.com"})

	_, err := client.CreateConversation(context.Background(), CreateRequest{ReplicaID: "r1", PersonaID: "p1"}, "")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateConversation_CancelledContextPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateConversation(ctx, CreateRequest{ReplicaID: "r1", PersonaID: "p1"}, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExternalService)
	assert.True(t, IsTimeout(err))
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("boom")))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(context.Canceled))
}
