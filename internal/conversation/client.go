package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chakri8826/Student-Interview-App/internal/config"
	"github.com/chakri8826/Student-Interview-App/internal/logger"
	"github.com/chakri8826/Student-Interview-App/internal/metrics"
)

var (
	ErrExternalService = errors.New("conversation vendor call failed")
	ErrNotConfigured   = errors.New("conversation vendor not configured")
)

const (
	createTimeout  = 30 * time.Second
	messageTimeout = 20 * time.Second
)

// CreateRequest is the minimal payload the vendor always accepts.
type CreateRequest struct {
	ReplicaID string `json:"replica_id"`
	PersonaID string `json:"persona_id"`
}

// Conversation is the successful create response.
type Conversation struct {
	ID      string `json:"id"`
	JoinURL string `json:"join_url"`
}

// vendorError carries the vendor's error body so the classifier can
// inspect it.
type vendorError struct {
	StatusCode int
	Body       string
}

func (e *vendorError) Error() string {
	return fmt.Sprintf("vendor returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	classifier ErrorClassifier
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.TavusBaseURL, "/"),
		apiKey:     cfg.TavusAPIKey,
		httpClient: &http.Client{Timeout: createTimeout},
		classifier: UnknownFieldClassifier{},
	}
}

// WithClassifier swaps the error classifier (tests).
func (c *Client) WithClassifier(cl ErrorClassifier) *Client {
	c.classifier = cl
	return c
}

// CreateConversation creates a vendor session. The instructions field is
// optional on our side but the vendor may reject it as unknown; in that
// case exactly one retry is made with the minimal payload. Any other
// error, or a second failure, surfaces as ErrExternalService. Timeouts
// pass through unwrapped so the caller can tell an ambiguous outcome
// from a definitive failure.
func (c *Client) CreateConversation(ctx context.Context, req CreateRequest, instructions string) (*Conversation, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload := map[string]interface{}{
		"replica_id": req.ReplicaID,
		"persona_id": req.PersonaID,
	}

	if instructions != "" {
		withInstructions := map[string]interface{}{
			"replica_id":   req.ReplicaID,
			"persona_id":   req.PersonaID,
			"instructions": instructions,
		}

		conv, err := c.create(ctx, withInstructions)
		if err == nil {
			metrics.RecordVendorCall("create", "ok")
			return conv, nil
		}

		var ve *vendorError
		if errors.As(err, &ve) && c.classifier.IsUnknownField(ve.Body) {
			logger.Info("vendor rejected optional fields, retrying with minimal payload",
				"status", ve.StatusCode)
			conv, err = c.create(ctx, payload)
			if err == nil {
				metrics.RecordVendorCall("create", "ok_fallback")
				return conv, nil
			}
			metrics.RecordVendorCall("create", "failed")
			return nil, c.wrap(err)
		}

		metrics.RecordVendorCall("create", "failed")
		return nil, c.wrap(err)
	}

	conv, err := c.create(ctx, payload)
	if err != nil {
		metrics.RecordVendorCall("create", "failed")
		return nil, c.wrap(err)
	}
	metrics.RecordVendorCall("create", "ok")
	return conv, nil
}

// wrap translates every definitive vendor failure to ErrExternalService
// but lets timeouts escape as-is.
func (c *Client) wrap(err error) error {
	if IsTimeout(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrExternalService, err)
}

func (c *Client) create(ctx context.Context, payload map[string]interface{}) (*Conversation, error) {
	body, err := c.post(ctx, "/v2/conversations", payload, createTimeout)
	if err != nil {
		return nil, err
	}

	var out struct {
		ID              string `json:"id"`
		ConversationID  string `json:"conversation_id"`
		URL             string `json:"url"`
		ConversationURL string `json:"conversation_url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}

	joinURL := out.ConversationURL
	if joinURL == "" {
		joinURL = out.URL
	}
	id := out.ConversationID
	if id == "" {
		id = out.ID
	}

	// A 2xx without a join URL is a contract violation, treated the
	// same as a failed call for billing purposes.
	if joinURL == "" {
		return nil, fmt.Errorf("create response missing conversation_url")
	}

	return &Conversation{ID: id, JoinURL: joinURL}, nil
}

// SendMessage seeds a message into an existing conversation. Best
// effort: the caller never sees a failure here.
func (c *Client) SendMessage(ctx context.Context, conversationID, role, content string) {
	payload := map[string]interface{}{
		"role":    role,
		"content": content,
	}

	path := fmt.Sprintf("/v2/conversations/%s/messages", conversationID)
	if _, err := c.post(ctx, path, payload, messageTimeout); err != nil {
		metrics.RecordVendorCall("message", "failed")
		logger.Error("failed to seed conversation message",
			"conversation_id", conversationID, "error", err.Error())
		return
	}
	metrics.RecordVendorCall("message", "ok")
}

func (c *Client) post(ctx context.Context, path string, payload map[string]interface{}, timeout time.Duration) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, &vendorError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// IsTimeout reports whether err looks like an expired or cancelled call
// with no confirmed vendor response. Such outcomes are ambiguous: the
// vendor may have started work, so the reservation must not be reversed.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
