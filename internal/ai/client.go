package ai

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
)

var ErrNotConfigured = errors.New("ai backend not configured")

const analyzeTimeout = 120 * time.Second

// ScreeningPrompt asks the model for a structured CV assessment.
const ScreeningPrompt = "You are an expert CV screener. Given the resume text below, " +
	"identify the most relevant job roles (3-5), summarize key skills, " +
	"and suggest improvements. Return a JSON with these fields: " +
	"roles (array of strings), skills (array of strings), summary (string), " +
	"and improvements (array of strings)."

// Analyzer is the capability boundary to the AI analysis collaborator.
type Analyzer interface {
	Analyze(ctx context.Context, systemPrompt, excerpt string) (string, error)
}

// Client speaks an OpenAI-style chat-completions HTTP API.
type Client struct {
	endpoint   string
	token      string
	model      string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:   cfg.AIEndpoint,
		token:      cfg.AIToken,
		model:      cfg.AIModel,
		httpClient: &http.Client{Timeout: analyzeTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) Analyze(ctx context.Context, systemPrompt, excerpt string) (string, error) {
	if c.token == "" {
		return "", ErrNotConfigured
	}

	payload := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: excerpt},
		},
		"temperature": 1,
		"top_p":       1,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ai backend returned %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("ai response has no choices")
	}

	return out.Choices[0].Message.Content, nil
}

// completionsURL accepts either a base endpoint or a full
// chat/completions URL in config.
func (c *Client) completionsURL() string {
	endpoint := strings.TrimRight(c.endpoint, "/")
	if strings.HasSuffix(endpoint, "chat/completions") {
		return endpoint
	}
	return endpoint + "/chat/completions"
}
