package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/config"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// FeedbackClient defines the interface for the AI feedback service
type FeedbackClient interface {
	Analyze(ctx context.Context, resumePath, instructions string) (*model.FeedbackResponse, error)
}

// AIClient implements FeedbackClient for the AI feedback microservice. The
// service reads the résumé by its storage path and answers with a single
// assistant message. No timeout is set on the HTTP client; the caller is
// expected to bound the call itself.
type AIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// FeedbackRequest is the body sent to the feedback endpoint
type FeedbackRequest struct {
	Path         string `json:"path"`
	Instructions string `json:"instructions"`
	Model        string `json:"model,omitempty"`
}

// NewAIClient creates a new AI feedback service client
func NewAIClient(cfg *config.AIConfig) *AIClient {
	return &AIClient{
		httpClient: &http.Client{},
		baseURL:    cfg.ServiceURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

// Analyze asks the AI service for feedback on a stored résumé
func (c *AIClient) Analyze(ctx context.Context, resumePath, instructions string) (*model.FeedbackResponse, error) {
	reqBody := FeedbackRequest{
		Path:         resumePath,
		Instructions: instructions,
		Model:        c.model,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/feedback", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	// A literal null body decodes into a response with no message; the
	// pipeline treats that as a failed analysis.
	var result model.FeedbackResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *AIClient) IsConfigured() bool {
	return c.apiKey != ""
}
