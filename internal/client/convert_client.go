package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/config"
)

// DocumentConverter defines the interface for document conversion operations
type DocumentConverter interface {
	ConvertToImage(ctx context.Context, req *ConvertRequest) (*ConvertResult, error)
}

// ConvertClient implements DocumentConverter for the conversion microservice
type ConvertClient struct {
	httpClient *http.Client
	baseURL    string
}

// ConvertRequest carries the document to convert
type ConvertRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Format      string `json:"format"`
	File        []byte `json:"file"`
}

// ConvertResult is the converted artifact; a nil File signals that the
// service produced nothing usable
type ConvertResult struct {
	File        []byte `json:"file"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// NewConvertClient creates a new conversion service client
func NewConvertClient(cfg *config.ConvertConfig) *ConvertClient {
	return &ConvertClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// ConvertToImage renders the first page of a document as an image
func (c *ConvertClient) ConvertToImage(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("conversion service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result ConvertResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *ConvertClient) IsConfigured() bool {
	return c.baseURL != ""
}
