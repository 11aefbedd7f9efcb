package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// Mock collaborators used when a real service is not configured, and by
// tests. Each mock answers with canned data unless a func field overrides
// the behavior.

// MockStorageClient implements StorageClient in memory
type MockStorageClient struct {
	UploadFunc func(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, key string) error

	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func NewMockStorageClient() *MockStorageClient {
	return &MockStorageClient{
		objects: make(map[string][]byte),
	}
}

func (m *MockStorageClient) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, body, contentType)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

func (m *MockStorageClient) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	return nil
}

func (m *MockStorageClient) GetSignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.local/" + key, nil
}

// Object returns a stored object and whether it exists.
func (m *MockStorageClient) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// UploadCount reports how many objects are currently stored.
func (m *MockStorageClient) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// DeletedKeys returns the keys removed so far.
func (m *MockStorageClient) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// MockConverter implements DocumentConverter with a tiny canned PNG
type MockConverter struct {
	ConvertFunc func(ctx context.Context, req *ConvertRequest) (*ConvertResult, error)
}

func NewMockConverter() *MockConverter {
	return &MockConverter{}
}

func (m *MockConverter) ConvertToImage(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, req)
	}

	return &ConvertResult{
		File:        []byte{0x89, 'P', 'N', 'G'},
		FileName:    "preview.png",
		ContentType: "image/png",
	}, nil
}

// MockFeedbackClient implements FeedbackClient with canned feedback
type MockFeedbackClient struct {
	AnalyzeFunc func(ctx context.Context, resumePath, instructions string) (*model.FeedbackResponse, error)
}

func NewMockFeedbackClient() *MockFeedbackClient {
	return &MockFeedbackClient{}
}

func (m *MockFeedbackClient) Analyze(ctx context.Context, resumePath, instructions string) (*model.FeedbackResponse, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, resumePath, instructions)
	}

	feedback := map[string]interface{}{
		"overallScore": 75,
		"toneAndStyle": map[string]interface{}{"score": 80, "tips": []string{"Keep bullet points action-oriented"}},
		"content":      map[string]interface{}{"score": 70, "tips": []string{"Quantify achievements where possible"}},
	}
	text, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock feedback: %w", err)
	}

	return &model.FeedbackResponse{
		Message: &model.FeedbackMessage{
			Role: "assistant",
			Content: model.BlockContent(model.TextBlock(string(text))),
		},
	}, nil
}

// NewSlowFeedbackClient returns a mock whose Analyze blocks for delay before
// answering. Used to exercise the analysis deadline.
func NewSlowFeedbackClient(delay time.Duration, resp *model.FeedbackResponse) *MockFeedbackClient {
	return &MockFeedbackClient{
		AnalyzeFunc: func(ctx context.Context, _, _ string) (*model.FeedbackResponse, error) {
			select {
			case <-time.After(delay):
				return resp, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
}
