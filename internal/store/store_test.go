package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "resume:abc-123", Key("abc-123"))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := model.NewSubmission("sub-1", model.SubmissionForm{CompanyName: "Acme"}, "resumes/sub-1/resume.pdf", "resumes/sub-1/preview.png")
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSecondSaveOverwritesSameKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := model.NewSubmission("sub-1", model.SubmissionForm{}, "a.pdf", "a.png")
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, first.WithFeedback(json.RawMessage(`{"overallScore":70}`))))

	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"overallScore":70}`, string(got.Feedback))
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, model.NewSubmission("sub-1", model.SubmissionForm{}, "a.pdf", "a.png")))
	require.NoError(t, s.Save(ctx, model.NewSubmission("sub-2", model.SubmissionForm{}, "b.pdf", "b.png")))

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, s.Delete(ctx, "sub-1"))

	records, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sub-2", records[0].ID)
}
