package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmissionStartsWithEmptyFeedback(t *testing.T) {
	form := SubmissionForm{
		CompanyName:    "Acme",
		JobTitle:       "Backend Engineer",
		JobDescription: "Build services",
	}

	rec := NewSubmission("sub-1", form, "resumes/sub-1/resume.pdf", "resumes/sub-1/preview.png")

	assert.Equal(t, "sub-1", rec.ID)
	assert.Equal(t, "resumes/sub-1/resume.pdf", rec.ResumePath)
	assert.Equal(t, "resumes/sub-1/preview.png", rec.ImagePath)
	assert.Equal(t, "Acme", rec.CompanyName)
	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.Equal(t, "Build services", rec.JobDescription)
	assert.JSONEq(t, `""`, string(rec.Feedback))
	assert.False(t, rec.HasFeedback())
}

func TestWithFeedbackOnlyReplacesFeedback(t *testing.T) {
	form := SubmissionForm{CompanyName: "Acme", JobTitle: "Engineer"}

	first := NewSubmission("sub-2", form, "resumes/sub-2/resume.pdf", "resumes/sub-2/preview.png")
	second := first.WithFeedback(json.RawMessage(`{"overallScore":80}`))

	// Every field except feedback is identical between the two builds.
	second.Feedback = first.Feedback
	assert.Equal(t, first, second)

	final := first.WithFeedback(json.RawMessage(`{"overallScore":80}`))
	assert.True(t, final.HasFeedback())
	assert.JSONEq(t, `{"overallScore":80}`, string(final.Feedback))
	// The original value is untouched.
	assert.JSONEq(t, `""`, string(first.Feedback))
}

func TestSubmissionJSONFieldNames(t *testing.T) {
	rec := NewSubmission("sub-3", SubmissionForm{}, "a.pdf", "a.png")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{"id", "resumePath", "imagePath", "companyName", "jobTitle", "jobDescription", "feedback"} {
		assert.Contains(t, fields, key)
	}
}
