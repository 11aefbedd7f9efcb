package model

import (
	"encoding/json"
	"time"
)

// EmptyFeedback is the sentinel stored in a record until analysis completes.
var EmptyFeedback = json.RawMessage(`""`)

// SubmissionForm carries the optional job-context fields supplied by the
// caller. All of them may be empty.
type SubmissionForm struct {
	CompanyName    string `json:"companyName" validate:"max=200"`
	JobTitle       string `json:"jobTitle" validate:"max=200"`
	JobDescription string `json:"jobDescription" validate:"max=10000"`
}

// Submission is the record persisted for one résumé analysis request.
type Submission struct {
	ID             string          `json:"id"`
	ResumePath     string          `json:"resumePath"`
	ImagePath      string          `json:"imagePath"`
	CompanyName    string          `json:"companyName"`
	JobTitle       string          `json:"jobTitle"`
	JobDescription string          `json:"jobDescription"`
	Feedback       json.RawMessage `json:"feedback"`
}

// NewSubmission builds the record once both storage paths are known.
// Feedback starts as the empty-string sentinel and is replaced after
// analysis; every other field is fixed here.
func NewSubmission(id string, form SubmissionForm, resumePath, imagePath string) Submission {
	return Submission{
		ID:             id,
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		CompanyName:    form.CompanyName,
		JobTitle:       form.JobTitle,
		JobDescription: form.JobDescription,
		Feedback:       EmptyFeedback,
	}
}

// WithFeedback returns a copy of the record with only the feedback replaced.
func (s Submission) WithFeedback(feedback json.RawMessage) Submission {
	s.Feedback = feedback
	return s
}

// HasFeedback reports whether analysis has finished for this record.
func (s Submission) HasFeedback() bool {
	return len(s.Feedback) > 0 && string(s.Feedback) != string(EmptyFeedback)
}

// AnalysisTaskPayload is the queued work item for one submission attempt.
// The résumé bytes ride in the payload so the upload stage runs inside the
// pipeline worker.
type AnalysisTaskPayload struct {
	SubmissionID string         `json:"submissionId"`
	Form         SubmissionForm `json:"form"`
	FileName     string         `json:"fileName"`
	ContentType  string         `json:"contentType"`
	File         []byte         `json:"file"`
}

// SubmissionStartResponse is returned when a submission is accepted.
type SubmissionStartResponse struct {
	SubmissionID string       `json:"submissionId"`
	Phase        ProcessPhase `json:"phase"`
	StatusText   string       `json:"statusText"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SubmissionStatusResponse reports the live process state for one submission.
type SubmissionStatusResponse struct {
	SubmissionID string `json:"submissionId"`
	ProcessState
}

// SubmissionDetail is a stored record plus short-lived download URLs for its
// artifacts.
type SubmissionDetail struct {
	Submission
	ResumeURL string `json:"resumeUrl,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// SubmissionListResponse wraps every stored record.
type SubmissionListResponse struct {
	Submissions []Submission `json:"submissions"`
	Count       int          `json:"count"`
}

// WipeResponse reports how many records a wipe removed.
type WipeResponse struct {
	Deleted int `json:"deleted"`
}
