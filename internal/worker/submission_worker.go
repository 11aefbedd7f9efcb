package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/client"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/service"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/websocket"
	"github.com/shubhamsonni/AI-Resume-Analyzer/pkg/deadline"
	"github.com/shubhamsonni/AI-Resume-Analyzer/pkg/response"
)

// Pipeline failure kinds. Each stage wraps its cause with the sentinel for
// its kind; the outer boundary in ProcessTask turns the sentinel's text
// into the terminal error state. All of them end the attempt; nothing is
// retried and nothing already done is undone.
var (
	ErrUploadResumeFailed   = errors.New("Failed to upload resume")
	ErrConversionFailed     = errors.New("Failed to convert PDF to image")
	ErrUploadImageFailed    = errors.New("Failed to upload image")
	ErrSaveSubmissionFailed = errors.New("Failed to save submission")
	ErrAnalysisTimeout      = errors.New("Analysis timed out")
	ErrAnalysisFailed       = errors.New("Failed to analyze resume")
	ErrFeedbackDecodeFailed = errors.New("Failed to decode feedback")
)

// sentinels in the order the pipeline can raise them
var sentinels = []error{
	ErrUploadResumeFailed,
	ErrConversionFailed,
	ErrUploadImageFailed,
	ErrSaveSubmissionFailed,
	ErrAnalysisTimeout,
	ErrAnalysisFailed,
	ErrFeedbackDecodeFailed,
}

// SubmissionWorker runs the five-stage analysis pipeline for one queued
// submission: upload the résumé, convert it to a preview image, upload the
// image, persist the record, then race the AI feedback call against the
// analysis budget and finalize the record with the parsed feedback.
type SubmissionWorker struct {
	service   *service.SubmissionService
	storage   client.StorageClient
	converter client.DocumentConverter
	feedback  client.FeedbackClient
	hub       *websocket.Hub
	budget    time.Duration
}

func NewSubmissionWorker(
	svc *service.SubmissionService,
	storage client.StorageClient,
	converter client.DocumentConverter,
	feedback client.FeedbackClient,
	hub *websocket.Hub,
	budget time.Duration,
) *SubmissionWorker {
	return &SubmissionWorker{
		service:   svc,
		storage:   storage,
		converter: converter,
		feedback:  feedback,
		hub:       hub,
		budget:    budget,
	}
}

// ProcessTask handles one submission:analyze task. It is the single outer
// boundary for every pipeline failure: whatever a stage raises is collapsed
// here into the attempt's terminal error state.
func (w *SubmissionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.AnalysisTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	id := payload.SubmissionID
	log.Printf("Starting analysis for submission %s", id)

	if err := w.run(ctx, &payload); err != nil {
		msg := failureMessage(err)
		w.service.FailSubmission(id, msg)
		w.hub.BroadcastError(id, response.CodeAnalysisFailed, msg)
		log.Printf("Submission %s failed: %v", id, err)
		return err
	}

	redirect := w.service.CompleteSubmission(id)
	w.hub.BroadcastComplete(id, redirect)
	log.Printf("Submission %s completed", id)
	return nil
}

// run drives the five stages in strict order; the first failure aborts the
// rest. Artifacts and writes from completed stages are left in place.
func (w *SubmissionWorker) run(ctx context.Context, payload *model.AnalysisTaskPayload) error {
	id := payload.SubmissionID

	// Stage 1: upload the résumé
	resumeKey := fmt.Sprintf("resumes/%s/%s", id, payload.FileName)
	resumePath, err := w.storage.Upload(ctx, resumeKey, bytes.NewReader(payload.File), payload.ContentType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadResumeFailed, err)
	}
	if resumePath == "" {
		return ErrUploadResumeFailed
	}
	w.advance(id, model.StatusConvertingPDF)

	// Stage 2: convert PDF to preview image
	converted, err := w.converter.ConvertToImage(ctx, &client.ConvertRequest{
		FileName:    payload.FileName,
		ContentType: payload.ContentType,
		Format:      "png",
		File:        payload.File,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if converted == nil || converted.File == nil {
		return ErrConversionFailed
	}
	w.advance(id, model.StatusUploadingImage)

	// Stage 3: upload the preview image
	imageKey := fmt.Sprintf("resumes/%s/preview.png", id)
	imagePath, err := w.storage.Upload(ctx, imageKey, bytes.NewReader(converted.File), "image/png")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadImageFailed, err)
	}
	if imagePath == "" {
		return ErrUploadImageFailed
	}
	w.advance(id, model.StatusSavingData)

	// Stage 4: first write, feedback still the empty sentinel
	record := model.NewSubmission(id, payload.Form, resumePath, imagePath)
	if err := w.service.SaveSubmission(ctx, record); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveSubmissionFailed, err)
	}
	w.advance(id, model.StatusAnalyzing)

	// Stage 5: the feedback call races the analysis budget. If the timer
	// wins, the call is abandoned, not cancelled: its eventual settlement
	// has no further effect on this attempt.
	instructions := analysisInstructions(payload.Form)
	resp, err := deadline.Race(ctx, w.budget, func(ctx context.Context) (*model.FeedbackResponse, error) {
		return w.feedback.Analyze(ctx, resumePath, instructions)
	})
	if err != nil {
		if errors.Is(err, deadline.ErrTimeout) {
			return fmt.Errorf("%w after %s", ErrAnalysisTimeout, w.budget)
		}
		return fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if resp == nil || resp.Message == nil {
		return ErrAnalysisFailed
	}

	feedbackText := resp.Message.Content.FeedbackText()
	if !json.Valid([]byte(feedbackText)) {
		return fmt.Errorf("%w: %q", ErrFeedbackDecodeFailed, feedbackText)
	}

	// Second write: same id, same key, only feedback differs.
	if err := w.service.SaveSubmission(ctx, record.WithFeedback(json.RawMessage(feedbackText))); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveSubmissionFailed, err)
	}
	w.advance(id, model.StatusComplete)

	return nil
}

func (w *SubmissionWorker) advance(id, label string) {
	w.service.UpdateStatus(id, label)
	w.hub.BroadcastStatus(id, model.ProcessState{Phase: model.PhaseRunning, StatusText: label})
}

// failureMessage maps a pipeline error to the text shown to the caller:
// the sentinel's own message for known kinds, the error text otherwise.
func failureMessage(err error) string {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// analysisInstructions tells the feedback service what to review. The job
// context is included verbatim; empty fields are simply omitted.
func analysisInstructions(form model.SubmissionForm) string {
	instructions := "Review this resume and respond with structured feedback as JSON."
	if form.JobTitle != "" {
		instructions += fmt.Sprintf(" The candidate is applying for the role of %s.", form.JobTitle)
	}
	if form.CompanyName != "" {
		instructions += fmt.Sprintf(" The company is %s.", form.CompanyName)
	}
	if form.JobDescription != "" {
		instructions += fmt.Sprintf(" Job description: %s", form.JobDescription)
	}
	return instructions
}
