package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/client"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/state"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/store"
)

// TaskTypeAnalyze identifies the pipeline task on the queue
const TaskTypeAnalyze = "submission:analyze"

// ErrSubmissionNotFound is returned when no record exists for an id
var ErrSubmissionNotFound = store.ErrNotFound

// signedURLExpiry bounds how long artifact download links stay valid
const signedURLExpiry = 15 * time.Minute

// TaskEnqueuer is the queue surface the service needs; *asynq.Client
// satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SubmissionService owns submission records and their process state. The
// HTTP handlers call it to start, inspect and reset submissions; the
// pipeline worker calls it to persist records and advance state.
type SubmissionService struct {
	records  store.RecordStore
	enqueuer TaskEnqueuer
	tracker  *state.Tracker
	storage  client.StorageClient
}

func NewSubmissionService(records store.RecordStore, enqueuer TaskEnqueuer, tracker *state.Tracker, storage client.StorageClient) *SubmissionService {
	return &SubmissionService{
		records:  records,
		enqueuer: enqueuer,
		tracker:  tracker,
		storage:  storage,
	}
}

// StartSubmission assigns the submission its identifier, marks the attempt
// running and queues the pipeline task. The id is generated exactly once
// here; everything downstream reuses it.
func (s *SubmissionService) StartSubmission(ctx context.Context, form model.SubmissionForm, fileName, contentType string, file []byte) (*model.SubmissionStartResponse, error) {
	id := uuid.New().String()

	payload := model.AnalysisTaskPayload{
		SubmissionID: id,
		Form:         form,
		FileName:     fileName,
		ContentType:  contentType,
		File:         file,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	s.tracker.Begin(id, model.StatusUploadingResume)

	// Nothing is retried: a failed attempt stays failed until the caller
	// resubmits by hand.
	_, err = s.enqueuer.Enqueue(asynq.NewTask(TaskTypeAnalyze, data),
		asynq.Queue("analysis"),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		s.tracker.Fail(id, "Failed to queue submission")
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.SubmissionStartResponse{
		SubmissionID: id,
		Phase:        model.PhaseRunning,
		StatusText:   model.StatusUploadingResume,
		CreatedAt:    time.Now(),
	}, nil
}

// SaveSubmission persists a record under its deterministic key. The
// pipeline calls it twice on the success path: once when both storage paths
// are known and once more after feedback is parsed.
func (s *SubmissionService) SaveSubmission(ctx context.Context, rec model.Submission) error {
	return s.records.Save(ctx, rec)
}

// GetSubmission returns a stored record
func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (model.Submission, error) {
	return s.records.Get(ctx, id)
}

// GetSubmissionDetail returns a record together with short-lived download
// URLs for its artifacts. Missing URLs are not an error; the record itself
// is the source of truth.
func (s *SubmissionService) GetSubmissionDetail(ctx context.Context, id string) (*model.SubmissionDetail, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.SubmissionDetail{Submission: rec}

	if s.storage != nil {
		if rec.ResumePath != "" {
			if url, err := s.storage.GetSignedURL(ctx, rec.ResumePath, signedURLExpiry); err == nil {
				detail.ResumeURL = url
			} else {
				log.Printf("Warning: failed to sign resume URL for %s: %v", id, err)
			}
		}
		if rec.ImagePath != "" {
			if url, err := s.storage.GetSignedURL(ctx, rec.ImagePath, signedURLExpiry); err == nil {
				detail.ImageURL = url
			} else {
				log.Printf("Warning: failed to sign image URL for %s: %v", id, err)
			}
		}
	}

	return detail, nil
}

// ListSubmissions returns every stored record
func (s *SubmissionService) ListSubmissions(ctx context.Context) (*model.SubmissionListResponse, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return &model.SubmissionListResponse{
		Submissions: records,
		Count:       len(records),
	}, nil
}

// Status reports the live process state for one submission. Unknown ids
// read as idle.
func (s *SubmissionService) Status(id string) model.SubmissionStatusResponse {
	return model.SubmissionStatusResponse{
		SubmissionID: id,
		ProcessState: s.tracker.Get(id),
	}
}

// ResetStatus is the manual "try again" action after an error: the attempt
// reads as idle again. Artifacts and any record already written stay where
// they are.
func (s *SubmissionService) ResetStatus(id string) {
	s.tracker.Reset(id)
}

// Wipe deletes every record and its storage artifacts, then clears all
// tracked state. Artifact deletions fan out concurrently.
func (s *SubmissionService) Wipe(ctx context.Context) (*model.WipeResponse, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	if s.storage != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(8)
		for _, rec := range records {
			for _, key := range []string{rec.ResumePath, rec.ImagePath} {
				if key == "" {
					continue
				}
				key := key
				g.Go(func() error {
					if err := s.storage.Delete(gctx, key); err != nil {
						log.Printf("Warning: failed to delete artifact %s: %v", key, err)
					}
					return nil
				})
			}
		}
		_ = g.Wait()
	}

	for _, rec := range records {
		if err := s.records.Delete(ctx, rec.ID); err != nil {
			return nil, fmt.Errorf("failed to delete submission %s: %w", rec.ID, err)
		}
	}

	s.tracker.Clear()

	return &model.WipeResponse{Deleted: len(records)}, nil
}

// Pipeline-side state transitions. The worker is the only caller; one
// attempt has exactly one writer.

// UpdateStatus advances the running attempt to its next stage label
func (s *SubmissionService) UpdateStatus(id, label string) {
	s.tracker.Advance(id, label)
}

// FailSubmission records the terminal error for the attempt
func (s *SubmissionService) FailSubmission(id, message string) {
	s.tracker.Fail(id, message)
}

// CompleteSubmission records terminal success and the navigation target
func (s *SubmissionService) CompleteSubmission(id string) string {
	redirect := fmt.Sprintf("/resume/%s", id)
	s.tracker.Complete(id, model.StatusComplete, redirect)
	return redirect
}
