// Package store persists submission records in the key-value store.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("submission not found")

// keyPattern matches every submission key when scanning the store.
const keyPattern = "resume:*"

// Key derives the store key for a submission id. Every read and write of a
// record goes through this one format.
func Key(id string) string {
	return fmt.Sprintf("resume:%s", id)
}

// RecordStore is the persistence surface the submission pipeline writes to.
type RecordStore interface {
	Save(ctx context.Context, rec model.Submission) error
	Get(ctx context.Context, id string) (model.Submission, error)
	List(ctx context.Context) ([]model.Submission, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
