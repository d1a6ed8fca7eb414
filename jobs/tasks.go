package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReconcileBooks cross-checks the denormalized money and stock
	// figures against the rows they are derived from.
	TaskReconcileBooks = "recon:books"
)

// ReconcileBooksPayload scopes one reconciliation run.
type ReconcileBooksPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewReconcileBooksTask constructs an Asynq task.
func NewReconcileBooksTask(payload ReconcileBooksPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileBooks, data), nil
}

// DecodeReconcileBooksPayload parses a task payload, skipping retries on
// malformed input.
func DecodeReconcileBooksPayload(ctx context.Context, t *asynq.Task) (ReconcileBooksPayload, error) {
	var payload ReconcileBooksPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return ReconcileBooksPayload{}, asynq.SkipRetry
	}
	return payload, nil
}
