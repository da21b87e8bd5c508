// Package audit records successfully validated serial numbers.
// Recording is best-effort by contract: failures are logged and never
// propagated to the listing operation that triggered them.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/repository"
	"github.com/divesh330/timevault/internal/tasks"
)

// Recorder accepts serial audit entries fire-and-forget.
type Recorder interface {
	Record(ctx context.Context, entry models.SerialAudit)
}

// storeRecorder writes entries straight to the store, detached from the
// caller's request lifecycle. Used in demo mode, where there is no queue.
type storeRecorder struct {
	repo repository.SerialAuditRepository
}

// NewStoreRecorder creates a Recorder writing directly to the given repository.
func NewStoreRecorder(repo repository.SerialAuditRepository) Recorder {
	return &storeRecorder{repo: repo}
}

func (r *storeRecorder) Record(ctx context.Context, entry models.SerialAudit) {
	// Detach from the request context so a finished request doesn't
	// cancel the write mid-flight.
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.repo.Insert(writeCtx, &entry); err != nil {
			log.Printf("WARN: failed to record serial audit for listing %s: %v", entry.ListingID, err)
		}
	}()
}

// asynqRecorder hands entries to the background worker via the task queue.
type asynqRecorder struct {
	client *asynq.Client
}

// NewAsynqRecorder creates a Recorder that enqueues audit tasks.
func NewAsynqRecorder(client *asynq.Client) Recorder {
	return &asynqRecorder{client: client}
}

func (r *asynqRecorder) Record(ctx context.Context, entry models.SerialAudit) {
	task, err := tasks.NewSerialAuditTask(entry)
	if err != nil {
		log.Printf("WARN: failed to build serial audit task for listing %s: %v", entry.ListingID, err)
		return
	}
	if _, err := r.client.EnqueueContext(ctx, task); err != nil {
		log.Printf("WARN: failed to enqueue serial audit for listing %s: %v", entry.ListingID, err)
	}
}
