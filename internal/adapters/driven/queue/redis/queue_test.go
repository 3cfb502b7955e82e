package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

func setupTestQueue(t *testing.T) (*Queue, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	q, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}

	return q, func() {
		client.Close()
		mr.Close()
	}
}

func ingestTask(name string) *domain.Task {
	return domain.NewIngestTask(domain.RawDocument{
		Name:     name,
		MimeType: "text/plain",
		Data:     []byte("The venue opens at nine."),
	})
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := ingestTask("opening-hours.txt")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task, got nil")
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("expected status processing, got %s", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", got.Attempts)
	}

	doc, err := got.IngestDocument()
	if err != nil {
		t.Fatalf("IngestDocument failed: %v", err)
	}
	if doc.Name != "opening-hours.txt" {
		t.Errorf("expected document name opening-hours.txt, got %s", doc.Name)
	}
	if string(doc.Data) != "The venue opens at nine." {
		t.Errorf("unexpected document data: %q", doc.Data)
	}
}

func TestQueue_Enqueue_NilTask(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	if err := q.Enqueue(context.Background(), nil); err == nil {
		t.Error("expected error for nil task")
	}
}

func TestQueue_Ack(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := ingestTask("menu.txt")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.DequeueWithTimeout(ctx, 1); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	if err := q.Ack(ctx, task.ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	got, err := q.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != domain.TaskStatusCompleted {
		t.Errorf("expected status completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestQueue_Nack_Reschedules(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := ingestTask("faq.txt")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.DequeueWithTimeout(ctx, 1); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	if err := q.Nack(ctx, task.ID, "embedding provider timeout"); err != nil {
		t.Fatalf("Nack failed: %v", err)
	}

	got, err := q.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != domain.TaskStatusPending {
		t.Errorf("expected status pending after nack, got %s", got.Status)
	}
	if got.Error != "embedding provider timeout" {
		t.Errorf("expected error reason to be recorded, got %q", got.Error)
	}

	// Rescheduled task counts as pending in stats
	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Errorf("expected 1 pending task, got %d", stats.PendingCount)
	}
}

func TestQueue_Nack_ExhaustsRetries(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := ingestTask("broken.pdf")
	task.MaxAttempts = 1
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.DequeueWithTimeout(ctx, 1); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	if err := q.Nack(ctx, task.ID, "unreadable document"); err != nil {
		t.Fatalf("Nack failed: %v", err)
	}

	got, err := q.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != domain.TaskStatusFailed {
		t.Errorf("expected status failed, got %s", got.Status)
	}

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.FailedCount != 1 {
		t.Errorf("expected 1 failed task, got %d", stats.FailedCount)
	}
}

func TestQueue_GetTask_Unknown(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	got, err := q.GetTask(context.Background(), "no-such-task")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown task, got %+v", got)
	}
}

func TestQueue_Stats_Empty(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	stats, err := q.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.PendingCount != 0 || stats.ProcessingCount != 0 || stats.FailedCount != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}
