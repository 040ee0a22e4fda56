package notifier

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
)

type fakeLookup struct {
	details map[uuid.UUID]*models.CompletionDetails
}

func (f *fakeLookup) CompletionDetails(_ context.Context, enrollmentID uuid.UUID) (*models.CompletionDetails, error) {
	d, ok := f.details[enrollmentID]
	if !ok {
		return nil, app_errors.NotFound("Enrollment not found")
	}
	return d, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
	block chan struct{}
}

func (n *recordingNotifier) NotifyCompletion(_ context.Context, enrollmentID uuid.UUID) (string, error) {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	n.calls = append(n.calls, enrollmentID)
	n.mu.Unlock()
	return fmt.Sprintf("Notification sent to student for enrollment %s", enrollmentID), nil
}

func (n *recordingNotifier) recorded() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uuid.UUID, len(n.calls))
	copy(out, n.calls)
	return out
}

func TestQueueDeliversJobs(t *testing.T) {
	delivered := &recordingNotifier{}
	queue := NewQueue(logger.New("local"), delivered, 8)
	queue.Start()

	first := uuid.New()
	second := uuid.New()
	queue.Enqueue(first)
	queue.Enqueue(second)
	queue.Stop()

	assert.Equal(t, []uuid.UUID{first, second}, delivered.recorded())
}

func TestEnqueueNeverBlocks(t *testing.T) {
	blocked := &recordingNotifier{block: make(chan struct{})}
	queue := NewQueue(logger.New("local"), blocked, 1)
	queue.Start()

	// The worker is stuck on the first job and the buffer holds one more;
	// further enqueues must drop instead of blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			queue.Enqueue(uuid.New())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(blocked.block)
	queue.Stop()
	assert.LessOrEqual(t, len(blocked.recorded()), 2)
}

func TestConsoleNotifierOutcomes(t *testing.T) {
	enrollmentID := uuid.New()
	lookup := &fakeLookup{details: map[uuid.UUID]*models.CompletionDetails{
		enrollmentID: {
			EnrollmentID: enrollmentID,
			StudentEmail: "ada@example.com",
			StudentName:  "Ada Lovelace",
			CourseTitle:  "Go Basics",
		},
	}}
	n := NewConsoleNotifier(logger.New("local"), lookup)

	outcome, err := n.NotifyCompletion(context.Background(), enrollmentID)
	require.NoError(t, err)
	assert.Equal(t, "Notification sent to ada@example.com for course completion", outcome)
	assert.Equal(t, []uuid.UUID{enrollmentID}, n.Sent())

	// A vanished enrollment is an outcome, not an error: delivery is
	// fire-and-forget and never fails the completion that triggered it.
	missing := uuid.New()
	outcome, err = n.NotifyCompletion(context.Background(), missing)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Enrollment with id %s not found", missing), outcome)
	assert.Len(t, n.Sent(), 1)
}
