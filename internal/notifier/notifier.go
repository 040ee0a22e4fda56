package notifier

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"CourseForge/pkg/logger"
)

// Notifier delivers a course-completion message for an enrollment and
// reports the delivery outcome as a string. Outcomes are logged, never
// surfaced to the request that triggered them.
type Notifier interface {
	NotifyCompletion(ctx context.Context, enrollmentID uuid.UUID) (string, error)
}

// Queue is the outbound channel between the enrollment engine and the
// notifier. Enqueue never blocks the request path: when the buffer is
// full the job is dropped and logged.
type Queue struct {
	log      logger.Log
	notifier Notifier
	jobs     chan uuid.UUID
	wg       sync.WaitGroup
}

func NewQueue(log logger.Log, n Notifier, size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		log:      log,
		notifier: n,
		jobs:     make(chan uuid.UUID, size),
	}
}

func (q *Queue) Enqueue(enrollmentID uuid.UUID) {
	select {
	case q.jobs <- enrollmentID:
	default:
		q.log.Warn("notification queue full, dropping job", "enrollment_id", enrollmentID)
	}
}

// Start launches the worker consuming completion jobs until Stop is called.
func (q *Queue) Start() {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for enrollmentID := range q.jobs {
			outcome, err := q.notifier.NotifyCompletion(context.Background(), enrollmentID)
			if err != nil {
				q.log.ErrorErr("completion notification failed", err, "enrollment_id", enrollmentID)
				continue
			}
			q.log.Info(outcome, "enrollment_id", enrollmentID)
		}
	}()
}

// Stop drains the queue and waits for in-flight deliveries.
func (q *Queue) Stop() {
	close(q.jobs)
	q.wg.Wait()
}
