package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"CourseForge/internal/app_errors"
	"CourseForge/pkg/logger"
)

// ConsoleNotifier writes completion messages to the log instead of
// sending email. Used for the local env and in tests; it records what it
// sent so tests can assert on delivery counts.
type ConsoleNotifier struct {
	log    logger.Log
	lookup CompletionLookup

	mu   sync.Mutex
	sent []uuid.UUID
}

func NewConsoleNotifier(log logger.Log, lookup CompletionLookup) *ConsoleNotifier {
	return &ConsoleNotifier{log: log, lookup: lookup}
}

func (n *ConsoleNotifier) NotifyCompletion(ctx context.Context, enrollmentID uuid.UUID) (string, error) {
	details, err := n.lookup.CompletionDetails(ctx, enrollmentID)
	if err != nil {
		if app_errors.IsKind(err, app_errors.KindNotFound) {
			return fmt.Sprintf("Enrollment with id %s not found", enrollmentID), nil
		}
		return "", err
	}

	n.log.Info("completion email",
		"to", details.StudentEmail,
		"subject", fmt.Sprintf("Congratulations! You completed %s", details.CourseTitle),
	)

	n.mu.Lock()
	n.sent = append(n.sent, enrollmentID)
	n.mu.Unlock()

	return fmt.Sprintf("Notification sent to %s for course completion", details.StudentEmail), nil
}

func (n *ConsoleNotifier) Sent() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uuid.UUID, len(n.sent))
	copy(out, n.sent)
	return out
}
