package notifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// CompletionLookup resolves the student and course behind an enrollment.
type CompletionLookup interface {
	CompletionDetails(ctx context.Context, enrollmentID uuid.UUID) (*models.CompletionDetails, error)
}

type SendgridNotifier struct {
	key    string
	from   *sgmail.Email
	lookup CompletionLookup
}

func NewSendgridNotifier(key, fromName, fromEmail string, lookup CompletionLookup) *SendgridNotifier {
	return &SendgridNotifier{
		key:    key,
		from:   sgmail.NewEmail(fromName, fromEmail),
		lookup: lookup,
	}
}

func (n *SendgridNotifier) NotifyCompletion(ctx context.Context, enrollmentID uuid.UUID) (string, error) {
	details, err := n.lookup.CompletionDetails(ctx, enrollmentID)
	if err != nil {
		if app_errors.IsKind(err, app_errors.KindNotFound) {
			return fmt.Sprintf("Enrollment with id %s not found", enrollmentID), nil
		}
		return "", err
	}

	subject := fmt.Sprintf("Congratulations! You completed %s", details.CourseTitle)
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Congratulations! You have successfully completed the course %q.\n\n"+
			"We hope you enjoyed the course and learned valuable skills.\n\n"+
			"Best regards,\nCourse Platform Team\n",
		details.StudentName, details.CourseTitle,
	)

	message := sgmail.NewSingleEmail(
		n.from,
		subject,
		sgmail.NewEmail(details.StudentName, details.StudentEmail),
		body,
		"",
	)

	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(message)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Sprintf("Error sending notification: %v", err), nil
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Sprintf("Error sending notification: sendgrid returned status %d", res.StatusCode), nil
	}
	return fmt.Sprintf("Notification sent to %s for course completion", details.StudentEmail), nil
}
