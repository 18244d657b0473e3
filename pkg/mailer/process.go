package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mailtpl "github.com/oksasatya/go-books-api/pkg/mailer/templates"
)

// ErrBadJob marks messages that can never be delivered and must not be
// requeued.
var ErrBadJob = errors.New("bad email job")

// Process decodes one queued job, renders its template and sends it.
func Process(ctx context.Context, body []byte, sender Sender) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["Email"]; !ok {
			job.Data["Email"] = job.To
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadJob, err)
		}
		subject, text, html = s, t, h
	}
	if subject == "" {
		return fmt.Errorf("%w: missing subject", ErrBadJob)
	}
	return sender.Send(ctx, job.To, subject, text, html)
}
