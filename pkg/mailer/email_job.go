package mailer

import (
	mailtpl "github.com/oksasatya/go-books-api/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject/Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// WelcomeJob builds the job sent after a successful signup.
func WelcomeJob(to, name, appName string) EmailJob {
	return EmailJob{
		To:       to,
		Template: mailtpl.Welcome,
		Data: mailtpl.ToMap(mailtpl.EmailData{
			Name:    name,
			Email:   to,
			AppName: appName,
		}),
	}
}
