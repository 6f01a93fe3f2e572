package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email       string
	DisplayName string
}

// ClaimEmailData holds data for the email sent to a post owner when the post is claimed.
type ClaimEmailData struct {
	Email        string
	OwnerName    string
	ClaimantName string
	PostTitle    string
	EventTitle   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendClaimNotice(ctx context.Context, data *ClaimEmailData) error
}
