package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the invitation email. Styling and copy
// come from the resolved EmailTemplate; RSVPLink embeds the token secret.
type InvitationEmailData struct {
	Email        string
	GuestName    string
	EventTitle   string
	EventDate    string
	Location     string
	HostName     string
	RSVPLink     string
	Subject      string
	Heading      string
	Message      string
	ButtonLabel  string
	PrimaryColor string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
