package port

import "context"

// EmailSender defines the contract for sending account notification emails.
type EmailSender interface {
	SendAccountConnected(ctx context.Context, toEmail, toName, providerName string) error
	SendAccountDisconnected(ctx context.Context, toEmail, toName, providerName string) error
}
