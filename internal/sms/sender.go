package sms

import "context"

// Sender delivers a short text message to a phone number. Implementations are
// external collaborators; callers treat delivery failure as non-fatal.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}
