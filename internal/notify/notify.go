package notify

import "context"

// Notifier delivers a signup confirmation code to the user.
type Notifier interface {
	SendConfirmationCode(ctx context.Context, toEmail, username, code string) error
}
