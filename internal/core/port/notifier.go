package port

import "context"

// TemporaryPasswordNotice carries the one-time delivery of a freshly generated
// temporary credential. The plaintext exists only for the duration of this
// call; implementations must not persist or log it.
type TemporaryPasswordNotice struct {
	Email             string
	DisplayName       string
	TemporaryPassword string
}

// Notifier delivers security notices to account owners. Delivery transport
// (SMTP, queue, ...) is a collaborator concern; the core fires and forgets.
type Notifier interface {
	SendTemporaryPassword(ctx context.Context, notice TemporaryPasswordNotice) error
}
