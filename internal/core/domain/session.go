package domain

// Session is the immutable per-request view of an authenticated caller.
// It is produced at login, handed back to the caller as an opaque signed
// token, and reconstructed by the transport layer on every request.
type Session struct {
	Email               string
	DisplayName         string
	IsAdmin             bool
	ResetPasswordNeeded bool
}
