package mfa

import "context"

// SendResult reports the outcome of an out-of-band delivery attempt. A
// provider can fail without a transport error; the engine treats both the
// same way.
type SendResult struct {
	Success       bool
	ProviderError string
}

// Sender delivers verification codes out-of-band (SMS today). Implementations
// live outside this package; the engine performs no retries of its own.
type Sender interface {
	Send(ctx context.Context, destination, message string) (SendResult, error)
}
