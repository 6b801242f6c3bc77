// api/errors/webhook_errors.go
package errors

import "errors"

var (
	ErrMissingSignatureHeaders = errors.New("missing webhook signature headers")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrStaleTimestamp          = errors.New("webhook timestamp outside tolerance")
	ErrMalformedTimestamp      = errors.New("malformed webhook timestamp")
	ErrUnknownEventType        = errors.New("unknown webhook event type")
	ErrInvalidActivityData     = errors.New("invalid activity log data")
)
