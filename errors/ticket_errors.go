// api/errors/ticket_errors.go
package errors

import "errors"

var (
	ErrTicketNotFound     = errors.New("support ticket not found")
	ErrInvalidTicketData  = errors.New("invalid support ticket data")
	ErrInvalidMessageData = errors.New("invalid ticket message data")
)
