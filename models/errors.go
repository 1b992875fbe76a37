package models

import (
	"errors"
	"fmt"
)

// ErrCutoffExceeded rejects submissions and edits arriving at or after the
// daily cutoff time.
var ErrCutoffExceeded = errors.New("orders can only be submitted or edited before the daily cutoff")

type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransportError records one failed outbound message during dispatch. The
// order it belongs to stays unsent and is retried on the next flush.
type TransportError struct {
	Recipient string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send to %s failed: %v", e.Recipient, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
