package service

import "errors"

// InvalidStateError marks an action attempted from a status that does not
// allow it. Handlers surface the message to the caller with 409; the record
// is left untouched.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func invalidState(message string) error {
	return &InvalidStateError{Message: message}
}

// IsInvalidState reports whether err is a state violation.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}

var (
	ErrForbidden        = errors.New("not allowed to act on this transfer")
	ErrTransferNotFound = errors.New("transfer not found")
	ErrQueryNotFound    = errors.New("query not found")
)
