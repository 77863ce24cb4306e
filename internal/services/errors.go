package services

import (
	"errors"
	"fmt"
)

// ErrNoContent signals navigation with nothing active or past an edge. It is
// a benign no-op for the operator UI, not a hard failure.
var ErrNoContent = errors.New("no content active")

// NotFoundError reports a referenced song/slide/queue-item/verse that does
// not exist. Recoverable: the caller should refresh its state and retry.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
