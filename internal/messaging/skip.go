package messaging

import "errors"

type skipError struct {
	err error
}

func (e *skipError) Error() string { return "skip message: " + e.err.Error() }
func (e *skipError) Unwrap() error { return e.err }

// Skip marks a handler error as permanent. The consumer logs it and commits
// the message instead of stopping, so a malformed event cannot block its
// partition.
func Skip(err error) error {
	if err == nil {
		return nil
	}
	return &skipError{err: err}
}

func IsSkip(err error) bool {
	var s *skipError
	return errors.As(err, &s)
}
