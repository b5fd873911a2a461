package utils

// StatusError is an error carrying the HTTP status it should map to.
type StatusError struct {
	error
	status int
}

// Status returns the status code of the error.
func (se StatusError) Status() int {
	return se.status
}

// NewStatusError creates a new StatusError.
func NewStatusError(err error, s int) error {
	return StatusError{error: err, status: s}
}
