package submit

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is returned when the form fails its own validity check.
	ErrIncomplete = errors.New("submit: form incomplete")
	// ErrInFlight is returned when a submit cycle is already running for the form.
	ErrInFlight = errors.New("submit: submission already in progress")
)

// FileReadError reports that the attachment could not be read or encoded.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("submit: read attachment %q: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// TransportError reports that the request did not complete.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("submit: send request: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseFormatError reports a response body that is not a valid result.
type ResponseFormatError struct {
	Status int
	Err    error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("submit: decode response (status %d): %v", e.Status, e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// BusinessError carries the message of a result the endpoint marked as failed.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return "submit: rejected by endpoint: " + e.Message
}
