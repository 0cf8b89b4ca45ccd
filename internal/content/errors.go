package content

import (
	"fmt"
	"strings"
)

const (
	// NoTranscriptMessage is reported when transcription succeeds with no text.
	NoTranscriptMessage = "No transcription text returned from the model."
	// NoTextMessage is reported when a refine succeeds with no text.
	NoTextMessage = "No text returned from the model."
)

// Op names the remote operation that failed.
type Op string

const (
	OpTranscribe Op = "transcribe"
	OpRefine     Op = "refine"
)

// RemoteServiceError is any failure of a remote call: transport errors,
// provider errors, timeouts and empty answers alike. Message is what the
// user sees.
type RemoteServiceError struct {
	Op      Op
	Message string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	return e.Message
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

func remoteError(op Op, message string, err error) *RemoteServiceError {
	if message == "" && err != nil {
		message = err.Error()
	}
	if message == "" {
		message = fmt.Sprintf("Failed to %s.", op)
	}

	return &RemoteServiceError{Op: op, Message: message, Err: err}
}

// ConfigurationError reports credentials that are required by the selected
// providers but were not supplied.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing credentials: " + strings.Join(e.Missing, ", ")
}
