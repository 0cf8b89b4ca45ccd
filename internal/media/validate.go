package media

import (
	"errors"
	"strings"
)

// ValidationMessage is shown to the user when a file is rejected.
const ValidationMessage = "Please upload a valid audio or video file."

// ValidationError reports a file that is not audio or video.
type ValidationError struct {
	Name     string
	MIMEType string
}

func (e *ValidationError) Error() string {
	return ValidationMessage
}

// ErrNoFile is returned when validation is asked about a nil file.
var ErrNoFile = errors.New("no file selected")

// Accepts reports whether a declared media type is audio or video.
func Accepts(mimeType string) bool {
	for _, prefix := range acceptedPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}

	return false
}

// Validate checks the declared type of f.
func Validate(f *File) error {
	if f == nil {
		return ErrNoFile
	}

	if !Accepts(f.MIMEType) {
		return &ValidationError{Name: f.Name, MIMEType: f.MIMEType}
	}

	return nil
}
