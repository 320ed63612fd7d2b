package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned only while constructing an Engine or LabelSet.
	ErrConfiguration = errors.New("classifier configuration error")
	// ErrRemoteService wraps any failure of the remote completion call.
	ErrRemoteService = errors.New("remote completion failed")

	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingLabel     = errors.New("missing label")
	ErrUnknownLabel     = errors.New("unknown label")
)

// ParseErrorKind classifies why a model response was rejected.
type ParseErrorKind int

const (
	MalformedPayload ParseErrorKind = iota + 1
	MissingLabel
	UnknownLabel
)

func (k ParseErrorKind) String() string {
	switch k {
	case MalformedPayload:
		return "malformed_payload"
	case MissingLabel:
		return "missing_label"
	case UnknownLabel:
		return "unknown_label"
	default:
		return "unknown"
	}
}

func (k ParseErrorKind) sentinel() error {
	switch k {
	case MalformedPayload:
		return ErrMalformedPayload
	case MissingLabel:
		return ErrMissingLabel
	case UnknownLabel:
		return ErrUnknownLabel
	default:
		return nil
	}
}

// ParseError reports a model response that could not be turned into a
// validated classification.
type ParseError struct {
	Kind ParseErrorKind
	// Label is the rejected label for UnknownLabel.
	Label string
	// Allowed lists the configured labels for UnknownLabel.
	Allowed []string
	Err     error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case MalformedPayload:
		return fmt.Sprintf("Failed to parse JSON response: %v", e.Err)
	case MissingLabel:
		return "Response missing 'label' field"
	case UnknownLabel:
		return fmt.Sprintf("Invalid label '%s'. Must be one of: %v", e.Label, e.Allowed)
	default:
		return "Error parsing response"
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *ParseError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
