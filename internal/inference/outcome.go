package inference

import "fmt"

// Kind tags the result of one remote generation attempt.
type Kind string

const (
	Success           Kind = "success"
	TransportFailure  Kind = "transport_failure"  // network error or timeout
	MalformedResponse Kind = "malformed_response" // non-success status or unexpected body shape
	ValidationFailure Kind = "validation_failure" // body parsed but rejected by the caller's gate
)

// Outcome is the tagged result of a remote call. Text is set only for Success.
type Outcome struct {
	Kind   Kind
	Text   string
	Detail string
}

// OK reports whether the outcome carries usable text.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// String renders the outcome for logs.
func (o Outcome) String() string {
	if o.Detail == "" {
		return string(o.Kind)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Detail)
}

// Succeeded wraps generated text.
func Succeeded(text string) Outcome {
	return Outcome{Kind: Success, Text: text}
}

// Failed builds a failure outcome of the given kind.
func Failed(kind Kind, format string, args ...any) Outcome {
	return Outcome{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
