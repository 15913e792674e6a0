package extraction

import "fmt"

// TransportError reports a failure moving image bytes between stores:
// downloading from the chat platform, uploading to the model's file
// store, or deleting the uploaded copy.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ModelError reports a failed inference call. It is never retried; the
// caller turns it into a single user-visible failure.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("generating content: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// ParseError reports model output that could not be normalized. Raw
// keeps the original response text so the caller can still show it to
// the user instead of failing the request.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
