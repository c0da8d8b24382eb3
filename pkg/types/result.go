package types

import (
	"encoding/json"
	"fmt"
	"maps"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrorKind classifies a failed Result
type ErrorKind string

const (
	// AnalysisError is a repository-level failure, such as an inaccessible root.
	AnalysisError ErrorKind = "AnalysisError"
	// IntentError means the prompt lacks a recognizable action or technology.
	IntentError ErrorKind = "IntentError"
	// ProcessingError is an unexpected internal failure while processing a prompt.
	ProcessingError ErrorKind = "ProcessingError"
	// ValidationError is malformed construction input (patterns, config, formats).
	ValidationError ErrorKind = "ValidationError"
	// GenerationError is reserved for downstream agent generation.
	GenerationError ErrorKind = "GenerationError"
)

// Valid reports whether the kind belongs to the fixed taxonomy
func (k ErrorKind) Valid() bool {
	switch k {
	case AnalysisError, IntentError, ProcessingError, ValidationError, GenerationError:
		return true
	}
	return false
}

// Error is the failure branch of a Result. It also satisfies the error interface
// so collaborators can return it directly.
type Error struct {
	Message string         `json:"message" yaml:"message"`
	Kind    ErrorKind      `json:"type" yaml:"type"`
	Details map[string]any `json:"details" yaml:"details"`
}

// NewError builds an Error, never leaving Details nil
func NewError(kind ErrorKind, message string, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{Message: message, Kind: kind, Details: details}
}

// Errorf builds an Error with a formatted message and no details
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...), nil)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// =============================================================================
// RESULT ENVELOPE
// =============================================================================

// Metadata is optional information attached to a successful Result
type Metadata map[string]any

// Result is either a success carrying data and metadata, or a failure carrying an Error.
// The zero value is not a valid Result; use Success or Failure.
type Result[T any] struct {
	data     T
	metadata Metadata
	err      *Error
}

// Success wraps a payload
func Success[T any](data T, metadata Metadata) Result[T] {
	if metadata == nil {
		metadata = Metadata{}
	}
	return Result[T]{data: data, metadata: metadata}
}

// Failure wraps an error. A nil error is turned into a ProcessingError.
func Failure[T any](err *Error) Result[T] {
	if err == nil {
		err = NewError(ProcessingError, "failure without error", nil)
	}
	return Result[T]{err: err}
}

// Fail is shorthand for Failure(NewError(...))
func Fail[T any](kind ErrorKind, message string, details map[string]any) Result[T] {
	return Failure[T](NewError(kind, message, details))
}

// OK reports whether the result is a success
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Data returns the payload (zero value on failure)
func (r Result[T]) Data() T {
	return r.data
}

// Metadata returns the success metadata (nil on failure)
func (r Result[T]) Metadata() Metadata {
	return r.metadata
}

// Err returns the failure, or nil on success
func (r Result[T]) Err() *Error {
	return r.err
}

// Unwrap splits the result into Go's (value, error) convention
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.data, nil
}

// Match calls exactly one of the two branches
func (r Result[T]) Match(onSuccess func(T, Metadata), onFailure func(*Error)) {
	if r.err != nil {
		onFailure(r.err)
		return
	}
	onSuccess(r.data, r.metadata)
}

// WithMetadata returns a copy with an extra metadata entry. Failures are returned
// unchanged; their diagnostics live in Error.Details.
func (r Result[T]) WithMetadata(key string, value any) Result[T] {
	if r.err != nil {
		return r
	}
	md := make(Metadata, len(r.metadata)+1)
	maps.Copy(md, r.metadata)
	md[key] = value
	r.metadata = md
	return r
}

// Envelope is the serialized form of a Result
type Envelope[T any] struct {
	Success  bool     `json:"success" yaml:"success"`
	Data     *T       `json:"data,omitempty" yaml:"data,omitempty"`
	Metadata Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Error    *Error   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Envelope converts the result for transport encoders
func (r Result[T]) Envelope() Envelope[T] {
	if r.err != nil {
		return Envelope[T]{Success: false, Error: r.err}
	}
	data := r.data
	return Envelope[T]{Success: true, Data: &data, Metadata: r.metadata}
}

// MarshalJSON encodes the envelope form
func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

// MarshalYAML encodes the envelope form for gopkg.in/yaml.v3
func (r Result[T]) MarshalYAML() (interface{}, error) {
	return r.Envelope(), nil
}
