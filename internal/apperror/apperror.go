// Package apperror defines the client-visible failures of the resize pipeline.
//
// Every stage of the pipeline returns an *Error carrying one Kind. The HTTP
// layer turns any *Error into a 400 response whose body is Error(); the wrapped
// cause is kept for logging only and never reaches the client.
package apperror

import "errors"

// Kind identifies a class of pipeline failure.
type Kind int

const (
	InvalidRequest Kind = iota + 1
	InvalidPayload
	NotFound
	InaccessibleImage
	BlockedHost
	InvalidImage
	InvalidFormat
	FailedWrite
)

var messages = map[Kind]string{
	InvalidRequest:    "Invalid Request For Image",
	InvalidPayload:    "Invalid Image Payload",
	NotFound:          "Image Not Found",
	InaccessibleImage: "Inaccessible Image",
	BlockedHost:       "Image Host Is Not Allowed",
	InvalidImage:      "Invalid Image",
	InvalidFormat:     "Invalid Format For Image",
	FailedWrite:       "Failed To Write Image",
}

// Message returns the client-visible text for k.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return "Unknown Error"
}

func (k Kind) String() string {
	return k.Message()
}

// Error is a pipeline failure of a given Kind with an optional cause.
type Error struct {
	Kind Kind
	Err  error
}

// Sentinels for errors.Is comparisons. Matching is by Kind only.
var (
	ErrInvalidRequest    = &Error{Kind: InvalidRequest}
	ErrInvalidPayload    = &Error{Kind: InvalidPayload}
	ErrNotFound          = &Error{Kind: NotFound}
	ErrInaccessibleImage = &Error{Kind: InaccessibleImage}
	ErrBlockedHost       = &Error{Kind: BlockedHost}
	ErrInvalidImage      = &Error{Kind: InvalidImage}
	ErrInvalidFormat     = &Error{Kind: InvalidFormat}
	ErrFailedWrite       = &Error{Kind: FailedWrite}
)

// New returns an *Error of kind k wrapping cause. cause may be nil.
func New(k Kind, cause error) *Error {
	return &Error{Kind: k, Err: cause}
}

func (e *Error) Error() string {
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, or false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
