package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies every failure that can reach a screen.
type Kind int

const (
	KindHTTP Kind = iota
	KindTimeout
	KindNetworkUnavailable
	KindUnauthorized
	KindMalformedResponse
	// KindInvalidRequest is a request the console could not encode; it
	// never reached the backend.
	KindInvalidRequest
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindUnauthorized:
		return "unauthorized"
	case KindMalformedResponse:
		return "malformed_response"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

const (
	TimeoutMessage      = "Request timeout - please try again"
	NetworkMessage      = "Network error - please check your connection"
	UnauthorizedMessage = "Session expired - please log in again"
)

// Error is the only error type the resource layer hands upwards.
type Error struct {
	Kind    Kind
	Status  int
	Body    []byte
	Message string // backend-provided message, if any
	Err     error
}

func (e *Error) Error() string {
	var s string
	switch e.Kind {
	case KindHTTP:
		s = fmt.Sprintf("http %d", e.Status)
	default:
		s = e.Kind.String()
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text a screen shows for this failure; fallback is the
// per-operation message used when nothing more specific is known.
func (e *Error) UserMessage(fallback string) string {
	switch e.Kind {
	case KindTimeout:
		return TimeoutMessage
	case KindNetworkUnavailable:
		return NetworkMessage
	case KindUnauthorized:
		return UnauthorizedMessage
	case KindHTTP:
		if e.Message != "" {
			return e.Message
		}
	}
	return fallback
}

func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

func NetworkUnavailable(err error) *Error {
	return &Error{Kind: KindNetworkUnavailable, Err: err}
}

func Unauthorized(body []byte) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Body: body}
}

func Malformed(body []byte, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Body: body, Err: err}
}

func InvalidRequest(err error) *Error {
	return &Error{Kind: KindInvalidRequest, Err: err}
}

func HTTP(status int, body []byte, message string) *Error {
	return &Error{Kind: KindHTTP, Status: status, Body: body, Message: message}
}

// From extracts an *Error from err's chain.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := From(err)
	return ok && ae.Kind == kind
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if ae, ok := From(err); ok {
		return ae.Status
	}
	return 0
}

// Message renders err for a user: taxonomy errors via UserMessage, anything
// unclassified becomes the fallback.
func Message(err error, fallback string) string {
	if ae, ok := From(err); ok {
		return ae.UserMessage(fallback)
	}
	return fallback
}
