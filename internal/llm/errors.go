package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind classifies why a Generate call failed. The retry layer decides on
// it and the event log records it.
type Kind int

const (
	// KindUnavailable covers network failures, 5xx replies and an empty
	// mock queue.
	KindUnavailable Kind = iota
	// KindRateLimited is HTTP 429.
	KindRateLimited
	// KindRejected is any other 4xx. A bad key or a malformed request
	// fails the same way on every attempt.
	KindRejected
	// KindInvalid means the reply does not match the request schema.
	KindInvalid
	// KindTruncated means a structured reply hit MaxTokens.
	KindTruncated
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrUnavailable = errors.New("provider unavailable")
	ErrRateLimited = errors.New("rate limited")
	ErrRejected    = errors.New("request rejected")
	ErrInvalid     = errors.New("reply does not match schema")
	ErrTruncated   = errors.New("reply truncated at max tokens")
)

func (k Kind) sentinel() error {
	switch k {
	case KindRateLimited:
		return ErrRateLimited
	case KindRejected:
		return ErrRejected
	case KindInvalid:
		return ErrInvalid
	case KindTruncated:
		return ErrTruncated
	default:
		return ErrUnavailable
	}
}

func (k Kind) String() string { return k.sentinel().Error() }

// Error is a failed provider call.
type Error struct {
	Kind     Kind
	Provider string
	// Status is the HTTP status, 0 when the call never got a reply.
	Status int
	// RetryAfter is the wait the provider asked for on a rate limit.
	RetryAfter time.Duration
	// Content is the offending reply for KindInvalid and KindTruncated.
	Content json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, ", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRateLimited) and friends work.
func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

// KindOf returns the kind of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// classify turns an SDK failure with HTTP status into an *Error.
func classify(provider string, status int, err error) *Error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusRequestTimeout:
	case status >= 400 && status < 500:
		kind = KindRejected
	}
	return &Error{Kind: kind, Provider: provider, Status: status, Err: err}
}
