package strata

import (
	"errors"
	"fmt"
)

// ErrNotUsed is returned by a middleware factory to opt its unit out of the
// pipeline. The unit is omitted from the chain; this is not a failure and is
// only surfaced as a debug log entry.
var ErrNotUsed = errors.New("strata: middleware not used")

// ErrNilResponse marks a response or template-response hook that returned
// neither a Response nor an error.
var ErrNilResponse = errors.New("strata: hook returned nil response")

// Hook names as they appear in errors and logs.
const (
	HookRequest          = "request"
	HookView             = "view"
	HookException        = "exception"
	HookTemplateResponse = "template_response"
	HookResponse         = "response"
)

// ConstructionError reports a middleware factory that failed at startup.
// It is fatal: no partial pipeline is ever built.
type ConstructionError struct {
	Unit string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("strata: constructing middleware %q: %v", e.Unit, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// HookError reports a hook that misbehaved while a request was in flight:
// it returned an error, or returned an invalid value (a nil Response from a
// response or template-response hook). It is fatal for that request only.
// A HookError raised during the response-phase unwind aborts the remaining
// unwind.
type HookError struct {
	Unit string
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("strata: middleware %q %s hook: %v", e.Unit, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// UnhandledViewError reports a view error that no exception hook resolved.
// It propagates out of the dispatcher; response hooks do not run for the
// request since no Response exists to carry through them.
type UnhandledViewError struct {
	View string
	Err  error
}

func (e *UnhandledViewError) Error() string {
	return fmt.Sprintf("strata: unhandled error from view %q: %v", e.View, e.Err)
}

func (e *UnhandledViewError) Unwrap() error { return e.Err }

// PanicError wraps a recovered view panic so it can travel the same path as
// an ordinary view error, through the exception hooks.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("strata: recovered panic: %v", e.Value)
}
