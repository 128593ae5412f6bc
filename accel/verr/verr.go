/*
NAME
  verr.go

DESCRIPTION
  verr provides the unified error taxonomy shared by the accel packages:
  device context, frame, parser and scaler engine all report failures
  through this small sentinel-code type rather than ad-hoc errors, so
  callers can dispatch on Code with errors.Is/errors.As regardless of
  which package originated the failure.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package verr provides a small, closed error taxonomy shared across the
// accel packages (device context, frame, parser, scaler engine).
package verr

import "github.com/pkg/errors"

// Code identifies the category of an Error. The set is closed and mirrors
// the outcomes a caller must distinguish to behave correctly: some are
// genuine failures, others (NeedMoreData, EndOfStream) are normal parser
// outcomes that happen to travel the same channel.
type Code int8

const (
	// InvalidArgument marks a null/out-of-range/malformed input.
	InvalidArgument Code = iota
	// AllocationFailure marks a failed memory allocation.
	AllocationFailure
	// DeviceError marks a device open/alloc/sync/execution failure.
	DeviceError
	// NotSupported marks a format or configuration the backend declines.
	NotSupported
	// NeedMoreData is a parser outcome: more input is required before an
	// access unit can be completed. Not a failure.
	NeedMoreData
	// EndOfStream is a parser outcome: the final access unit has been
	// flushed. Not a failure.
	EndOfStream
	// Timeout marks a scaler backend that exhausted its wait budget.
	Timeout
	// Error is the catch-all for internal invariants violated.
	Error
)

// String returns a short lower-case name for c, used in error messages.
func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid argument"
	case AllocationFailure:
		return "allocation failure"
	case DeviceError:
		return "device error"
	case NotSupported:
		return "not supported"
	case NeedMoreData:
		return "need more data"
	case EndOfStream:
		return "end of stream"
	case Timeout:
		return "timeout"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Normal reports whether c is a non-failure parser outcome (NeedMoreData
// or EndOfStream) rather than a genuine error.
func (c Code) Normal() bool { return c == NeedMoreData || c == EndOfStream }

// vErr is the concrete error type carrying a Code plus an optional
// wrapped cause and message.
type vErr struct {
	code Code
	msg  string
	// cause is the wrapped underlying error, if any.
	cause error
}

// Error implements the error interface.
func (e *vErr) Error() string {
	if e.cause != nil {
		return e.code.String() + ": " + e.msg + ": " + e.cause.Error()
	}
	if e.msg != "" {
		return e.code.String() + ": " + e.msg
	}
	return e.code.String()
}

// Unwrap supports errors.Is/errors.As traversal into the wrapped cause.
func (e *vErr) Unwrap() error { return e.cause }

// Is reports whether target is a vErr with the same Code, so that
// errors.Is(err, verr.New(verr.NeedMoreData, "")) works as a category test.
func (e *vErr) Is(target error) bool {
	t, ok := target.(*vErr)
	if !ok {
		return false
	}
	return t.code == e.code
}

// New returns an Error of the given Code with msg as its description.
func New(code Code, msg string) error {
	return &vErr{code: code, msg: msg}
}

// Newf is like New but formats msg with args per fmt.Sprintf semantics,
// deferred to errors.Errorf to stay consistent with the rest of the
// codebase's use of github.com/pkg/errors.
func Newf(code Code, format string, args ...interface{}) error {
	return &vErr{code: code, msg: errors.Errorf(format, args...).Error()}
}

// Wrap returns an Error of the given Code that wraps cause. If cause is
// nil, Wrap returns nil, matching github.com/pkg/errors.Wrap's convention.
func Wrap(cause error, code Code, msg string) error {
	if cause == nil {
		return nil
	}
	return &vErr{code: code, msg: msg, cause: cause}
}

// Of reports the Code of err, or Error if err is not one of ours (but
// non-nil), or false if err is nil.
func Of(err error) (Code, bool) {
	if err == nil {
		return 0, false
	}
	var v *vErr
	if errors.As(err, &v) {
		return v.code, true
	}
	return Error, true
}

// Is reports whether err carries the given Code.
func Is(err error, code Code) bool {
	c, ok := Of(err)
	return ok && c == code
}

// ErrNeedMoreData and ErrEndOfStream are ready-made errors carrying the
// NeedMoreData and EndOfStream codes (so Is(err, verr.NeedMoreData) holds
// for them), for the common no-message cases callers return directly
// without constructing their own message.
var (
	ErrNeedMoreData = New(NeedMoreData, "")
	ErrEndOfStream  = New(EndOfStream, "")
)
