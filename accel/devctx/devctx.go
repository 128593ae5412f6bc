/*
NAME
  devctx.go

DESCRIPTION
  devctx provides the Device Context: the cheap handle threaded through
  the frame, parser and scaler packages that records whether we're bound
  to an accelerator device or running host-only, plus the log level and
  kernel image identity associated with that binding.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package devctx implements the Device Context: device open/describe or
// host-only declaration, log level and kernel image identity. It owns no
// pixel data; accel/frame, codec/h264 and accel/scale each take a *Context
// as a cheap handle.
package devctx

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/verr"
)

// LogLevel mirrors the four severities named in the spec (ERROR, WARNING,
// INFO, DEBUG), mapped directly onto logging.Logger's own levels.
type LogLevel int8

const (
	LogError LogLevel = iota
	LogWarning
	LogInfo
	LogDebug
)

// HostOnly is the sentinel device index meaning "no accelerator device".
const HostOnly = -1

// Handle is an opaque device handle. The real accelerator binding (a
// vendor SDK context, an mmap'd register window, whatever the backend
// needs) lives behind this interface so devctx itself stays free of any
// particular hardware SDK import, matching the teacher's AVDevice
// convention of keeping device-specific detail in implementation structs
// and the interface thin.
type Handle interface {
	// Close releases the device handle and any kernel image it loaded.
	Close() error
}

// Opener opens a device by index and loads a kernel image, returning a
// Handle on success. Production code registers a real opener (e.g. an
// FPGA vendor SDK); tests substitute a fake. A nil Opener means every
// Create call with device_index >= 0 fails with DeviceError, matching a
// host with no accelerator driver installed.
type Opener func(deviceIndex int, kernelImagePath string) (Handle, error)

// Context is the Device Context described in spec §3/§4.1. The zero value
// is not valid; use New.
type Context struct {
	deviceIndex     int
	kernelImagePath string
	handle          Handle
	level           LogLevel
	log             logging.Logger
}

// New creates a Context. If deviceIndex >= 0 and kernelImagePath != "",
// open opens the device and loads the kernel image; otherwise a
// host-only Context is returned with no device handle. Per spec §4.1's
// invariant, a device handle is never created with one argument present
// and the other absent: a non-empty kernelImagePath with a negative
// deviceIndex, or vice versa, is rejected as InvalidArgument.
func New(open Opener, deviceIndex int, kernelImagePath string, level LogLevel, l logging.Logger) (*Context, error) {
	hasIndex := deviceIndex >= 0
	hasImage := kernelImagePath != ""

	if hasIndex != hasImage {
		return nil, verr.New(verr.InvalidArgument, "device index and kernel image path must both be present or both be absent")
	}

	c := &Context{deviceIndex: deviceIndex, kernelImagePath: kernelImagePath, level: level, log: l}

	if !hasIndex {
		c.deviceIndex = HostOnly
		c.logf(LogInfo, "new host-only device context")
		return c, nil
	}

	if open == nil {
		return nil, verr.New(verr.DeviceError, "no device opener registered")
	}
	h, err := open(deviceIndex, kernelImagePath)
	if err != nil {
		return nil, verr.Wrap(err, verr.DeviceError, "opening device failed")
	}
	c.handle = h
	c.logf(LogInfo, "opened device", "index", deviceIndex, "kernelImage", kernelImagePath)
	return c, nil
}

// NewHostOnly is a convenience wrapper for New(nil, HostOnly, "", level, l).
func NewHostOnly(level LogLevel, l logging.Logger) *Context {
	c, _ := New(nil, HostOnly, "", level, l)
	return c
}

// HasDevice reports whether this Context is bound to an accelerator
// device (as opposed to host-only).
func (c *Context) HasDevice() bool { return c != nil && c.handle != nil }

// Handle returns the underlying device Handle, or nil for a host-only
// Context. Callers that need device-specific operations (buffer
// allocation, sync) type-assert the result to their own richer interface,
// the way accel/frame.DeviceOps extends Handle.
func (c *Context) Handle() Handle {
	if c == nil {
		return nil
	}
	return c.handle
}

// DeviceIndex returns the device index, or HostOnly.
func (c *Context) DeviceIndex() int { return c.deviceIndex }

// KernelImagePath returns the loaded kernel image path, or "" if host-only.
func (c *Context) KernelImagePath() string { return c.kernelImagePath }

// LogLevel returns the configured log level.
func (c *Context) LogLevel() LogLevel { return c.level }

// SetLogLevel updates the log level and, if a logging.Logger is attached,
// propagates it immediately.
func (c *Context) SetLogLevel(level LogLevel) {
	c.level = level
	if c.log == nil {
		return
	}
	switch level {
	case LogDebug:
		c.log.SetLevel(logging.Debug)
	case LogInfo:
		c.log.SetLevel(logging.Info)
	case LogWarning:
		c.log.SetLevel(logging.Warning)
	default:
		c.log.SetLevel(logging.Error)
	}
}

// Destroy closes the device (if one was opened) and releases the
// Context. Destroying a Context while frames/parsers/scalers created
// against it are still alive is undefined behavior; callers must destroy
// all dependents first (spec §4.1).
func (c *Context) Destroy() error {
	if c == nil || c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	if err != nil {
		return verr.Wrap(err, verr.DeviceError, "closing device failed")
	}
	return nil
}

// logf routes msg plus key/value params through the attached
// logging.Logger at the given level, a no-op if none is attached. Mirrors
// the rest of the ambient stack's "never a package-global logger" rule:
// every accel type takes its own logging.Logger at construction.
func (c *Context) logf(level LogLevel, msg string, params ...interface{}) {
	if c.log == nil {
		return
	}
	switch level {
	case LogDebug:
		c.log.Debug(msg, params...)
	case LogInfo:
		c.log.Info(msg, params...)
	case LogWarning:
		c.log.Warning(msg, params...)
	default:
		c.log.Error(msg, params...)
	}
}
