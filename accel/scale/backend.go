/*
NAME
  backend.go

DESCRIPTION
  backend.go defines Backend, the pluggable execution target for a
  Descriptor chain, plus the dynamic-lookup registry Create uses to pick
  one by kernel name (spec §4.4 "Create"), and a hardware-shaped backend
  implementing the wait/retry/timeout execution policy of spec §4.4
  "Execution" against a DeviceOps-like command interface.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package scale

import (
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/verr"
)

// Backend executes a Descriptor chain, either against real hardware or
// a software reference implementation (spec §4.5).
type Backend interface {
	Process(chain *Descriptor) error
}

// BackendFactory constructs a Backend bound to ctx. Backend packages
// call RegisterBackend from their own init(), mirroring database/sql
// driver registration: importing a backend package for its side effect
// is what makes its kernel name available to Create.
type BackendFactory func(ctx *devctx.Context, l logging.Logger) (Backend, error)

var backendRegistry = map[string]BackendFactory{}

// RegisterBackend makes factory available under name for Create's
// dynamic lookup. Panics on a duplicate name, the same way
// database/sql.Register does, since that can only be a programming
// error (two backend packages both claiming the same kernel name).
func RegisterBackend(name string, factory BackendFactory) {
	if _, exists := backendRegistry[name]; exists {
		panic("scale: backend already registered: " + name)
	}
	backendRegistry[name] = factory
}

func lookupBackend(name string) (BackendFactory, bool) {
	f, ok := backendRegistry[name]
	return f, ok
}

// DeviceCommandQueue is the minimal command-submission surface a
// hardware backend needs from the device: dispatch a descriptor chain
// and poll for completion. A real implementation's devctx.Handle would
// additionally satisfy this, the way accel/frame.DeviceOps extends
// devctx.Handle for buffer operations.
type DeviceCommandQueue interface {
	devctx.Handle
	Dispatch(chain *Descriptor) (token uintptr, err error)
	Poll(token uintptr) (done bool, failed bool, err error)
}

// hardwareWaitTimeout and hardwareMaxRetries implement spec §4.4
// "Execution": "wait for completion with a 1-second timeout and up to
// 10 retries".
const (
	hardwareWaitTimeout = time.Second
	hardwareMaxRetries  = 10
)

// hardwareBackend dispatches a descriptor chain to a DeviceCommandQueue
// and waits for completion per spec §4.4's timeout/retry policy. It
// requires ContiguousDevice frames (spec §4.4 rule 1).
type hardwareBackend struct {
	queue DeviceCommandQueue
	log   logging.Logger
}

// NewHardwareBackend builds a Backend that dispatches to queue. Kept
// exported (rather than only reachable via RegisterBackend) so a caller
// wiring up a real accelerator can construct one directly without
// needing a kernel-name registry entry.
func NewHardwareBackend(queue DeviceCommandQueue, l logging.Logger) Backend {
	return &hardwareBackend{queue: queue, log: l}
}

func (b *hardwareBackend) RequiresContiguousDevice() bool { return true }

func (b *hardwareBackend) Process(chain *Descriptor) error {
	token, err := b.queue.Dispatch(chain)
	if err != nil {
		return verr.Wrap(err, verr.DeviceError, "descriptor dispatch failed")
	}

	for attempt := 0; attempt < hardwareMaxRetries; attempt++ {
		deadline := time.Now().Add(hardwareWaitTimeout)
		for time.Now().Before(deadline) {
			done, failed, err := b.queue.Poll(token)
			if err != nil {
				return verr.Wrap(err, verr.DeviceError, "descriptor poll failed")
			}
			if failed {
				return verr.New(verr.DeviceError, "device reported execution failure")
			}
			if done {
				return nil
			}
			time.Sleep(time.Millisecond)
		}
		if b.log != nil {
			b.log.Warning("scaler hardware backend timed out waiting for completion, retrying", "attempt", attempt+1)
		}
	}
	return verr.New(verr.Timeout, "scaler hardware backend exhausted retries waiting for completion")
}
