/*
NAME
  frame.go

DESCRIPTION
  frame.go implements Frame, the single-buffer Memory & Video-Frame
  object (spec §3, §4.2): allocation kinds (ContiguousDevice/HostOnly/
  External), sync flags, Map/Unmap/SyncData, and per-frame metadata.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package frame

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/verr"
)

// AllocKind tags how a Frame's buffer is backed (spec §3 "Allocation kind").
type AllocKind int8

const (
	// HostOnly is ordinary heap memory.
	HostOnly AllocKind = iota
	// ContiguousDevice is mapped/backed by the device: a physical address
	// is obtainable and the buffer is synchronizable.
	ContiguousDevice
	// External means the caller supplied the buffer; a free callback plus
	// user data may be attached and are invoked on Free.
	External
)

// SyncFlags is a bitset of pending host<->device sync directions (spec §3
// "Sync flags"). ToDevice and FromDevice are never simultaneously set.
type SyncFlags uint8

const (
	ToDevice SyncFlags = 1 << iota
	FromDevice
)

// MapFlags selects the access mode for Map.
type MapFlags uint8

const (
	Read MapFlags = 1 << iota
	Write
)

// Metadata carries per-frame timing (spec §3 "Metadata").
type Metadata struct {
	PTS, DTS int64
	Duration int64
}

// FreeFunc releases an External frame's caller-owned buffer. userData is
// whatever was passed to AllocateFromData, opaque to Frame itself.
type FreeFunc func(userData interface{})

// DeviceOps is the thin set of device operations a ContiguousDevice Frame
// needs from its Context's Handle: allocate/free a device-side buffer,
// and synchronize a host<->device region. Kept separate from devctx.Handle
// so devctx stays free of any frame-shaped detail; a real implementation's
// Handle type satisfies both interfaces.
type DeviceOps interface {
	devctx.Handle
	AllocDevice(size int) (physAddr uint64, bufHandle uintptr, err error)
	FreeDevice(bufHandle uintptr) error
	Sync(bufHandle uintptr, size int, toDevice bool) error
}

// MapInfo is returned by Map: per-plane pointers, sizes and the frame's
// layout (spec §4.2 "Map").
type MapInfo struct {
	Planes [][]byte
	Info   VideoInfo
}

// Frame is the single-buffer Memory & Video-Frame object described in
// spec §3/§4.2. The zero value is not valid; use Allocate or
// AllocateFromData.
type Frame struct {
	ctx   *devctx.Context
	kind  AllocKind
	bank  int
	info  VideoInfo
	data  []byte // host-side storage, always present (also used to stage ContiguousDevice transfers)
	sync  SyncFlags
	meta  Metadata
	log   logging.Logger

	// ContiguousDevice fields.
	dev      DeviceOps
	physAddr uint64
	bufH     uintptr

	// External fields.
	free     FreeFunc
	userData interface{}
	freed    bool
}

// Allocate allocates a new Frame of the given kind for info, backed by
// ctx's device if kind is ContiguousDevice (spec §4.2 "Allocate"). bank
// selects the memory bank to allocate from on device-backed frames.
func Allocate(ctx *devctx.Context, kind AllocKind, bank int, info VideoInfo) (*Frame, error) {
	if info.TotalSize <= 0 || len(info.Planes) == 0 {
		return nil, verr.New(verr.InvalidArgument, "video info has no planes")
	}
	if kind == ContiguousDevice && !ctx.HasDevice() {
		return nil, verr.New(verr.InvalidArgument, "ContiguousDevice allocation requires a device context")
	}

	f := &Frame{ctx: ctx, kind: kind, bank: bank, info: info}

	switch kind {
	case HostOnly:
		f.data = make([]byte, info.TotalSize)
	case ContiguousDevice:
		dev, ok := ctx.Handle().(DeviceOps)
		if !ok {
			return nil, verr.New(verr.DeviceError, "device context handle does not support DeviceOps")
		}
		f.dev = dev
		phys, bufH, err := f.dev.AllocDevice(info.TotalSize)
		if err != nil {
			return nil, verr.Wrap(err, verr.AllocationFailure, "device buffer allocation failed")
		}
		f.physAddr = phys
		f.bufH = bufH
		f.data = make([]byte, info.TotalSize) // host staging copy for Map
	case External:
		return nil, verr.New(verr.InvalidArgument, "use AllocateFromData for External frames")
	default:
		return nil, verr.New(verr.InvalidArgument, "unknown allocation kind")
	}
	return f, nil
}

// WrapRaw wraps an arbitrary byte buffer (not a planar video frame, e.g. an
// H.264 access unit) as an External Frame with a single pseudo-plane
// spanning the whole buffer. Used by codec/h264.Parser to hand access-unit
// bytes to callers as a Memory object per spec §6 "Access-unit output".
func WrapRaw(ctx *devctx.Context, data []byte, free FreeFunc, userData interface{}) (*Frame, error) {
	info := VideoInfo{
		Width: len(data), Height: 1, Format: Unknown,
		Planes:    []Plane{{Stride: len(data), Elevation: 1, Offset: 0, Size: len(data)}},
		TotalSize: len(data),
	}
	return AllocateFromData(ctx, info, data, free, userData)
}

// AllocateFromData wraps caller-supplied plane data as an External Frame
// (spec §4.2 "AllocateFromData"). data must already be laid out per
// info's plane offsets/sizes. free, if non-nil, is invoked exactly once
// with userData when the Frame is freed.
func AllocateFromData(ctx *devctx.Context, info VideoInfo, data []byte, free FreeFunc, userData interface{}) (*Frame, error) {
	if len(data) < info.TotalSize {
		return nil, verr.New(verr.InvalidArgument, "data shorter than video info total size")
	}
	return &Frame{ctx: ctx, kind: External, info: info, data: data, free: free, userData: userData}, nil
}

// Kind returns the Frame's allocation kind.
func (f *Frame) Kind() AllocKind { return f.kind }

// MemoryBank returns the memory bank used on device-backed allocation.
func (f *Frame) MemoryBank() int { return f.bank }

// Size returns the frame's total buffer size in bytes.
func (f *Frame) Size() int { return f.info.TotalSize }

// GetVideoInfo returns the frame's current layout.
func (f *Frame) GetVideoInfo() VideoInfo { return f.info }

// SetVideoInfo replaces the frame's layout description without
// reallocating or touching buffer contents; callers are responsible for
// ensuring the new info fits within the existing buffer.
func (f *Frame) SetVideoInfo(info VideoInfo) { f.info = info }

// GetMetadata returns the frame's PTS/DTS/duration.
func (f *Frame) GetMetadata() Metadata { return f.meta }

// SetMetadata sets the frame's PTS/DTS/duration.
func (f *Frame) SetMetadata(m Metadata) { f.meta = m }

// PhysAddr returns the frame's device physical address. Valid only for
// ContiguousDevice frames; returns 0 otherwise.
func (f *Frame) PhysAddr() uint64 {
	if f.kind != ContiguousDevice {
		return 0
	}
	return f.physAddr
}

// PlanePhysAddr returns the device physical address of plane i. Valid
// only for ContiguousDevice frames.
func (f *Frame) PlanePhysAddr(i int) uint64 {
	if f.kind != ContiguousDevice || i < 0 || i >= len(f.info.Planes) {
		return 0
	}
	return f.physAddr + uint64(f.info.Planes[i].Offset)
}

// BufHandle returns the device sub-buffer handle for the whole frame.
// Valid only for ContiguousDevice frames.
func (f *Frame) BufHandle() uintptr { return f.bufH }

// Map returns host-accessible pointers to each plane (spec §4.2 "Map").
// On a device-backed frame with Read set, it synchronizes FromDevice
// first; with Write set, it marks ToDevice pending for Unmap/release-time
// handling.
func (f *Frame) Map(flags MapFlags) (*MapInfo, error) {
	if f.freed {
		return nil, verr.New(verr.InvalidArgument, "frame already freed")
	}
	if f.kind == ContiguousDevice && flags&Read != 0 {
		if err := f.SyncData(FromDevice); err != nil {
			return nil, err
		}
	}
	if f.kind == ContiguousDevice && flags&Write != 0 {
		f.sync |= ToDevice
	}

	planes := make([][]byte, len(f.info.Planes))
	for i, p := range f.info.Planes {
		planes[i] = f.data[p.Offset : p.Offset+p.Size]
	}
	return &MapInfo{Planes: planes, Info: f.info}, nil
}

// Unmap releases a mapping obtained from Map. For device-backed frames
// this is where a pending ToDevice sync from a Write map would typically
// be flushed by a caller that wants synchronous semantics; SyncData
// remains the explicit mechanism per spec §4.2.
func (f *Frame) Unmap(info *MapInfo) {
	// No host-side resource to release; present for API symmetry with
	// the spec's Map/Unmap pair and to mirror device-backed
	// implementations that do release a kernel mapping here.
}

// SyncFlags returns the frame's current pending-sync bitset.
func (f *Frame) SyncFlags() SyncFlags { return f.sync }

// MarkSync sets direction as pending without performing any transfer,
// letting a subsequent Map(Read) (on ContiguousDevice) or explicit
// SyncData trigger it. Used by the scaler engine, which marks source
// frames ToDevice before dispatch and destination frames FromDevice
// after a successful ProcessFrame (spec §4.4 "Execution").
func (f *Frame) MarkSync(direction SyncFlags) { f.sync |= direction }

// SyncData synchronizes the frame's buffer with the device in the given
// direction (spec §4.2 "SyncData"). A no-op on HostOnly/External frames.
// direction must be exactly one of ToDevice or FromDevice.
func (f *Frame) SyncData(direction SyncFlags) error {
	if direction != ToDevice && direction != FromDevice {
		return verr.New(verr.InvalidArgument, "sync direction must be exactly one of ToDevice or FromDevice")
	}
	if f.kind != ContiguousDevice {
		return nil
	}
	err := f.dev.Sync(f.bufH, f.info.TotalSize, direction == ToDevice)
	if err != nil {
		if f.log != nil {
			f.log.Error("sync failed", "direction", direction, "error", err)
		}
		return verr.Wrap(err, verr.DeviceError, "sync failed")
	}
	f.sync &^= direction
	return nil
}

// Free destroys the frame's owned buffers. For External frames it
// invokes the stored free callback with the original user data, exactly
// once.
func (f *Frame) Free() error {
	if f.freed {
		return nil
	}
	f.freed = true
	switch f.kind {
	case ContiguousDevice:
		if f.dev != nil {
			if err := f.dev.FreeDevice(f.bufH); err != nil {
				return verr.Wrap(err, verr.DeviceError, "freeing device buffer failed")
			}
		}
	case External:
		if f.free != nil {
			f.free(f.userData)
		}
	}
	f.data = nil
	return nil
}
