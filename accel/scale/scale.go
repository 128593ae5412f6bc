/*
NAME
  scale.go

DESCRIPTION
  scale.go implements Engine, the Scaler Engine described in spec §4.4:
  Create/PropGet/PropSet/SetFilterCoef/ChannelAdd/ProcessFrame/Destroy,
  dispatching a channel list to a pluggable Backend (hardware or the
  software reference in accel/scale/swref).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package scale implements the Scaler Engine: channel validation and
// alignment, coefficient generation/selection, descriptor construction
// and dispatch to a Backend (spec §4.4).
package scale

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/verr"
)

// CoefLoadType selects how a channel's filter coefficients are obtained.
type CoefLoadType int8

const (
	Fixed CoefLoadType = iota
	AutoGenerate
)

// ScaleMode is the interpolation family the engine advertises.
type ScaleMode int8

const (
	Bilinear ScaleMode = iota
	Bicubic
	Polyphase
)

// Properties are the scaler properties of spec §3 "Scaler properties",
// read/written via PropGet/PropSet.
type Properties struct {
	CoefLoadType     CoefLoadType
	ScaleMode        ScaleMode
	FilterTaps       int // one of {6, 8, 10, 12}
	PixelsPerClock   int // one of {1, 2, 4, 8}
	MemoryBank       int
	SupportedFormats []frame.Format
}

func defaultProperties() Properties {
	return Properties{
		CoefLoadType:   AutoGenerate,
		ScaleMode:      Polyphase,
		FilterTaps:     12,
		PixelsPerClock: 4,
		MemoryBank:     0,
		SupportedFormats: []frame.Format{
			frame.NV12, frame.I420, frame.NV12_10LE32, frame.NV16, frame.YUY2,
			frame.RGB, frame.BGR, frame.RGBx, frame.BGRx, frame.RGBA, frame.BGRA,
			frame.GRAY8, frame.GRAY10_LE32, frame.I422_10LE,
		},
	}
}

// CoefType selects which of a channel's two coefficient tables
// SetFilterCoef overwrites.
type CoefType int8

const (
	Horizontal CoefType = iota
	Vertical
)

// channel is one entry of the pending channel list built by ChannelAdd
// and consumed in order by ProcessFrame.
type channel struct {
	src, dst  Rect
	pre       *PreProcess
	scaleType ScaleType
	hAlign    HAlign
	vAlign    VAlign
}

// Engine is the Scaler Engine of spec §4.4. The zero value is not valid;
// use Create.
type Engine struct {
	ctx        *devctx.Context
	log        logging.Logger
	backend    Backend
	kernelName string
	props      Properties

	hCoefOverride, vCoefOverride *CoefTable

	channels []channel
}

// Create selects a backend by dynamic lookup keyed by kernelName (spec
// §4.4 "Create"); backends register themselves with RegisterBackend,
// typically from an init() in their own package (mirroring database/sql
// driver registration), so picking a backend is just importing it for
// its side effect.
func Create(ctx *devctx.Context, kernelName string, level devctx.LogLevel, l logging.Logger) (*Engine, error) {
	factory, ok := lookupBackend(kernelName)
	if !ok {
		return nil, verr.Newf(verr.NotSupported, "no scaler backend registered for kernel %q", kernelName)
	}
	backend, err := factory(ctx, l)
	if err != nil {
		return nil, verr.Wrap(err, verr.DeviceError, "scaler backend creation failed")
	}
	if ctx != nil {
		ctx.SetLogLevel(level)
	}
	return &Engine{ctx: ctx, log: l, backend: backend, kernelName: kernelName, props: defaultProperties()}, nil
}

// PropGet returns the engine's current properties.
func (e *Engine) PropGet() Properties { return e.props }

// PropSet replaces the engine's properties wholesale. Callers read
// PropGet, mutate the copy, and pass it back; this mirrors the
// teacher's config struct-of-fields convention rather than per-field
// setters.
func (e *Engine) PropSet(p Properties) { e.props = p }

// SetFilterCoef overwrites the default coefficient table used for
// coefType on every subsequent ChannelAdd/ProcessFrame until overwritten
// again (spec §4.4 "SetFilterCoef"; spec §5 "Shared resources": call
// between ProcessFrames, never mid-dispatch).
func (e *Engine) SetFilterCoef(coefType CoefType, table CoefTable) {
	switch coefType {
	case Horizontal:
		e.hCoefOverride = &table
	case Vertical:
		e.vCoefOverride = &table
	}
}

// ChannelAdd validates and aligns a source/destination rect pair and
// appends a channel to the pending list (spec §4.4 "ChannelAdd").
// Neither rect's frame data is read here; validation is purely
// geometric against each frame's VideoInfo.
func (e *Engine) ChannelAdd(src, dst Rect, pre *PreProcess, scaleType ScaleType, hAlign HAlign, vAlign VAlign) error {
	if src.Frame == nil || dst.Frame == nil {
		return verr.New(verr.InvalidArgument, "source and destination rects must reference a frame")
	}
	if rb, ok := e.backend.(deviceRequirer); ok && rb.RequiresContiguousDevice() {
		if src.Frame.Kind() != frame.ContiguousDevice || dst.Frame.Kind() != frame.ContiguousDevice {
			return verr.New(verr.InvalidArgument, "backend requires ContiguousDevice source and destination frames")
		}
	}

	alignedSrc, err := alignRect(src, e.props.PixelsPerClock)
	if err != nil {
		return err
	}

	alignedDst := dst
	switch scaleType {
	case Default:
		// No geometry adjustment.
	case Letterbox:
		alignedDst = letterbox(alignedSrc, dst, hAlign, vAlign)
	case EnvelopeCropped:
		alignedSrc = envelopeCrop(alignedSrc, dst)
	}

	e.channels = append(e.channels, channel{
		src: alignedSrc, dst: alignedDst, pre: pre, scaleType: scaleType, hAlign: hAlign, vAlign: vAlign,
	})
	return nil
}

// deviceRequirer is an optional Backend capability: true means
// ChannelAdd must reject anything but ContiguousDevice frames.
type deviceRequirer interface {
	RequiresContiguousDevice() bool
}

// ProcessFrame executes every added channel against the backend, then
// clears the channel list regardless of outcome (spec §4.4
// "ProcessFrame"/"Execution").
func (e *Engine) ProcessFrame() error {
	defer func() { e.channels = nil }()

	if len(e.channels) == 0 {
		return nil
	}

	var head, tail *Descriptor
	for i := range e.channels {
		ch := &e.channels[i]
		ch.src.Frame.MarkSync(frame.ToDevice)
		if err := ch.src.Frame.SyncData(frame.ToDevice); err != nil {
			return verr.Wrap(err, verr.DeviceError, "source sync failed")
		}

		desc, err := buildDescriptor(ch, e.props, e.hCoefOverride, e.vCoefOverride)
		if err != nil {
			return err
		}
		if head == nil {
			head = desc
		} else {
			tail.Next = desc
		}
		tail = desc
	}

	if err := e.backend.Process(head); err != nil {
		return err
	}

	for i := range e.channels {
		e.channels[i].dst.Frame.MarkSync(frame.FromDevice)
	}
	return nil
}

// Destroy releases the engine's pending channel list. It does not close
// the backend Create built or the Device Context, which is owned by the
// caller (spec §4.1 ownership rules).
func (e *Engine) Destroy() { e.channels = nil }
