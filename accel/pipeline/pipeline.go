/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go implements Pipeline, stringing a capture device, the H.264
  Annex-B parser, an optional motion gate, a pluggable Decoder and the
  Scaler Engine into one staged pipeline: device -> parser -> [gate] ->
  decoder -> scale.Engine -> consumer callback (spec §8 end-to-end
  scenario 1). Its staged Start/Stop-shaped Run method is the same
  "read, feed the next stage, repeat until EOS" loop revid's own
  pipeline used to drive capture through to output.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package pipeline wires device capture, H.264 access-unit parsing, an
// optional motion gate, a pluggable decoder and the scaler engine into a
// single processing loop (spec §8).
package pipeline

import (
	"errors"
	"io"

	"github.com/ausocean/utils/logging"
	pkgerrors "github.com/pkg/errors"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/scale"
	"github.com/ausocean/vvasgo/accel/verr"
	"github.com/ausocean/vvasgo/codec/h264"
)

// readChunkSize is how many bytes Run reads from its source per Read
// call before handing them to the parser.
const readChunkSize = 64 * 1024

// Decoder turns one H.264 access unit into a raw pixel frame.Frame. It
// stands in for an actual H.264 decoder, which this module does not
// implement: codec/h264.Parser only reassembles access units and
// SPS/PPS-derived configuration, never pixels.
type Decoder interface {
	Decode(ctx *devctx.Context, au *frame.Frame, cfg *h264.DecoderInputConfig) (*frame.Frame, error)
}

// Config is a Pipeline's fixed output geometry and backend selection.
type Config struct {
	OutWidth, OutHeight int
	OutFormat           frame.Format
	KernelName          string // scale backend, e.g. swref.KernelName
	ScaleType           scale.ScaleType
	Gate                *MotionGate // nil disables the motion gate
}

// Pipeline is the staged device -> parser -> [gate] -> decoder ->
// scale.Engine -> consumer loop of spec §8 scenario 1.
type Pipeline struct {
	ctx     *devctx.Context
	log     logging.Logger
	parser  *h264.Parser
	decoder Decoder
	engine  *scale.Engine
	cfg     Config
}

// New builds a Pipeline. ctx may be nil for a host-only (no device
// context) pipeline, matching accel/scale.Create and h264.NewParser's
// own nil-context tolerance.
func New(ctx *devctx.Context, l logging.Logger, decoder Decoder, cfg Config) (*Pipeline, error) {
	if decoder == nil {
		return nil, verr.New(verr.InvalidArgument, "pipeline requires a Decoder")
	}
	e, err := scale.Create(ctx, cfg.KernelName, devctx.LogInfo, l)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		ctx:     ctx,
		log:     l,
		parser:  h264.NewParser(ctx, l),
		decoder: decoder,
		engine:  e,
		cfg:     cfg,
	}, nil
}

// Run reads Annex-B bytes from r (an io.Reader; device.AVDevice
// satisfies this) until r reports io.EOF, reassembling access units,
// decoding and scaling each, and invoking onFrame once per decoded
// access unit that passes the motion gate (or every access unit, if no
// gate is configured). onFrame receives ownership of the destination
// frame's pixels; once onFrame returns, the frame is the caller's to
// Free.
func (p *Pipeline) Run(r io.Reader, onFrame func(dst *frame.Frame) error) error {
	buf := make([]byte, readChunkSize)
	var lastConfig *h264.DecoderInputConfig

	for {
		n, rerr := r.Read(buf)
		isEOS := errors.Is(rerr, io.EOF)
		chunk := buf[:n]

		first := true
		for {
			in := chunk
			if !first {
				in = nil
			}
			first = false

			au, cfg, _, status := p.parser.GetAccessUnit(in, isEOS)
			if cfg != nil {
				lastConfig = cfg
			}

			switch status {
			case h264.StatusSuccess:
				if err := p.handleAccessUnit(au, lastConfig, onFrame); err != nil {
					return err
				}
				continue
			case h264.StatusEndOfStream:
				if au != nil {
					if err := p.handleAccessUnit(au, lastConfig, onFrame); err != nil {
						return err
					}
				}
				return nil
			case h264.StatusError:
				return verr.New(verr.DeviceError, "h264 parser reported an error")
			}
			break // StatusNeedMoreData: read more from r.
		}

		if isEOS {
			return nil
		}
		if rerr != nil {
			return pkgerrors.Wrap(rerr, "pipeline: reading from source failed")
		}
	}
}

// handleAccessUnit decodes one access unit, optionally gates it on
// motion, scales it to the pipeline's configured output, and delivers
// the result to onFrame.
func (p *Pipeline) handleAccessUnit(au *frame.Frame, cfg *h264.DecoderInputConfig, onFrame func(*frame.Frame) error) error {
	defer au.Free()

	raw, err := p.decoder.Decode(p.ctx, au, cfg)
	if err != nil {
		return verr.Wrap(err, verr.DeviceError, "decode failed")
	}
	defer raw.Free()

	srcInfo := raw.GetVideoInfo()

	if p.cfg.Gate != nil {
		mi, err := raw.Map(frame.Read)
		if err != nil {
			return err
		}
		motion := p.cfg.Gate.Check(mi.Planes[0], srcInfo.Width, srcInfo.Height)
		raw.Unmap(mi)
		if !motion {
			return nil
		}
	}

	outInfo, err := frame.ComputeLayout(p.cfg.OutWidth, p.cfg.OutHeight, p.cfg.OutFormat, frame.Alignment{})
	if err != nil {
		return err
	}
	dst, err := frame.Allocate(p.ctx, frame.HostOnly, 0, *outInfo)
	if err != nil {
		return err
	}

	src := scale.Rect{Frame: raw, X: 0, Y: 0, Width: srcInfo.Width, Height: srcInfo.Height}
	dstRect := scale.Rect{Frame: dst, X: 0, Y: 0, Width: p.cfg.OutWidth, Height: p.cfg.OutHeight}
	if err := p.engine.ChannelAdd(src, dstRect, nil, p.cfg.ScaleType, scale.Left, scale.Top); err != nil {
		return err
	}
	if err := p.engine.ProcessFrame(); err != nil {
		return err
	}
	return onFrame(dst)
}
