/*
NAME
  stubdecoder.go

DESCRIPTION
  stubdecoder.go implements StubDecoder, a Decoder that never looks at
  its access unit bytes and always returns a fixed-size, fixed-format
  frame filled with a constant sample value. It is the "stub decoder"
  spec §8 scenario 1 calls for: something that stands in for an actual
  H.264 decoder (out of scope for this module) so the rest of Pipeline
  can be driven end to end.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package pipeline

import (
	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/codec/h264"
)

// StubDecoder is a Decoder that discards its access unit and returns a
// frame of (Width, Height, Format) filled with Fill on every call.
type StubDecoder struct {
	Width, Height int
	Format        frame.Format
	Fill          byte
}

// Decode ignores au and cfg and returns the stub frame described by d.
func (d StubDecoder) Decode(ctx *devctx.Context, au *frame.Frame, cfg *h264.DecoderInputConfig) (*frame.Frame, error) {
	info, err := frame.ComputeLayout(d.Width, d.Height, d.Format, frame.Alignment{})
	if err != nil {
		return nil, err
	}
	data := make([]byte, info.TotalSize)
	for i := range data {
		data[i] = d.Fill
	}
	return frame.AllocateFromData(ctx, *info, data, nil, nil)
}
