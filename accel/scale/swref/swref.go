/*
NAME
  swref.go

DESCRIPTION
  swref.go implements the "swref" scale.Backend: the pure-CPU reference
  path spec §4.5 "Software Multi-Scaler Reference" describes, used by
  accel/scale.Engine when no device kernel is available. It registers
  itself with accel/scale on import, mirroring database/sql driver
  registration.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package swref is the software reference implementation of the
// polyphase multi-scaler (spec §4.5): ingest, chroma upsample, pack,
// polyphase scale, color convert, unpack/downsample, pre-process,
// egress.
package swref

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/scale"
	"github.com/ausocean/vvasgo/accel/verr"
)

// KernelName is the kernel identifier accel/scale.Create looks up to
// select this backend.
const KernelName = "swref"

func init() {
	scale.RegisterBackend(KernelName, func(ctx *devctx.Context, l logging.Logger) (scale.Backend, error) {
		return New(l), nil
	})
}

// Backend is the software reference scale.Backend.
type Backend struct {
	log logging.Logger
}

// New returns a Backend that logs via l (may be nil).
func New(l logging.Logger) *Backend { return &Backend{log: l} }

// Process runs every descriptor in chain through the 8-step pipeline of
// spec §4.5, in order, stopping at the first error.
func (b *Backend) Process(chain *scale.Descriptor) error {
	for d := chain; d != nil; d = d.Next {
		if err := b.processOne(d); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) processOne(d *scale.Descriptor) error {
	// Step 1: ingest.
	comps, _, err := decodeComponents(d.InFormat, d.SrcPlanes, d.InWidth, d.InHeight)
	if err != nil {
		return verr.Wrap(err, verr.NotSupported, "swref ingest failed")
	}

	// Step 2: chroma upsample to 4:4:4.
	comps = upsampleChroma(d.InFormat, comps)

	// Step 3: pack to interleaved is a conceptual reorder only here;
	// resizeAxis/convertColorSpace already operate per-channel on
	// planar arrays, which is mathematically equivalent to filtering
	// genuinely interleaved samples and avoids an extra copy.

	// Step 4: polyphase scale, vertical then horizontal.
	comps = polyphaseScale(comps, d.OutWidth, d.OutHeight, d.HCoef, d.VCoef)

	// Step 5: color-space conversion (+ RGB/BGR channel order).
	comps = convertColorSpace(d.InFormat, d.OutFormat, comps)

	// Step 6: chroma downsample back to the output format's subsampling.
	comps = downsampleChroma(d.OutFormat, comps, d.OutWidth, d.OutHeight)

	// Step 7: optional affine pre-process, RGB-family outputs only.
	if !isYUVFamily(d.OutFormat) {
		preProcess(d.Pre, comps)
	}

	// Step 8: egress.
	if err := encodeComponents(d.OutFormat, comps, d.DstPlanes, d.OutWidth, d.OutHeight); err != nil {
		return verr.Wrap(err, verr.NotSupported, "swref egress failed")
	}
	if b.log != nil {
		b.log.Debug("swref processed channel", "in", d.InFormat.String(), "out", d.OutFormat.String(),
			"inSize", [2]int{d.InWidth, d.InHeight}, "outSize", [2]int{d.OutWidth, d.OutHeight})
	}
	return nil
}
