/*
NAME
  descriptor.go

DESCRIPTION
  descriptor.go builds the per-channel Descriptor chain consumed by a
  Backend (spec §3 "Descriptor", §4.4 "Descriptor construction").

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package scale

import (
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/verr"
)

// PlaneRef is a descriptor's view onto one plane of a mapped frame: the
// host-accessible bytes for the whole plane, plus the byte offset into
// it the aligned rect begins at.
type PlaneRef struct {
	Data   []byte
	Offset int
	Stride int
}

// Descriptor is the per-channel record of spec §3 "Descriptor": plane
// references, geometry, formats, derived rates, coefficient tables, an
// optional pre-process and a link to the next channel. Descriptors form
// a singly linked list; the final one's Next is nil.
type Descriptor struct {
	SrcPlanes [3]PlaneRef
	DstPlanes [3]PlaneRef

	InWidth, InHeight   int
	OutWidth, OutHeight int
	InFormat, OutFormat frame.Format

	LineRate, PixelRate uint32

	HCoef, VCoef *CoefTable

	Pre *PreProcess

	Next *Descriptor
}

// buildDescriptor maps ch's source/destination frames and fills in a
// Descriptor for them (spec §4.4 "Descriptor construction").
func buildDescriptor(ch *channel, props Properties, hOverride, vOverride *CoefTable) (*Descriptor, error) {
	srcInfo, err := ch.src.Frame.Map(frame.Read)
	if err != nil {
		return nil, verr.Wrap(err, verr.DeviceError, "mapping source frame failed")
	}
	dstInfo, err := ch.dst.Frame.Map(frame.Write)
	if err != nil {
		return nil, verr.Wrap(err, verr.DeviceError, "mapping destination frame failed")
	}

	d := &Descriptor{
		InWidth: ch.src.Width, InHeight: ch.src.Height,
		OutWidth: ch.dst.Width, OutHeight: ch.dst.Height,
		InFormat: srcInfo.Info.Format, OutFormat: dstInfo.Info.Format,
		Pre: ch.pre,
	}

	for i, p := range srcInfo.Info.Planes {
		if i >= 3 {
			break
		}
		x, y := planeCoord(srcInfo.Info.Format, i, ch.src.X, ch.src.Y)
		d.SrcPlanes[i] = PlaneRef{Data: srcInfo.Planes[i], Offset: y*p.Stride + byteX(srcInfo.Info.Format, i, x), Stride: p.Stride}
	}
	for i, p := range dstInfo.Info.Planes {
		if i >= 3 {
			break
		}
		x, y := planeCoord(dstInfo.Info.Format, i, ch.dst.X, ch.dst.Y)
		d.DstPlanes[i] = PlaneRef{Data: dstInfo.Planes[i], Offset: y*p.Stride + byteX(dstInfo.Info.Format, i, x), Stride: p.Stride}
	}

	d.LineRate = uint32((int64(d.InHeight)*StepPrecision + int64(d.OutHeight)/2) / int64(d.OutHeight))
	d.PixelRate = uint32((int64(d.InWidth)*StepPrecision + int64(d.OutWidth)/2) / int64(d.OutWidth))

	hRatio := float64(d.InWidth) / float64(d.OutWidth)
	vRatio := float64(d.InHeight) / float64(d.OutHeight)
	d.HCoef = selectCoef(hOverride, props, hRatio)
	d.VCoef = selectCoef(vOverride, props, vRatio)

	return d, nil
}

// selectCoef returns override if set, otherwise generates or looks up a
// table per spec §4.4 "Coefficient generation" for the given direction's
// scale ratio.
func selectCoef(override *CoefTable, props Properties, ratio float64) *CoefTable {
	if override != nil {
		return override
	}
	upscale := ratio < 1
	var tab CoefTable
	if props.CoefLoadType == AutoGenerate && !upscale && props.FilterTaps <= MaxTaps {
		tab = generateCubicCoef(ratio)
	} else {
		tab, _ = selectFixedCoef(ratio, upscale)
	}
	return &tab
}

// planeCoord scales a luma-plane (x, y) down for chroma-subsampled
// planes of format.
func planeCoord(format frame.Format, plane, x, y int) (int, int) {
	if plane == 0 {
		return x, y
	}
	if format.Chroma420() {
		return x / 2, y / 2
	}
	if format.Chroma422() {
		return x / 2, y
	}
	return x, y
}

// byteX converts a pixel-column x into a byte offset within plane's
// stride, per format's bytes-per-sample.
func byteX(format frame.Format, plane, x int) int {
	if format.Packed10Bit() {
		return x / 3 * 4
	}
	switch format {
	case frame.RGB, frame.BGR, frame.V308:
		return x * 3
	case frame.RGBx, frame.BGRx, frame.RGBA, frame.BGRA, frame.R210, frame.Y410:
		return x * 4
	case frame.YUY2:
		return x * 2
	case frame.I422_10LE:
		return x * 2
	default:
		return x
	}
}
