/*
NAME
  rect.go

DESCRIPTION
  rect.go implements Rect (spec §3 "Scaler channel") and the channel-add
  validation/alignment rules and scale_type geometry of spec §4.4.

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

// Rect is a source/destination rect: a frame reference plus a pixel
// region within it (spec §3 "Scaler channel").
type Rect struct {
	Frame         *frame.Frame
	X, Y          int
	Width, Height int
}

// ScaleType is the geometry-adjustment mode applied by ChannelAdd (spec
// §4.4 "Apply the scale_type parameter").
type ScaleType int8

const (
	Default ScaleType = iota
	Letterbox
	EnvelopeCropped
)

// HAlign/VAlign position a letterboxed destination rect within its full
// frame.
type HAlign int8

const (
	Left HAlign = iota
	HCenter
	Right
)

type VAlign int8

const (
	Top VAlign = iota
	VCenter
	Bottom
)

// PreProcess carries the optional per-channel affine pre-process applied
// by the software reference to RGB/BGR outputs: out = (sample - Alpha) *
// Scale (spec §4.4 "Descriptor construction": "beta = scale · 2^16",
// §4.5 step 7). Alpha/Scale are per-channel, in the channel order of the
// output format (BGR channels are in reversed order per spec §4.5).
type PreProcess struct {
	Alpha [3]int32
	Scale [3]float64
}

// alignRect applies spec §4.4's channel-add alignment rules 2-5 to a
// source rect, given the engine's pixels_per_clock.
func alignRect(r Rect, ppc int) (Rect, error) {
	info := r.Frame.GetVideoInfo()

	if r.Width < 16 || r.Height < 16 {
		return Rect{}, verr.New(verr.InvalidArgument, "source rect must be at least 16x16")
	}
	if ppc <= 0 {
		ppc = 1
	}

	x, width := r.X, r.Width
	if info.Format.Packed10Bit() {
		// Convert x to a byte boundary, align to 8*ppc bytes, then convert
		// back to pixels, adjusting width by however many pixels the
		// alignment shifted x left by (spec §4.4 rule 3).
		byteX := x / 3 * 4
		alignedByteX := byteX &^ (8*ppc - 1)
		shiftBytes := byteX - alignedByteX
		shiftPixels := shiftBytes / 4 * 3
		x = alignedByteX / 4 * 3
		width += shiftPixels
		width = alignUpInt(width, ppc)
	} else {
		alignedX := x &^ (8*ppc - 1)
		width += x - alignedX
		x = alignedX
		width = alignUpInt(width, ppc)
	}

	y, height := r.Y, r.Height
	if info.Format.Chroma420() || info.Format.Chroma422() {
		y &^= 1
		height = alignUpInt(height, 2)
	}

	if x+width > info.Width {
		return Rect{}, verr.Newf(verr.InvalidArgument, "aligned rect x+width (%d) exceeds frame width %d", x+width, info.Width)
	}
	if y+height > info.Height {
		return Rect{}, verr.Newf(verr.InvalidArgument, "aligned rect y+height (%d) exceeds frame height %d", y+height, info.Height)
	}

	return Rect{Frame: r.Frame, X: x, Y: y, Width: width, Height: height}, nil
}

func alignUpInt(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// letterbox shrinks dst's width or height to preserve src's aspect
// ratio, then positions the result within dst's full frame per hAlign/
// vAlign (spec §4.4 rule 6 "Letterbox").
func letterbox(src, dst Rect, hAlign HAlign, vAlign VAlign) Rect {
	full := dst.Frame.GetVideoInfo()
	maxW, maxH := full.Width, full.Height
	if dst.Width > 0 && dst.Width < maxW {
		maxW = dst.Width
	}
	if dst.Height > 0 && dst.Height < maxH {
		maxH = dst.Height
	}

	srcAspect := float64(src.Width) / float64(src.Height)
	w, h := maxW, int(float64(maxW)/srcAspect+0.5)
	if h > maxH {
		h = maxH
		w = int(float64(maxH)*srcAspect + 0.5)
	}

	x := 0
	switch hAlign {
	case HCenter:
		x = (maxW - w) / 2
	case Right:
		x = maxW - w
	}
	y := 0
	switch vAlign {
	case VCenter:
		y = (maxH - h) / 2
	case Bottom:
		y = maxH - h
	}

	return Rect{Frame: dst.Frame, X: x, Y: y, Width: w, Height: h}
}

// envelopeCrop center-crops src to dst's aspect ratio (spec §4.4 rule 6
// "EnvelopeCropped": "center-crop source to the destination aspect, then
// scale"). The crop is derived from src and dst alone: no smallest-side
// pre-scale factor is taken or applied, and dst is left unchanged.
func envelopeCrop(src, dst Rect) Rect {
	if dst.Width <= 0 || dst.Height <= 0 {
		return src
	}
	dstAspect := float64(dst.Width) / float64(dst.Height)
	srcAspect := float64(src.Width) / float64(src.Height)

	w, h := src.Width, src.Height
	if srcAspect > dstAspect {
		w = int(float64(h) * dstAspect)
	} else if srcAspect < dstAspect {
		h = int(float64(w) / dstAspect)
	}

	x := src.X + (src.Width-w)/2
	y := src.Y + (src.Height-h)/2
	return Rect{Frame: src.Frame, X: x, Y: y, Width: w, Height: h}
}
