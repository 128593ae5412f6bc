/*
NAME
  colorconvert.go

DESCRIPTION
  colorconvert.go implements the color-space conversion of spec §4.5
  step 5 (YUV<->RGB via fixed-point BT.601-style matrices at the
  format's native bit depth, plus RGB<->BGR channel reordering) and the
  optional per-channel pre-process of step 7.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package swref

import (
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/scale"
)

// matShift fixes the precision of the integer color matrices below;
// coefficients are pre-scaled by 1<<matShift.
const matShift = 12

func bitDepth(format frame.Format) int {
	if format.Packed10Bit() || format == frame.I422_10LE {
		return 10
	}
	return 8
}

// isBGROrder reports whether format stores its three color channels in
// B, G, R order rather than R, G, B.
func isBGROrder(format frame.Format) bool {
	switch format {
	case frame.BGR, frame.BGRx, frame.BGRA:
		return true
	default:
		return false
	}
}

func isYUVFamily(format frame.Format) bool {
	switch format {
	case frame.RGB, frame.BGR, frame.RGBx, frame.BGRx, frame.RGBA, frame.BGRA, frame.V308:
		return false
	default:
		return true
	}
}

// convertColorSpace converts comps from inFormat's color space/channel
// order to outFormat's (spec §4.5 step 5). Pass-through (aside from a
// possible RGB<->BGR reorder) when both are the same family.
func convertColorSpace(inFormat, outFormat frame.Format, comps []comp) []comp {
	inYUV, outYUV := isYUVFamily(inFormat), isYUVFamily(outFormat)
	switch {
	case inYUV && !outYUV:
		rgb := yuvToRGB(comps, bitDepth(inFormat))
		if isBGROrder(outFormat) {
			rgb[0], rgb[2] = rgb[2], rgb[0]
		}
		return rgb
	case !inYUV && outYUV:
		ordered := comps
		if isBGROrder(inFormat) {
			ordered = []comp{comps[2], comps[1], comps[0]}
		}
		return rgbToYUV(ordered, bitDepth(outFormat))
	case !inYUV && !outYUV:
		if isBGROrder(inFormat) != isBGROrder(outFormat) {
			out := append([]comp{}, comps...)
			out[0], out[2] = out[2], out[0]
			return out
		}
		return comps
	default:
		return comps
	}
}

// yuvToRGB converts Y/Cb/Cr planes at depth bits to R/G/B using a
// BT.601-style matrix, returning channels in R, G, B order.
func yuvToRGB(comps []comp, depth int) []comp {
	y, cb, cr := comps[0], comps[1], comps[2]
	mid := int32(1) << uint(depth-1)
	maxVal := int32(1)<<uint(depth) - 1

	r, g, b := newComp(y.w, y.h), newComp(y.w, y.h), newComp(y.w, y.h)
	for i := range y.data {
		yy := int32(y.data[i])
		cbv := int32(cb.data[i]) - mid
		crv := int32(cr.data[i]) - mid

		r.data[i] = clampSample(yy+((5743*crv)>>matShift), maxVal)
		g.data[i] = clampSample(yy-((1410*cbv)>>matShift)-((2925*crv)>>matShift), maxVal)
		b.data[i] = clampSample(yy+((7258*cbv)>>matShift), maxVal)
	}
	return []comp{r, g, b}
}

// rgbToYUV is yuvToRGB's inverse, producing Y/Cb/Cr at depth bits.
func rgbToYUV(comps []comp, depth int) []comp {
	r, g, b := comps[0], comps[1], comps[2]
	mid := int32(1) << uint(depth-1)
	maxVal := int32(1)<<uint(depth) - 1

	y, cb, cr := newComp(r.w, r.h), newComp(r.w, r.h), newComp(r.w, r.h)
	for i := range r.data {
		rr, gg, bb := int32(r.data[i]), int32(g.data[i]), int32(b.data[i])

		y.data[i] = clampSample((1225*rr+2404*gg+467*bb)>>matShift, maxVal)
		cb.data[i] = clampSample(mid+((-691*rr-1357*gg+2048*bb)>>matShift), maxVal)
		cr.data[i] = clampSample(mid+((2048*rr-1715*gg-333*bb)>>matShift), maxVal)
	}
	return []comp{y, cb, cr}
}

func clampSample(v, maxVal int32) uint16 {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return uint16(maxVal)
	}
	return uint16(v)
}

// preProcess applies spec §4.5 step 7's optional per-channel affine
// transform, out = (sample - alpha) * scale, to an RGB/BGR triple. scale is
// applied as the fixed-point beta = scale * 2^16, and the product is shifted
// right by 16.
func preProcess(pre *scale.PreProcess, comps []comp) {
	if pre == nil || len(comps) < 3 {
		return
	}
	for ch := 0; ch < 3; ch++ {
		c := comps[ch]
		alpha := pre.Alpha[ch]
		beta := int64(pre.Scale[ch] * 65536)
		for i, v := range c.data {
			out := (int64(int32(v)-alpha) * beta) >> 16
			c.data[i] = clampSample(int32(out), 255)
		}
	}
}
