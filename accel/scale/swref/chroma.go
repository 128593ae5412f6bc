/*
NAME
  chroma.go

DESCRIPTION
  chroma.go implements the chroma upsample/downsample steps of spec
  §4.5 (steps 2 and 6): bringing a subsampled chroma plane up to the
  luma plane's full resolution before the polyphase scale, and back
  down again afterward to match the output format's subsampling.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package swref

import "github.com/ausocean/vvasgo/accel/frame"

// upsampleChroma brings comps[1:] up to comps[0]'s resolution ahead of
// the polyphase scale (spec §4.5 step 2). 4:2:2 sources are only
// horizontally subsampled so only the horizontal pass runs; 4:2:0
// sources are subsampled on both axes, so after the vertical pass the
// spec names explicitly, a horizontal pass also runs to reach full
// 4:4:4 before interleaving (the spec's step 2 names the vertical pass
// alone, but interleaving per-pixel samples requires matching width
// too, since NV12/I420's chroma planes are subsampled horizontally as
// well as vertically).
func upsampleChroma(format frame.Format, comps []comp) []comp {
	if len(comps) < 3 || !(format.Chroma420() || format.Chroma422()) {
		return comps
	}
	y, u, v := comps[0], comps[1], comps[2]
	if format.Chroma420() {
		u = upsampleAxis(u, y.h, false)
		v = upsampleAxis(v, y.h, false)
	}
	u = upsampleAxis(u, y.w, true)
	v = upsampleAxis(v, y.w, true)
	return []comp{y, u, v}
}

// downsampleChroma is upsampleChroma's inverse, run just before egress
// (spec §4.5 step 6), box-filtering pairs of samples back down to the
// output format's native chroma resolution.
func downsampleChroma(format frame.Format, comps []comp, outW, outH int) []comp {
	if len(comps) < 3 || !(format.Chroma420() || format.Chroma422()) {
		return comps
	}
	cw, ch := outW, outH
	if format.Chroma420() {
		ch = outH / 2
	}
	cw = outW / 2
	y, u, v := comps[0], comps[1], comps[2]
	u = downsampleTo(u, cw, ch)
	v = downsampleTo(v, cw, ch)
	return []comp{y, u, v}
}

// upsampleAxis doubles c along width (horizontal=true) or height, using
// linear interpolation between native samples and edge replication at
// the boundary, to reach target size on that axis.
func upsampleAxis(c comp, target int, horizontal bool) comp {
	native := c.w
	if !horizontal {
		native = c.h
	}
	if native >= target {
		return c
	}
	var out comp
	if horizontal {
		out = newComp(target, c.h)
	} else {
		out = newComp(c.w, target)
	}
	ratio := float64(native) / float64(target)
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			var srcPos float64
			if horizontal {
				srcPos = (float64(x)+0.5)*ratio - 0.5
			} else {
				srcPos = (float64(y)+0.5)*ratio - 0.5
			}
			lo := int(srcPos)
			frac := srcPos - float64(lo)
			if frac < 0 {
				lo--
				frac += 1
			}
			var a, b uint16
			if horizontal {
				a, b = c.at(lo, y), c.at(lo+1, y)
			} else {
				a, b = c.at(x, lo), c.at(x, lo+1)
			}
			out.data[y*out.w+x] = uint16(float64(a)*(1-frac) + float64(b)*frac + 0.5)
		}
	}
	return out
}

// downsampleTo box-filters c down to exactly w x h, averaging the
// covering source samples per output pixel.
func downsampleTo(c comp, w, h int) comp {
	if c.w == w && c.h == h {
		return c
	}
	out := newComp(w, h)
	xr := float64(c.w) / float64(w)
	yr := float64(c.h) / float64(h)
	for y := 0; y < h; y++ {
		sy0, sy1 := int(float64(y)*yr), int(float64(y+1)*yr)
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		for x := 0; x < w; x++ {
			sx0, sx1 := int(float64(x)*xr), int(float64(x+1)*xr)
			if sx1 <= sx0 {
				sx1 = sx0 + 1
			}
			var sum, n int
			for sy := sy0; sy < sy1; sy++ {
				for sx := sx0; sx < sx1; sx++ {
					sum += int(c.at(sx, sy))
					n++
				}
			}
			out.data[y*w+x] = uint16(sum / n)
		}
	}
	return out
}
