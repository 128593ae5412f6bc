/*
NAME
  pixel.go

DESCRIPTION
  pixel.go implements ingest (spec §4.5 step 1) and egress (step 8):
  decoding a Descriptor's plane bytes into channel-separated sample
  planes, and packing them back, including NV12_10LE32/GRAY10_LE32's
  3-samples-per-4-bytes unpacking.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package swref

import (
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/scale"
	"github.com/ausocean/vvasgo/accel/verr"
)

// comp is one channel's sample plane at its own (possibly
// chroma-subsampled) resolution, widened to uint16 regardless of
// source bit depth.
type comp struct {
	w, h int
	data []uint16
}

func newComp(w, h int) comp { return comp{w: w, h: h, data: make([]uint16, w*h)} }

func (c comp) at(x, y int) uint16 {
	x = clampInt(x, 0, c.w-1)
	y = clampInt(y, 0, c.h-1)
	return c.data[y*c.w+x]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// unpack10 decodes n 10-bit little-endian samples packed 3-per-4-bytes
// (the *_10LE32 convention) starting at row's byte 0.
func unpack10(row []byte, n int) []uint16 {
	out := make([]uint16, n)
	for i := 0; i < n; i += 3 {
		if (i/3)*4+4 > len(row) {
			break
		}
		w := uint32(row[i/3*4]) | uint32(row[i/3*4+1])<<8 | uint32(row[i/3*4+2])<<16 | uint32(row[i/3*4+3])<<24
		for k := 0; k < 3 && i+k < n; k++ {
			out[i+k] = uint16((w >> uint(10*k)) & 0x3ff)
		}
	}
	return out
}

// pack10 is unpack10's inverse.
func pack10(samples []uint16, row []byte) {
	for i := 0; i < len(samples); i += 3 {
		var w uint32
		for k := 0; k < 3 && i+k < len(samples); k++ {
			w |= uint32(samples[i+k]&0x3ff) << uint(10*k)
		}
		off := i / 3 * 4
		if off+4 > len(row) {
			break
		}
		row[off] = byte(w)
		row[off+1] = byte(w >> 8)
		row[off+2] = byte(w >> 16)
		row[off+3] = byte(w >> 24)
	}
}

// decodeComponents ingests a descriptor plane set into channel-separated
// sample planes (spec §4.5 step 1). The returned order is Y/Cb/Cr for
// YUV-family formats or R/G/B[/A] for RGB-family formats; yuv reports
// which.
func decodeComponents(format frame.Format, planes [3]scale.PlaneRef, w, h int) (comps []comp, yuv bool, err error) {
	switch format {
	case frame.NV12:
		y := newComp(w, h)
		copyPlane8(planes[0], y)
		cw, ch := w/2, h/2
		u, v := newComp(cw, ch), newComp(cw, ch)
		deinterleave8(planes[1], u, v, cw, ch)
		return []comp{y, u, v}, true, nil

	case frame.I420:
		y := newComp(w, h)
		copyPlane8(planes[0], y)
		cw, ch := w/2, h/2
		u, v := newComp(cw, ch), newComp(cw, ch)
		copyPlane8(planes[1], u)
		copyPlane8(planes[2], v)
		return []comp{y, u, v}, true, nil

	case frame.NV12_10LE32:
		y := newComp(w, h)
		for row := 0; row < h; row++ {
			start := planes[0].Offset + row*planes[0].Stride
			copy(y.data[row*w:(row+1)*w], unpack10(planes[0].Data[start:], w))
		}
		cw, ch := w/2, h/2
		u, v := newComp(cw, ch), newComp(cw, ch)
		for row := 0; row < ch; row++ {
			start := planes[1].Offset + row*planes[1].Stride
			samples := unpack10(planes[1].Data[start:], cw*2)
			for col := 0; col < cw; col++ {
				u.data[row*cw+col] = samples[col*2]
				v.data[row*cw+col] = samples[col*2+1]
			}
		}
		return []comp{y, u, v}, true, nil

	case frame.NV16:
		y := newComp(w, h)
		copyPlane8(planes[0], y)
		cw := w / 2
		u, v := newComp(cw, h), newComp(cw, h)
		deinterleave8(planes[1], u, v, cw, h)
		return []comp{y, u, v}, true, nil

	case frame.YUY2:
		y := newComp(w, h)
		cw := w / 2
		u, v := newComp(cw, h), newComp(cw, h)
		for row := 0; row < h; row++ {
			base := planes[0].Offset + row*planes[0].Stride
			for col := 0; col < cw; col++ {
				off := base + col*4
				if off+4 > len(planes[0].Data) {
					break
				}
				y.data[row*w+col*2] = uint16(planes[0].Data[off])
				u.data[row*cw+col] = uint16(planes[0].Data[off+1])
				y.data[row*w+col*2+1] = uint16(planes[0].Data[off+2])
				v.data[row*cw+col] = uint16(planes[0].Data[off+3])
			}
		}
		return []comp{y, u, v}, true, nil

	case frame.I422_10LE:
		y := newComp(w, h)
		copyPlane16(planes[0], y)
		cw := w / 2
		u, v := newComp(cw, h), newComp(cw, h)
		copyPlane16(planes[1], u)
		copyPlane16(planes[2], v)
		return []comp{y, u, v}, true, nil

	case frame.GRAY8:
		y := newComp(w, h)
		copyPlane8(planes[0], y)
		return []comp{y}, true, nil

	case frame.GRAY10_LE32:
		y := newComp(w, h)
		for row := 0; row < h; row++ {
			start := planes[0].Offset + row*planes[0].Stride
			copy(y.data[row*w:(row+1)*w], unpack10(planes[0].Data[start:], w))
		}
		return []comp{y}, true, nil

	case frame.RGB, frame.BGR, frame.V308:
		return decodeInterleavedN(planes[0], w, h, 3), false, nil

	case frame.RGBx, frame.BGRx, frame.RGBA, frame.BGRA:
		return decodeInterleavedN(planes[0], w, h, 4), false, nil

	default:
		return nil, false, verr.Newf(verr.NotSupported, "swref: ingest not implemented for format %v", format)
	}
}

func copyPlane8(p scale.PlaneRef, c comp) {
	for row := 0; row < c.h; row++ {
		src := p.Offset + row*p.Stride
		if src+c.w > len(p.Data) {
			return
		}
		for col := 0; col < c.w; col++ {
			c.data[row*c.w+col] = uint16(p.Data[src+col])
		}
	}
}

func copyPlane16(p scale.PlaneRef, c comp) {
	for row := 0; row < c.h; row++ {
		src := p.Offset + row*p.Stride
		for col := 0; col < c.w; col++ {
			off := src + col*2
			if off+2 > len(p.Data) {
				return
			}
			c.data[row*c.w+col] = uint16(p.Data[off]) | uint16(p.Data[off+1])<<8
		}
	}
}

// deinterleave8 splits an 8-bit interleaved two-channel plane (NV12/NV16
// style UV) into separate u, v sample planes.
func deinterleave8(p scale.PlaneRef, u, v comp, cw, ch int) {
	for row := 0; row < ch; row++ {
		src := p.Offset + row*p.Stride
		for col := 0; col < cw; col++ {
			off := src + col*2
			if off+2 > len(p.Data) {
				return
			}
			u.data[row*cw+col] = uint16(p.Data[off])
			v.data[row*cw+col] = uint16(p.Data[off+1])
		}
	}
}

func decodeInterleavedN(p scale.PlaneRef, w, h, n int) []comp {
	comps := make([]comp, n)
	for i := range comps {
		comps[i] = newComp(w, h)
	}
	for row := 0; row < h; row++ {
		src := p.Offset + row*p.Stride
		for col := 0; col < w; col++ {
			off := src + col*n
			if off+n > len(p.Data) {
				return comps
			}
			for ch := 0; ch < n; ch++ {
				comps[ch].data[row*w+col] = uint16(p.Data[off+ch])
			}
		}
	}
	return comps
}

// encodeComponents is decodeComponents' inverse: packs full-resolution
// (post chroma-downsample) channel planes back into a descriptor's
// destination plane bytes (spec §4.5 step 8 "Egress").
func encodeComponents(format frame.Format, comps []comp, planes [3]scale.PlaneRef, w, h int) error {
	switch format {
	case frame.NV12:
		writePlane8(planes[0], comps[0])
		writeInterleaved8(planes[1], comps[1], comps[2])
		return nil
	case frame.I420:
		writePlane8(planes[0], comps[0])
		writePlane8(planes[1], comps[1])
		writePlane8(planes[2], comps[2])
		return nil
	case frame.NV12_10LE32:
		for row := 0; row < h; row++ {
			start := planes[0].Offset + row*planes[0].Stride
			pack10(comps[0].data[row*w:(row+1)*w], planes[0].Data[start:])
		}
		cw, ch := comps[1].w, comps[1].h
		for row := 0; row < ch; row++ {
			interleaved := make([]uint16, cw*2)
			for col := 0; col < cw; col++ {
				interleaved[col*2] = comps[1].data[row*cw+col]
				interleaved[col*2+1] = comps[2].data[row*cw+col]
			}
			start := planes[1].Offset + row*planes[1].Stride
			pack10(interleaved, planes[1].Data[start:])
		}
		return nil
	case frame.NV16:
		writePlane8(planes[0], comps[0])
		writeInterleaved8(planes[1], comps[1], comps[2])
		return nil
	case frame.YUY2:
		cw := comps[1].w
		for row := 0; row < h; row++ {
			base := planes[0].Offset + row*planes[0].Stride
			for col := 0; col < cw; col++ {
				off := base + col*4
				if off+4 > len(planes[0].Data) {
					break
				}
				planes[0].Data[off] = byte(comps[0].data[row*w+col*2])
				planes[0].Data[off+1] = byte(comps[1].data[row*cw+col])
				planes[0].Data[off+2] = byte(comps[0].data[row*w+col*2+1])
				planes[0].Data[off+3] = byte(comps[2].data[row*cw+col])
			}
		}
		return nil
	case frame.I422_10LE:
		writePlane16(planes[0], comps[0])
		writePlane16(planes[1], comps[1])
		writePlane16(planes[2], comps[2])
		return nil
	case frame.GRAY8:
		writePlane8(planes[0], comps[0])
		return nil
	case frame.GRAY10_LE32:
		for row := 0; row < h; row++ {
			start := planes[0].Offset + row*planes[0].Stride
			pack10(comps[0].data[row*w:(row+1)*w], planes[0].Data[start:])
		}
		return nil
	case frame.RGB, frame.BGR, frame.V308:
		writeInterleavedN(planes[0], comps, w, h, 3)
		return nil
	case frame.RGBx, frame.BGRx, frame.RGBA, frame.BGRA:
		writeInterleavedN(planes[0], comps, w, h, 4)
		return nil
	default:
		return verr.Newf(verr.NotSupported, "swref: egress not implemented for format %v", format)
	}
}

func writePlane8(p scale.PlaneRef, c comp) {
	for row := 0; row < c.h; row++ {
		dst := p.Offset + row*p.Stride
		if dst+c.w > len(p.Data) {
			return
		}
		for col := 0; col < c.w; col++ {
			p.Data[dst+col] = clampByte(c.data[row*c.w+col])
		}
	}
}

func writePlane16(p scale.PlaneRef, c comp) {
	for row := 0; row < c.h; row++ {
		dst := p.Offset + row*p.Stride
		for col := 0; col < c.w; col++ {
			off := dst + col*2
			if off+2 > len(p.Data) {
				return
			}
			v := c.data[row*c.w+col]
			p.Data[off] = byte(v)
			p.Data[off+1] = byte(v >> 8)
		}
	}
}

func writeInterleaved8(p scale.PlaneRef, u, v comp) {
	for row := 0; row < u.h; row++ {
		dst := p.Offset + row*p.Stride
		for col := 0; col < u.w; col++ {
			off := dst + col*2
			if off+2 > len(p.Data) {
				return
			}
			p.Data[off] = clampByte(u.data[row*u.w+col])
			p.Data[off+1] = clampByte(v.data[row*u.w+col])
		}
	}
}

func writeInterleavedN(p scale.PlaneRef, comps []comp, w, h, n int) {
	for row := 0; row < h; row++ {
		dst := p.Offset + row*p.Stride
		for col := 0; col < w; col++ {
			off := dst + col*n
			if off+n > len(p.Data) {
				return
			}
			for ch := 0; ch < n && ch < len(comps); ch++ {
				p.Data[off+ch] = clampByte(comps[ch].data[row*w+col])
			}
		}
	}
}

func clampByte(v uint16) byte {
	if v > 255 {
		return 255
	}
	return byte(v)
}
