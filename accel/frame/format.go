/*
NAME
  format.go

DESCRIPTION
  format.go defines the closed Format enum (spec §3 "Video format") and
  the plane-layout algorithm (spec §4.2) that derives per-plane
  stride/elevation/offset/size from width, height, format and an
  Alignment record.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

// Package frame implements the Memory & Video-Frame object model: the
// single-buffer owner, with format-aware plane layout, host<->device
// synchronization and the External/HostOnly/ContiguousDevice allocation
// kinds (spec §3, §4.2).
package frame

import "github.com/ausocean/vvasgo/accel/verr"

// Format is the closed enum of pixel formats this frame model supports.
type Format int8

const (
	Unknown Format = iota
	NV12           // Y_UV8_420
	I420
	NV12_10LE32
	NV16
	YUY2
	RGB
	BGR
	RGBx
	BGRx
	RGBA
	BGRA
	GRAY8
	GRAY10_LE32
	I422_10LE
	V308
	R210
	Y410
)

// String names the format for logging/debugging.
func (f Format) String() string {
	switch f {
	case NV12:
		return "NV12"
	case I420:
		return "I420"
	case NV12_10LE32:
		return "NV12_10LE32"
	case NV16:
		return "NV16"
	case YUY2:
		return "YUY2"
	case RGB:
		return "RGB"
	case BGR:
		return "BGR"
	case RGBx:
		return "RGBx"
	case BGRx:
		return "BGRx"
	case RGBA:
		return "RGBA"
	case BGRA:
		return "BGRA"
	case GRAY8:
		return "GRAY8"
	case GRAY10_LE32:
		return "GRAY10_LE32"
	case I422_10LE:
		return "I422_10LE"
	case V308:
		return "v308"
	case R210:
		return "r210"
	case Y410:
		return "Y410"
	default:
		return "Unknown"
	}
}

// Chroma420 reports whether f is a 4:2:0 chroma-subsampled format.
func (f Format) Chroma420() bool {
	switch f {
	case NV12, I420, NV12_10LE32:
		return true
	default:
		return false
	}
}

// Chroma422 reports whether f is a 4:2:2 chroma-subsampled format.
func (f Format) Chroma422() bool {
	switch f {
	case NV16, YUY2, I422_10LE:
		return true
	default:
		return false
	}
}

// Packed10Bit reports whether f packs 10-bit samples into 32-bit words
// requiring byte-boundary (not pixel-boundary) alignment (spec §4.4 item 3).
func (f Format) Packed10Bit() bool {
	return f == NV12_10LE32 || f == GRAY10_LE32
}

// roundup2 rounds n up to the nearest multiple of 2.
func roundup2(n int) int { return (n + 1) &^ 1 }

// roundup4 rounds n up to the nearest multiple of 4.
func roundup4(n int) int { return (n + 3) &^ 3 }

// Alignment records padding and per-plane stride alignment (spec §3
// "Video info" alignment record).
type Alignment struct {
	PadLeft, PadRight, PadTop, PadBottom int
	// StrideAlign holds a power-of-two alignment mask target per plane
	// (e.g. 256 means stride must be a multiple of 256); zero means no
	// constraint beyond the format's own rounding.
	StrideAlign [3]int
}

// Plane describes one plane of a Video Frame's buffer (spec §3 "Plane
// descriptor").
type Plane struct {
	Stride    int // bytes per row
	Elevation int // rows
	Offset    int // bytes from frame start
	Size      int // bytes
}

// VideoInfo is the format-aware description of a Video Frame's layout
// (spec §3 "Video info").
type VideoInfo struct {
	Width, Height int
	Format        Format
	Align         Alignment
	Planes        []Plane
	// TotalSize is the sum of all plane sizes.
	TotalSize int
}

// alignUp rounds n up to the next multiple of align, treating align <= 0
// as "no constraint".
func alignUp(n, align int) int {
	if align <= 0 {
		return n
	}
	return ((n + align - 1) / align) * align
}

// planeStrides computes the unaligned (pre-stride_align) plane strides
// and elevations for format at the given padded dimensions, per the
// table in spec §4.2.
func planeStrides(format Format, paddedW, paddedH int) (planes []Plane, err error) {
	switch format {
	case NV12:
		s0 := roundup4(paddedW)
		return []Plane{
			{Stride: s0, Elevation: roundup2(paddedH)},
			{Stride: s0, Elevation: roundup2(paddedH) / 2},
		}, nil
	case I420:
		s0 := roundup4(paddedW)
		e0 := roundup2(paddedH)
		s1 := roundup4(roundup2(paddedW) / 2)
		return []Plane{
			{Stride: s0, Elevation: e0},
			{Stride: s1, Elevation: e0 / 2},
			{Stride: s1, Elevation: e0 / 2},
		}, nil
	case RGBx, BGRx, RGBA, BGRA, R210, Y410:
		return []Plane{{Stride: paddedW * 4, Elevation: paddedH}}, nil
	case YUY2:
		return []Plane{{Stride: roundup4(paddedW * 2), Elevation: paddedH}}, nil
	case NV16:
		s0 := roundup4(paddedW)
		return []Plane{
			{Stride: s0, Elevation: paddedH},
			{Stride: s0, Elevation: paddedH},
		}, nil
	case RGB, BGR, V308:
		return []Plane{{Stride: roundup4(paddedW * 3), Elevation: paddedH}}, nil
	case I422_10LE:
		s0 := roundup4(paddedW * 2)
		e0 := roundup2(paddedH)
		s1 := roundup4(paddedW)
		return []Plane{
			{Stride: s0, Elevation: e0},
			{Stride: s1, Elevation: e0},
			{Stride: s1, Elevation: e0},
		}, nil
	case NV12_10LE32:
		s0 := ((paddedW + 2) / 3) * 4
		return []Plane{
			{Stride: s0, Elevation: roundup2(paddedH)},
			{Stride: s0, Elevation: roundup2(paddedH) / 2},
		}, nil
	case GRAY8:
		return []Plane{{Stride: roundup4(paddedW), Elevation: paddedH}}, nil
	case GRAY10_LE32:
		s0 := ((paddedW + 2) / 3) * 4
		return []Plane{{Stride: s0, Elevation: roundup2(paddedH)}}, nil
	default:
		return nil, verr.Newf(verr.InvalidArgument, "unsupported format %v", format)
	}
}

// ComputeLayout derives the per-plane layout for width x height pixels
// at format with the given alignment, implementing spec §4.2's
// plane-layout algorithm including the iterative stride_align doubling
// of right padding.
func ComputeLayout(width, height int, format Format, align Alignment) (*VideoInfo, error) {
	if width <= 0 || height <= 0 {
		return nil, verr.New(verr.InvalidArgument, "width and height must be positive")
	}

	// Iteratively grow right padding until every plane's stride
	// satisfies its stride_align mask (spec §4.2).
	for {
		paddedW := width + align.PadLeft + align.PadRight
		paddedH := height + align.PadTop + align.PadBottom

		planes, err := planeStrides(format, paddedW, paddedH)
		if err != nil {
			return nil, err
		}

		aligned := true
		for i := range planes {
			want := alignUp(planes[i].Stride, align.StrideAlign[i])
			if want != planes[i].Stride {
				aligned = false
				break
			}
		}
		if aligned {
			offset := 0
			for i := range planes {
				planes[i].Size = planes[i].Stride * planes[i].Elevation
				planes[i].Offset = offset
				offset += planes[i].Size
			}
			return &VideoInfo{
				Width: width, Height: height, Format: format, Align: align,
				Planes: planes, TotalSize: offset,
			}, nil
		}
		if align.PadRight == 0 {
			align.PadRight = 1
		} else {
			align.PadRight *= 2
		}
	}
}
