/*
NAME
  polyphase.go

DESCRIPTION
  polyphase.go implements the separable polyphase resize of spec §4.5
  step 4: vertical pass then horizontal pass, each a 12-tap filter with
  a 32-bit accumulator normalized by StepPrecision (4096, a 12-bit
  shift), reading source samples with edge-clamped indices.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package swref

import (
	"sync"

	"github.com/ausocean/vvasgo/accel/scale"
)

const tapCenter = scale.MaxTaps/2 - 1

// rowWorkers is the row-group fan-out for resizeAxis's per-line filter
// pass, the same fixed-worker-count idiom filter/basic.go uses for its
// background-subtraction pass.
const rowWorkers = 4

// polyphaseScale resizes every channel in comps from its own native
// size to (outW, outH), vertically then horizontally (spec §4.5 step
// 4 "Polyphase scale").
func polyphaseScale(comps []comp, outW, outH int, hCoef, vCoef *scale.CoefTable) []comp {
	out := make([]comp, len(comps))
	for i, c := range comps {
		v := resizeAxis(c, c.w, outH, vCoef, false)
		out[i] = resizeAxis(v, outW, outH, hCoef, true)
	}
	return out
}

// resizeAxis filters c to (w, h) along one axis; the other axis's size
// is passed through unchanged from c.
func resizeAxis(c comp, w, h int, coef *scale.CoefTable, horizontal bool) comp {
	inSize, outSize := c.h, h
	if horizontal {
		inSize, outSize = c.w, w
	}
	if inSize == outSize && coef == nil {
		return c
	}
	rate := uint32((int64(inSize)*scale.StepPrecision + int64(outSize)/2) / int64(outSize))

	out := newComp(w, h)
	others := c.h
	if horizontal {
		others = c.w
	}

	// Split the fixed axis (rows for a horizontal pass, columns for a
	// vertical one) across a small fixed pool of goroutines, the same
	// row-group fan-out filter/basic.go's Write uses for its
	// background-subtraction pass.
	var wg sync.WaitGroup
	chunk := (others + rowWorkers - 1) / rowWorkers
	for start := 0; start < others; start += chunk {
		end := start + chunk
		if end > others {
			end = others
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for other := start; other < end; other++ {
				for o := 0; o < outSize; o++ {
					pos := int64(o) * int64(rate)
					whole := int(pos >> 12)
					frac := int(pos & 0xfff)
					phase := frac * scale.Phases / scale.StepPrecision

					var taps *[scale.MaxTaps]int32
					if coef != nil {
						taps = &coef[phase]
					}

					if horizontal {
						out.data[other*w+o] = filterTaps(c, whole, other, taps, true)
					} else {
						out.data[o*out.w+other] = filterTaps(c, other, whole, taps, false)
					}
				}
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// filterTaps evaluates the 12-tap filter (or nearest-sample if taps is
// nil) centered at (fixedAxis, other) along the varying axis.
func filterTaps(c comp, fixedAxis, other int, taps *[scale.MaxTaps]int32, horizontal bool) uint16 {
	if taps == nil {
		if horizontal {
			return c.at(fixedAxis, other)
		}
		return c.at(other, fixedAxis)
	}
	var acc int32
	for i := 0; i < scale.MaxTaps; i++ {
		idx := fixedAxis + i - tapCenter
		var s uint16
		if horizontal {
			s = c.at(idx, other)
		} else {
			s = c.at(other, idx)
		}
		acc += taps[i] * int32(s)
	}
	acc >>= 12
	if acc < 0 {
		acc = 0
	}
	if acc > 0xffff {
		acc = 0xffff
	}
	return uint16(acc)
}
