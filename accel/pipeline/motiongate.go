/*
NAME
  motiongate.go

DESCRIPTION
  motiongate.go implements MotionGate, a per-pixel background-difference
  motion detector that decides whether a decoded frame is worth scaling.
  The algorithm is filter/basic.go's: diff each pixel against a running
  background image, count pixels over a threshold, gate on a minimum
  count. Unlike filter.Basic, MotionGate reads samples straight off a
  decoded luma plane instead of requiring a JPEG-encoded []byte, since
  Pipeline's frames never pass through an image/jpeg codec.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package pipeline

import "sync"

// gateRowWorkers is the row-group fan-out for MotionGate.Check, the same
// fixed-worker-count idiom filter/basic.go's Write uses for its
// background-subtraction pass.
const gateRowWorkers = 4

// MotionGate decides whether a decoded frame's luma plane differs enough
// from a running background image to be worth scaling, exactly as
// filter.Basic decides whether to forward a frame to its encoder.
type MotionGate struct {
	thresh int
	pix    uint

	bg   []byte
	w, h int
}

// NewMotionGate returns a MotionGate that reports motion once at least
// pix luma samples differ from the background by more than thresh.
func NewMotionGate(thresh int, pix uint) *MotionGate {
	return &MotionGate{thresh: thresh, pix: pix}
}

// Check reports whether luma (w*h grayscale samples, one byte each)
// shows motion against the gate's background, then updates the
// background to luma regardless of the verdict, mirroring
// filter.Basic.Write's "background always updates" behavior. The first
// call for a given size only establishes the background and never
// reports motion, matching filter.Basic's first-frame handling.
func (g *MotionGate) Check(luma []byte, w, h int) bool {
	if g.bg == nil || g.w != w || g.h != h {
		g.bg = append([]byte(nil), luma...)
		g.w, g.h = w, h
		return false
	}

	counts := make([]uint32, gateRowWorkers)
	chunk := (h + gateRowWorkers - 1) / gateRowWorkers
	var wg sync.WaitGroup
	for worker := 0; worker < gateRowWorkers; worker++ {
		start := worker * chunk
		end := start + chunk
		if end > h {
			end = h
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			var n uint32
			for y := start; y < end; y++ {
				row := y * w
				for x := 0; x < w; x++ {
					diff := int(luma[row+x]) - int(g.bg[row+x])
					if diff < 0 {
						diff = -diff
					}
					if diff > g.thresh {
						n++
					}
				}
			}
			counts[worker] = n
		}(worker, start, end)
	}
	wg.Wait()

	var motion uint32
	for _, n := range counts {
		motion += n
	}
	copy(g.bg, luma)
	return uint(motion) >= g.pix
}
