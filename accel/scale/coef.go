/*
NAME
  coef.go

DESCRIPTION
  coef.go implements the coefficient generation and fixed-table
  selection of spec §4.4 "Coefficient generation": a 64-phase x 12-tap
  cardinal cubic spline (B=0, C=0.6) generator for AutoGenerate, and a
  scale-ratio-bucketed fixed-table fallback.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package scale

import "math"

// Phases and MaxTaps fix the coefficient table's shape (spec §4.4 "64
// phases x 12 taps"); StepPrecision is the fixed-point normalization
// target each phase's row must sum to.
const (
	Phases        = 64
	MaxTaps       = 12
	StepPrecision = 4096
)

// CoefTable is a 64-phase x 12-tap fixed-point filter coefficient set.
// Taps beyond a table's nominal filter_size are zero.
type CoefTable [Phases][MaxTaps]int32

// cubicWeight evaluates the Mitchell-Netravali cardinal cubic family at
// distance x for parameters b, c (spec §4.4 "cardinal-cubic-spline
// coefficients (B=0, C=0.6)").
func cubicWeight(x, b, c float64) float64 {
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
	case x < 2:
		return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	default:
		return 0
	}
}

// generateCubicCoef builds a coefficient table for a downscale ratio
// (source_size/dest_size; 1.0 means no scaling), quantizing each phase's
// row to sum to exactly StepPrecision by absorbing rounding error into
// the row's largest-magnitude coefficient (spec §4.4 "rounding errors
// are absorbed into the maximum coefficient").
func generateCubicCoef(ratio float64) CoefTable {
	scale := ratio
	if scale < 1 {
		scale = 1
	}
	const half = float64(MaxTaps) / 2

	var tab CoefTable
	for p := 0; p < Phases; p++ {
		frac := float64(p) / float64(Phases)

		var weights [MaxTaps]float64
		var sum float64
		for i := 0; i < MaxTaps; i++ {
			dist := (float64(i) - half + 1 - frac) / scale
			weights[i] = cubicWeight(dist, 0, 0.6)
			sum += weights[i]
		}
		if sum == 0 {
			sum = 1
		}

		var quant [MaxTaps]int32
		var qsum int32
		maxIdx := 0
		for i, w := range weights {
			quant[i] = int32(math.Round(w / sum * StepPrecision))
			qsum += quant[i]
			if abs32(quant[i]) > abs32(quant[maxIdx]) {
				maxIdx = i
			}
		}
		quant[maxIdx] += StepPrecision - qsum
		tab[p] = quant
	}
	return tab
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

// selectFixedCoef picks a fixed coefficient table by scale ratio and
// direction (spec §4.4 "Otherwise select from a fixed table..."). The
// vendor ROM tables this bucketing names (SR13/SR15/SR2/SR25/etc.)
// aren't reproduced here — they're binary fixed-point constants specific
// to a hardware IP core and weren't present anywhere in the source
// material this module was grown from. Each bucket is instead
// approximated by generateCubicCoef evaluated at the bucket's
// representative ratio and truncated to that bucket's tap count, which
// keeps the fixed-table code path exercised and spec-shaped without
// inventing unverifiable vendor constants.
func selectFixedCoef(ratio float64, upscale bool) (CoefTable, int) {
	switch {
	case upscale:
		return truncateTaps(generateCubicCoef(1), 6), 6
	case ratio < 1.5:
		return truncateTaps(generateCubicCoef(1.25), 6), 6 // SR13 bucket
	case ratio < 2:
		return truncateTaps(generateCubicCoef(1.75), 6), 6 // SR15 bucket
	case ratio < 2.5:
		return truncateTaps(generateCubicCoef(2.25), 8), 8 // SR2 bucket
	case ratio < 3:
		return truncateTaps(generateCubicCoef(2.75), 8), 8 // SR25 bucket
	case ratio < 3.5:
		return truncateTaps(generateCubicCoef(3.25), 10), 10
	default:
		return generateCubicCoef(ratio), 12
	}
}

// truncateTaps zeroes taps beyond n and renormalizes each row back to
// StepPrecision so a narrower fixed table still sums correctly.
func truncateTaps(tab CoefTable, n int) CoefTable {
	if n >= MaxTaps {
		return tab
	}
	var out CoefTable
	for p := 0; p < Phases; p++ {
		var sum int32
		for i := 0; i < n; i++ {
			out[p][i] = tab[p][i]
			sum += tab[p][i]
		}
		if sum != StepPrecision {
			out[p][n/2] += StepPrecision - sum
		}
	}
	return out
}
