package h264dec

import "github.com/pkg/errors"

// cropUnits returns the (cropUnitX, cropUnitY) pair from table 6-1 used to
// convert frame_crop_*_offset values into samples, keyed by chroma format.
func cropUnits(sps *SPS) (x, y uint64) {
	if sps.SeparateColorPlaneFlag || sps.ChromaFormatIDC == 0 {
		// Monochrome or separate color planes.
		y = 2
		if sps.FrameMBSOnlyFlag {
			y = 1
		}
		return 1, y
	}
	var subWidthC, subHeightC uint64
	switch sps.ChromaFormatIDC {
	case 1: // 4:2:0
		subWidthC, subHeightC = 2, 2
	case 2: // 4:2:2
		subWidthC, subHeightC = 2, 1
	case 3: // 4:4:4
		subWidthC, subHeightC = 1, 1
	}
	frameMbsOnlyMul := uint64(2)
	if sps.FrameMBSOnlyFlag {
		frameMbsOnlyMul = 1
	}
	return subWidthC, subHeightC * frameMbsOnlyMul
}

// Dimensions returns the cropped output width and height in samples
// derived from this SPS, per equations 7-13/7-14/7-16/7-17/7-20/7-21.
func (sps *SPS) Dimensions() (width, height int) {
	picWidthInMbs := sps.PicWidthInMBSMinus1 + 1
	frameHeightInMbs := (2 - boolToUint64(sps.FrameMBSOnlyFlag)) * (sps.PicHeightInMapUnitsMinus1 + 1)

	width = int(picWidthInMbs * 16)
	height = int(frameHeightInMbs * 16)

	if !sps.FrameCroppingFlag {
		return width, height
	}

	cropX, cropY := cropUnits(sps)
	width -= int(cropX * (sps.FrameCropLeftOffset + sps.FrameCropRightOffset))
	height -= int(cropY * (sps.FrameCropTopOffset + sps.FrameCropBottomOffset))
	return width, height
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// gcd returns the greatest common divisor of a and b.
func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// FrameRate returns the frame rate numerator and clock ratio denominator
// derived from VUI timing info, per spec §4.3 "SPS derivation":
// frame_rate = time_scale, clock_ratio = num_units_in_tick * 2, reduced
// by their GCD. Returns an error if VUI timing info isn't present or
// clock_ratio would be zero.
func (sps *SPS) FrameRate() (numerator, denominator uint32, err error) {
	if sps.VUIParameters == nil || !sps.VUIParameters.TimingInfoPresentFlag {
		return 0, 0, errors.New("SPS has no VUI timing info")
	}
	num := sps.VUIParameters.TimeScale
	den := sps.VUIParameters.NumUnitsInTick * 2
	if den == 0 {
		return 0, 0, errors.New("clock_ratio is zero")
	}
	d := uint32(gcd(uint64(num), uint64(den)))
	if d == 0 {
		return num, den, nil
	}
	return num / d, den / d, nil
}
