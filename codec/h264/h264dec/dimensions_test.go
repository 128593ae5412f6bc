package h264dec

import "testing"

func TestDimensionsNoCropping(t *testing.T) {
	sps := &SPS{
		ChromaFormatIDC:           1,
		PicWidthInMBSMinus1:       119,
		PicHeightInMapUnitsMinus1: 67,
		FrameMBSOnlyFlag:          true,
	}
	w, h := sps.Dimensions()
	if w != 1920 || h != 1088 {
		t.Errorf("Dimensions() = (%d, %d), want (1920, 1088)", w, h)
	}
}

func TestDimensionsWithCropping(t *testing.T) {
	sps := &SPS{
		ChromaFormatIDC:           1,
		PicWidthInMBSMinus1:       119,
		PicHeightInMapUnitsMinus1: 67,
		FrameMBSOnlyFlag:          true,
		FrameCroppingFlag:         true,
		FrameCropBottomOffset:     4,
	}
	w, h := sps.Dimensions()
	if w != 1920 || h != 1080 {
		t.Errorf("Dimensions() = (%d, %d), want (1920, 1080)", w, h)
	}
}

func TestFrameRateReduced(t *testing.T) {
	sps := &SPS{
		VUIParameters: &VUIParameters{
			TimingInfoPresentFlag: true,
			TimeScale:             60000,
			NumUnitsInTick:        1001,
		},
	}
	num, den, err := sps.FrameRate()
	if err != nil {
		t.Fatalf("FrameRate() error = %v", err)
	}
	// time_scale=60000, clock_ratio = 1001*2=2002, gcd(60000,2002)=2.
	if num != 30000 || den != 1001 {
		t.Errorf("FrameRate() = (%d, %d), want (30000, 1001)", num, den)
	}
}

func TestFrameRateNoVUI(t *testing.T) {
	sps := &SPS{}
	if _, _, err := sps.FrameRate(); err == nil {
		t.Error("FrameRate() with no VUI error = nil, want error")
	}
}
