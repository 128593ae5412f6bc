package swref

import (
	"testing"

	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/scale"
)

// nv12Buffers builds a minimal w x h NV12 plane pair: luma sample i is
// i*16 (mod 256), chroma fixed at 128 (neutral, mid-gray in both U and V).
func nv12Buffers(w, h int) (y, uv []byte) {
	y = make([]byte, w*h)
	for i := range y {
		y[i] = byte(i * 16 % 256)
	}
	uv = make([]byte, w*h/2)
	for i := range uv {
		uv[i] = 128
	}
	return y, uv
}

func TestProcessIdentityNV12RoundTrip(t *testing.T) {
	const w, h = 4, 4
	y, uv := nv12Buffers(w, h)
	outY := make([]byte, len(y))
	outUV := make([]byte, len(uv))
	copy(outY, y)
	copy(outUV, uv)

	d := &scale.Descriptor{
		SrcPlanes: [3]scale.PlaneRef{{Data: y, Stride: w}, {Data: uv, Stride: w}},
		DstPlanes: [3]scale.PlaneRef{{Data: outY, Stride: w}, {Data: outUV, Stride: w}},
		InWidth:   w, InHeight: h, OutWidth: w, OutHeight: h,
		InFormat: frame.NV12, OutFormat: frame.NV12,
	}

	b := New(nil)
	if err := b.Process(d); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for i := range y {
		if outY[i] != y[i] {
			t.Errorf("luma[%d] = %d, want %d (identity pass)", i, outY[i], y[i])
		}
	}
}

func TestProcessChainVisitsEveryDescriptor(t *testing.T) {
	const w, h = 4, 4
	y1, uv1 := nv12Buffers(w, h)
	y2, uv2 := nv12Buffers(w, h)
	outY1, outUV1 := make([]byte, len(y1)), make([]byte, len(uv1))
	outY2, outUV2 := make([]byte, len(y2)), make([]byte, len(uv2))

	d2 := &scale.Descriptor{
		SrcPlanes: [3]scale.PlaneRef{{Data: y2, Stride: w}, {Data: uv2, Stride: w}},
		DstPlanes: [3]scale.PlaneRef{{Data: outY2, Stride: w}, {Data: outUV2, Stride: w}},
		InWidth:   w, InHeight: h, OutWidth: w, OutHeight: h,
		InFormat: frame.NV12, OutFormat: frame.NV12,
	}
	d1 := &scale.Descriptor{
		SrcPlanes: [3]scale.PlaneRef{{Data: y1, Stride: w}, {Data: uv1, Stride: w}},
		DstPlanes: [3]scale.PlaneRef{{Data: outY1, Stride: w}, {Data: outUV1, Stride: w}},
		InWidth:   w, InHeight: h, OutWidth: w, OutHeight: h,
		InFormat: frame.NV12, OutFormat: frame.NV12,
		Next: d2,
	}

	b := New(nil)
	if err := b.Process(d1); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for i := range y1 {
		if outY1[i] != y1[i] || outY2[i] != y2[i] {
			t.Fatalf("chained descriptor %d not processed", i)
		}
	}
}

func TestYUVToRGBToYUVRoundTripNeutralChroma(t *testing.T) {
	y := newComp(4, 1)
	cb := newComp(4, 1)
	cr := newComp(4, 1)
	for i := range y.data {
		y.data[i] = uint16(i * 60)
		cb.data[i] = 128
		cr.data[i] = 128
	}
	rgb := yuvToRGB([]comp{y, cb, cr}, 8)
	back := rgbToYUV(rgb, 8)
	for i := range y.data {
		if diff := int(back[0].data[i]) - int(y.data[i]); diff < -2 || diff > 2 {
			t.Errorf("Y round-trip at %d: got %d, want ~%d", i, back[0].data[i], y.data[i])
		}
	}
}

func TestBGRChannelSwapIsInvolution(t *testing.T) {
	comps := []comp{newComp(2, 2), newComp(2, 2), newComp(2, 2)}
	for i := range comps[0].data {
		comps[0].data[i], comps[1].data[i], comps[2].data[i] = 10, 20, 30
	}
	swapped := convertColorSpace(frame.RGB, frame.BGR, comps)
	if swapped[0].data[0] != 30 || swapped[2].data[0] != 10 {
		t.Errorf("RGB->BGR did not swap R/B channels: got r=%d b=%d", swapped[0].data[0], swapped[2].data[0])
	}
	back := convertColorSpace(frame.BGR, frame.RGB, swapped)
	if back[0].data[0] != 10 || back[2].data[0] != 30 {
		t.Errorf("BGR->RGB did not restore original order: got r=%d b=%d", back[0].data[0], back[2].data[0])
	}
}

func TestPreProcessAffine(t *testing.T) {
	comps := []comp{newComp(1, 1), newComp(1, 1), newComp(1, 1)}
	comps[0].data[0] = 100
	comps[1].data[0] = 100
	comps[2].data[0] = 100
	pre := &scale.PreProcess{Alpha: [3]int32{10, 10, 10}, Scale: [3]float64{2, 2, 2}}
	preProcess(pre, comps)
	want := uint16(180) // (100-10)*2
	if comps[0].data[0] != want {
		t.Errorf("preProcess channel0 = %d, want %d", comps[0].data[0], want)
	}
}

func TestChromaUpDownSampleRoundTripNV12(t *testing.T) {
	y := newComp(8, 8)
	u := newComp(4, 4)
	v := newComp(4, 4)
	for i := range u.data {
		u.data[i] = uint16(50 + i)
		v.data[i] = uint16(80 + i)
	}
	up := upsampleChroma(frame.NV12, []comp{y, u, v})
	if up[1].w != 8 || up[1].h != 8 {
		t.Fatalf("upsampled chroma size = %dx%d, want 8x8", up[1].w, up[1].h)
	}
	down := downsampleChroma(frame.NV12, up, 8, 8)
	if down[1].w != 4 || down[1].h != 4 {
		t.Fatalf("downsampled chroma size = %dx%d, want 4x4", down[1].w, down[1].h)
	}
}

func TestUnpack10Pack10RoundTrip(t *testing.T) {
	samples := []uint16{0, 1, 1023, 512, 7, 900}
	row := make([]byte, 8)
	pack10(samples, row)
	got := unpack10(row, len(samples))
	for i, want := range samples {
		if got[i] != want {
			t.Errorf("sample %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestDecodeComponentsRejectsUnsupportedFormat(t *testing.T) {
	_, _, err := decodeComponents(frame.R210, [3]scale.PlaneRef{}, 4, 4)
	if err == nil {
		t.Error("decodeComponents(R210) err = nil, want NotSupported")
	}
}
