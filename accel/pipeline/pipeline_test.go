package pipeline

import (
	"bytes"
	"testing"

	"github.com/ausocean/vvasgo/accel/frame"
	_ "github.com/ausocean/vvasgo/accel/scale/swref"
	"github.com/ausocean/vvasgo/codec/h264/h264dec"
)

// Byte-exact SPS (profile 66 baseline, 176x144), PPS and three VCL
// slices, the same fixture codec/h264's own parser tests use to drive
// GetAccessUnit's boundary detection without an external encoder.
var (
	testSPS  = []byte{0x67, 0x42, 0x00, 0x1e, 0xae, 0x82, 0xc4, 0xe4}
	testPPS  = []byte{0x68, 0xef, 0x3c, 0x80}
	testIDR1 = []byte{0x65, 0xb8, 0x42}
	testP    = []byte{0x41, 0xe2, 0x50}
	testIDR2 = []byte{0x65, 0xb8, 0x20, 0x80}
)

func startCoded(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, h264dec.InitialNALU...)
		out = append(out, n...)
	}
	return out
}

// TestRunScalesOneFramePerAccessUnit is spec §8 end-to-end scenario 1:
// parse a stream, feed its access units to a stub decoder returning NV12
// 1920x1080 frames, scale each to 512x288 BGR, and check exactly one
// output frame arrives per access unit. SPS+PPS+IDR1 fold into one
// access unit (SPS/PPS aren't slices), so five NALUs yield three.
func TestRunScalesOneFramePerAccessUnit(t *testing.T) {
	stream := startCoded(testSPS, testPPS, testIDR1, testP, testIDR2)

	decoder := StubDecoder{Width: 1920, Height: 1080, Format: frame.NV12, Fill: 16}
	p, err := New(nil, nil, decoder, Config{
		OutWidth: 512, OutHeight: 288, OutFormat: frame.BGR, KernelName: "swref",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var got []*frame.Frame
	if err := p.Run(bytes.NewReader(stream), func(dst *frame.Frame) error {
		got = append(got, dst)
		return nil
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("output frame count = %d, want 3", len(got))
	}
	for i, f := range got {
		info := f.GetVideoInfo()
		if info.Width != 512 || info.Height != 288 {
			t.Errorf("frame %d size = %dx%d, want 512x288", i, info.Width, info.Height)
		}
		if info.Format != frame.BGR {
			t.Errorf("frame %d format = %v, want BGR", i, info.Format)
		}
	}
}

func TestRunSuppressesFramesWithoutMotion(t *testing.T) {
	stream := startCoded(testSPS, testPPS, testIDR1, testP, testIDR2)

	// A constant-fill decoder never differs from its own background, so
	// every access unit after the first looks motion-free.
	decoder := StubDecoder{Width: 64, Height: 64, Format: frame.NV12, Fill: 16}
	p, err := New(nil, nil, decoder, Config{
		OutWidth: 32, OutHeight: 32, OutFormat: frame.NV12, KernelName: "swref",
		Gate: NewMotionGate(10, 1),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var got []*frame.Frame
	if err := p.Run(bytes.NewReader(stream), func(dst *frame.Frame) error {
		got = append(got, dst)
		return nil
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("output frame count = %d, want 0 (no motion in a constant-fill stream)", len(got))
	}
}
