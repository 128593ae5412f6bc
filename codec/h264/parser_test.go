/*
NAME
  parser_test.go

DESCRIPTION
  parser_test.go provides testing for Parser, defined in parser.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package h264

import (
	"bytes"
	"testing"

	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/codec/h264/h264dec"
)

func TestFindStartCode(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		from    int
		wantAt  int
		wantLen int
		wantOK  bool
	}{
		{"none", []byte{0x01, 0x02, 0x03}, 0, 0, 0, false},
		{"three byte", []byte{0xaa, 0x00, 0x00, 0x01, 0xbb}, 0, 1, 3, true},
		{"four byte", []byte{0xaa, 0x00, 0x00, 0x00, 0x01, 0xbb}, 0, 1, 4, true},
		{"four byte at start", []byte{0x00, 0x00, 0x00, 0x01, 0xbb}, 0, 0, 4, true},
		{"search resumes after from", []byte{0x00, 0x00, 0x01, 0xaa, 0x00, 0x00, 0x01, 0xbb}, 3, 4, 3, true},
		{"too short", []byte{0x00, 0x00}, 0, 0, 0, false},
	}
	for _, test := range tests {
		at, length, ok := findStartCode(test.buf, test.from)
		if ok != test.wantOK || (ok && (at != test.wantAt || length != test.wantLen)) {
			t.Errorf("%s: findStartCode() = (%d, %d, %v), want (%d, %d, %v)",
				test.name, at, length, ok, test.wantAt, test.wantLen, test.wantOK)
		}
	}
}

// Byte-exact SPS (profile 66 baseline, 176x144, 4:2:0, no VUI), PPS and
// three VCL slices built field-by-field per ITU-T H.264 (04/2017) 7.3.2.1.1,
// 7.3.2.2 and 7.3.3, used to exercise GetAccessUnit's boundary detection
// end to end without an external encoder.
var (
	testSPS  = []byte{0x67, 0x42, 0x00, 0x1e, 0xae, 0x82, 0xc4, 0xe4}
	testPPS  = []byte{0x68, 0xef, 0x3c, 0x80}
	testIDR1 = []byte{0x65, 0xb8, 0x42}       // frame_num=0, idr_pic_id=0, poc_lsb=0
	testP    = []byte{0x41, 0xe2, 0x50}       // frame_num=1, poc_lsb=2
	testIDR2 = []byte{0x65, 0xb8, 0x20, 0x80} // frame_num=0, idr_pic_id=1, poc_lsb=0
)

func startCoded(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, h264dec.InitialNALU...)
		out = append(out, n...)
	}
	return out
}

func TestGetAccessUnitBoundaries(t *testing.T) {
	stream := startCoded(testSPS, testPPS, testIDR1, testP, testIDR2)

	p := NewParser(nil, nil)

	f1, cfg1, _, status1 := p.GetAccessUnit(stream, false)
	if status1 != StatusSuccess {
		t.Fatalf("call 1: status = %v, want Success", status1)
	}
	if cfg1 == nil {
		t.Fatal("call 1: expected a DecoderInputConfig on the first access unit")
	}
	if cfg1.Width != 176 || cfg1.Height != 144 {
		t.Errorf("call 1: cfg dimensions = (%d, %d), want (176, 144)", cfg1.Width, cfg1.Height)
	}
	wantAU1 := startCoded(testIDR1)
	gotAU1 := readAll(t, f1)
	if !bytes.Equal(gotAU1, wantAU1) {
		t.Errorf("call 1: access unit = % x, want % x", gotAU1, wantAU1)
	}

	f2, cfg2, _, status2 := p.GetAccessUnit(nil, true)
	if status2 != StatusSuccess {
		t.Fatalf("call 2: status = %v, want Success", status2)
	}
	if cfg2 != nil {
		t.Errorf("call 2: expected no config change, got %+v", cfg2)
	}
	wantAU2 := startCoded(testP)
	gotAU2 := readAll(t, f2)
	if !bytes.Equal(gotAU2, wantAU2) {
		t.Errorf("call 2: access unit = % x, want % x", gotAU2, wantAU2)
	}

	f3, _, _, status3 := p.GetAccessUnit(nil, true)
	if status3 != StatusEndOfStream {
		t.Fatalf("call 3: status = %v, want EndOfStream", status3)
	}
	wantAU3 := startCoded(testIDR2)
	gotAU3 := readAll(t, f3)
	if !bytes.Equal(gotAU3, wantAU3) {
		t.Errorf("call 3: access unit = % x, want % x", gotAU3, wantAU3)
	}

	f4, _, _, status4 := p.GetAccessUnit(nil, true)
	if status4 != StatusEndOfStream {
		t.Errorf("call 4: status = %v, want EndOfStream", status4)
	}
	if f4 != nil {
		t.Errorf("call 4: expected no further access unit after EndOfStream")
	}
}

// TestGetAccessUnitByteAtATime feeds the same stream as
// TestGetAccessUnitBoundaries one byte at a time and checks the same three
// access units come out, verifying fragmentation doesn't change the
// result (spec's "1-byte vs 4096-byte fragments are byte-identical").
func TestGetAccessUnitByteAtATime(t *testing.T) {
	stream := startCoded(testSPS, testPPS, testIDR1, testP, testIDR2)
	want := [][]byte{startCoded(testIDR1), startCoded(testP), startCoded(testIDR2)}

	p := NewParser(nil, nil)
	var got [][]byte
	for i := 0; i < len(stream); i++ {
		f, _, _, status := p.GetAccessUnit(stream[i:i+1], false)
		if status == StatusSuccess && f != nil {
			got = append(got, readAll(t, f))
		}
	}
	// Drain: the trailing NALU isn't known to be complete until EOS is
	// signalled, and each EOS call can still yield one more Success before
	// the final EndOfStream flush, so keep calling until EndOfStream.
	for {
		f, _, _, status := p.GetAccessUnit(nil, true)
		if f != nil {
			got = append(got, readAll(t, f))
		}
		if status == StatusEndOfStream {
			break
		}
	}

	if len(got) != len(want) {
		t.Fatalf("got %d access units, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("access unit %d = % x, want % x", i, got[i], want[i])
		}
	}
}

// readAll extracts the bytes from an access-unit frame returned by
// GetAccessUnit (an External frame.Frame wrapping a single flat plane).
func readAll(t *testing.T, f *frame.Frame) []byte {
	t.Helper()
	if f == nil {
		return nil
	}
	info, err := f.Map(frame.Read)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	return info.Planes[0]
}
