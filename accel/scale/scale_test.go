package scale

import (
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/accel/verr"
)

const testKernel = "scale-test-kernel"

type countingBackend struct {
	calls int
	chain *Descriptor
	err   error
}

func (b *countingBackend) Process(chain *Descriptor) error {
	b.calls++
	b.chain = chain
	return b.err
}

func newTestEngine(t *testing.T, backend *countingBackend) *Engine {
	t.Helper()
	name := testKernel
	if _, ok := lookupBackend(name); !ok {
		RegisterBackend(name, func(*devctx.Context, logging.Logger) (Backend, error) {
			return backend, nil
		})
	}
	e, err := Create(nil, name, devctx.LogInfo, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	e.backend = backend // swap in this test's instance even if the kernel name was already registered
	return e
}

func newHostFrame(t *testing.T, w, h int, format frame.Format) *frame.Frame {
	t.Helper()
	info, err := frame.ComputeLayout(w, h, format, frame.Alignment{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := devctx.NewHostOnly(devctx.LogInfo, nil)
	f, err := frame.Allocate(ctx, frame.HostOnly, 0, *info)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestChannelAddAlignment(t *testing.T) {
	src := newHostFrame(t, 64, 64, frame.NV12)
	dst := newHostFrame(t, 32, 32, frame.NV12)
	e := newTestEngine(t, &countingBackend{})
	e.PropSet(Properties{PixelsPerClock: 4, CoefLoadType: AutoGenerate, ScaleMode: Polyphase, FilterTaps: MaxTaps})

	tests := []struct {
		name       string
		src        Rect
		wantErr    verr.Code
		wantErrSet bool
	}{
		{name: "too small", src: Rect{Frame: src, X: 0, Y: 0, Width: 8, Height: 8}, wantErr: verr.InvalidArgument, wantErrSet: true},
		{name: "valid", src: Rect{Frame: src, X: 0, Y: 0, Width: 64, Height: 64}},
		{name: "unaligned x realigns", src: Rect{Frame: src, X: 3, Y: 0, Width: 60, Height: 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ChannelAdd(tt.src, Rect{Frame: dst, X: 0, Y: 0, Width: 32, Height: 32}, nil, Default, Left, Top)
			if tt.wantErrSet {
				if !verr.Is(err, tt.wantErr) {
					t.Fatalf("ChannelAdd() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChannelAdd() error = %v", err)
			}
		})
	}
}

func TestChannelAddXAlignsDownToPixelsPerClockBoundary(t *testing.T) {
	src := newHostFrame(t, 64, 64, frame.NV12)
	dst := newHostFrame(t, 32, 32, frame.NV12)
	e := newTestEngine(t, &countingBackend{})
	e.PropSet(Properties{PixelsPerClock: 4})

	if err := e.ChannelAdd(
		Rect{Frame: src, X: 3, Y: 0, Width: 60, Height: 64},
		Rect{Frame: dst, X: 0, Y: 0, Width: 32, Height: 32},
		nil, Default, Left, Top,
	); err != nil {
		t.Fatalf("ChannelAdd() error = %v", err)
	}
	got := e.channels[0].src
	if got.X%(8*4) != 0 {
		t.Errorf("aligned X = %d, want a multiple of 32", got.X)
	}
	if got.X+got.Width > 64 {
		t.Errorf("aligned rect x+width = %d exceeds frame width 64", got.X+got.Width)
	}
}

func TestProcessFrameClearsChannelsAndMarksSync(t *testing.T) {
	src := newHostFrame(t, 32, 32, frame.NV12)
	dst := newHostFrame(t, 16, 16, frame.NV12)
	backend := &countingBackend{}
	e := newTestEngine(t, backend)

	if err := e.ChannelAdd(
		Rect{Frame: src, X: 0, Y: 0, Width: 32, Height: 32},
		Rect{Frame: dst, X: 0, Y: 0, Width: 16, Height: 16},
		nil, Default, Left, Top,
	); err != nil {
		t.Fatalf("ChannelAdd() error = %v", err)
	}
	if len(e.channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(e.channels))
	}

	if err := e.ProcessFrame(); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend.calls = %d, want 1", backend.calls)
	}
	if len(e.channels) != 0 {
		t.Errorf("channels after ProcessFrame = %d, want 0", len(e.channels))
	}
	if dst.SyncFlags()&frame.FromDevice == 0 {
		t.Error("ProcessFrame did not mark destination frame FromDevice pending")
	}
}

func TestProcessFrameNoChannelsIsNoop(t *testing.T) {
	backend := &countingBackend{}
	e := newTestEngine(t, backend)
	if err := e.ProcessFrame(); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend.calls = %d, want 0 with no channels added", backend.calls)
	}
}

func TestProcessFrameBackendErrorPropagates(t *testing.T) {
	src := newHostFrame(t, 32, 32, frame.NV12)
	dst := newHostFrame(t, 16, 16, frame.NV12)
	backend := &countingBackend{err: verr.New(verr.DeviceError, "boom")}
	e := newTestEngine(t, backend)
	if err := e.ChannelAdd(
		Rect{Frame: src, X: 0, Y: 0, Width: 32, Height: 32},
		Rect{Frame: dst, X: 0, Y: 0, Width: 16, Height: 16},
		nil, Default, Left, Top,
	); err != nil {
		t.Fatal(err)
	}
	if err := e.ProcessFrame(); !verr.Is(err, verr.DeviceError) {
		t.Errorf("ProcessFrame() error = %v, want DeviceError", err)
	}
	if len(e.channels) != 0 {
		t.Error("ProcessFrame did not clear channels on backend failure")
	}
}

func TestCreateUnknownKernelFails(t *testing.T) {
	_, err := Create(nil, "no-such-kernel", devctx.LogInfo, nil)
	if !verr.Is(err, verr.NotSupported) {
		t.Errorf("err = %v, want NotSupported", err)
	}
}

func TestCoefTableRowsSumToStepPrecision(t *testing.T) {
	for _, ratio := range []float64{1, 1.25, 1.75, 2.25, 2.75, 3.25, 4} {
		tab := generateCubicCoef(ratio)
		for p := 0; p < Phases; p++ {
			var sum int32
			for _, c := range tab[p] {
				sum += c
			}
			if sum != StepPrecision {
				t.Errorf("ratio %v phase %d: row sum = %d, want %d", ratio, p, sum, StepPrecision)
			}
		}
	}
}

func TestSelectFixedCoefBuckets(t *testing.T) {
	tests := []struct {
		ratio    float64
		upscale  bool
		wantTaps int
	}{
		{ratio: 0.5, upscale: true, wantTaps: 6},
		{ratio: 1.2, wantTaps: 6},
		{ratio: 1.6, wantTaps: 6},
		{ratio: 2.1, wantTaps: 8},
		{ratio: 2.6, wantTaps: 8},
		{ratio: 3.1, wantTaps: 10},
		{ratio: 4.0, wantTaps: 12},
	}
	for _, tt := range tests {
		_, taps := selectFixedCoef(tt.ratio, tt.upscale)
		if taps != tt.wantTaps {
			t.Errorf("selectFixedCoef(%v, %v) taps = %d, want %d", tt.ratio, tt.upscale, taps, tt.wantTaps)
		}
	}
}

func TestLetterboxPreservesAspectAndCenters(t *testing.T) {
	dst := newHostFrame(t, 64, 64, frame.NV12)
	srcRect := Rect{Width: 16, Height: 9} // 16:9 source into a 64x64 bounding box
	got := letterbox(srcRect, Rect{Frame: dst, Width: 64, Height: 64}, HCenter, VCenter)
	if got.Width != 64 {
		t.Errorf("letterbox width = %d, want 64", got.Width)
	}
	wantHeight := 36 // 64 * 9/16
	if got.Height != wantHeight {
		t.Errorf("letterbox height = %d, want %d", got.Height, wantHeight)
	}
	if got.Y != (64-wantHeight)/2 {
		t.Errorf("letterbox Y = %d, want vertically centered", got.Y)
	}
}

func TestEnvelopeCropMatchesDestinationAspect(t *testing.T) {
	srcFrame := newHostFrame(t, 64, 64, frame.NV12)
	src := Rect{Frame: srcFrame, X: 0, Y: 0, Width: 64, Height: 64}
	dst := Rect{Width: 16, Height: 9}
	got := envelopeCrop(src, dst)
	if got.Height != 36 {
		t.Errorf("cropped height = %d, want 36", got.Height)
	}
	if got.Width != 64 {
		t.Errorf("cropped width = %d, want 64", got.Width)
	}
	if got.Y != (64-36)/2 {
		t.Errorf("cropped Y = %d, want centered", got.Y)
	}
}
