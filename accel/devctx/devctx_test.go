package devctx

import (
	"errors"
	"testing"

	"github.com/ausocean/vvasgo/accel/verr"
)

// testLogger adapts *testing.T to logging.Logger, mirroring the teacher's
// own testLogger helper so test output rides along with go test -v.
type testLogger struct{ t *testing.T }

func (l testLogger) SetLevel(int8)                                 {}
func (l testLogger) Log(level int8, msg string, params ...interface{}) { l.t.Log(msg, params) }
func (l testLogger) Debug(msg string, params ...interface{})       { l.t.Log("debug:", msg, params) }
func (l testLogger) Info(msg string, params ...interface{})        { l.t.Log("info:", msg, params) }
func (l testLogger) Warning(msg string, params ...interface{})     { l.t.Log("warning:", msg, params) }
func (l testLogger) Error(msg string, params ...interface{})       { l.t.Log("error:", msg, params) }
func (l testLogger) Fatal(msg string, params ...interface{})       { l.t.Fatal(msg, params) }

type fakeHandle struct{ closed bool }

func (h *fakeHandle) Close() error { h.closed = true; return nil }

func TestNewHostOnly(t *testing.T) {
	c, err := New(nil, HostOnly, "", LogInfo, testLogger{t})
	if err != nil {
		t.Fatalf("New(host-only) error = %v", err)
	}
	if c.HasDevice() {
		t.Error("HasDevice() = true for host-only context, want false")
	}
	if c.DeviceIndex() != HostOnly {
		t.Errorf("DeviceIndex() = %d, want %d", c.DeviceIndex(), HostOnly)
	}
}

func TestNewDevice(t *testing.T) {
	h := &fakeHandle{}
	open := func(idx int, path string) (Handle, error) {
		if idx != 2 || path != "kernel.xclbin" {
			t.Errorf("open called with (%d, %q)", idx, path)
		}
		return h, nil
	}
	c, err := New(open, 2, "kernel.xclbin", LogDebug, testLogger{t})
	if err != nil {
		t.Fatalf("New(device) error = %v", err)
	}
	if !c.HasDevice() {
		t.Error("HasDevice() = false for device context, want true")
	}
	if err := c.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if !h.closed {
		t.Error("Destroy() did not close the underlying handle")
	}
}

func TestNewMismatchedArgsIsInvalidArgument(t *testing.T) {
	tests := []struct {
		name  string
		index int
		path  string
	}{
		{"index without path", 0, ""},
		{"path without index", HostOnly, "kernel.xclbin"},
	}
	for _, test := range tests {
		_, err := New(nil, test.index, test.path, LogInfo, nil)
		if !verr.Is(err, verr.InvalidArgument) {
			t.Errorf("%s: err = %v, want InvalidArgument", test.name, err)
		}
	}
}

func TestNewDeviceNoOpener(t *testing.T) {
	_, err := New(nil, 0, "kernel.xclbin", LogInfo, nil)
	if !verr.Is(err, verr.DeviceError) {
		t.Errorf("err = %v, want DeviceError", err)
	}
}

func TestNewDeviceOpenFailure(t *testing.T) {
	open := func(int, string) (Handle, error) { return nil, errors.New("no such device") }
	_, err := New(open, 0, "kernel.xclbin", LogInfo, nil)
	if !verr.Is(err, verr.DeviceError) {
		t.Errorf("err = %v, want DeviceError", err)
	}
}

func TestDestroyNilContextIsNoop(t *testing.T) {
	var c *Context
	if err := c.Destroy(); err != nil {
		t.Errorf("Destroy() on nil context = %v, want nil", err)
	}
}
