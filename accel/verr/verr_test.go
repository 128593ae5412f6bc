package verr

import (
	"errors"
	"testing"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{InvalidArgument, "invalid argument"},
		{NeedMoreData, "need more data"},
		{EndOfStream, "end of stream"},
		{Timeout, "timeout"},
		{Code(99), "unknown"},
	}
	for _, test := range tests {
		if got := test.code.String(); got != test.want {
			t.Errorf("Code(%d).String() = %q, want %q", test.code, got, test.want)
		}
	}
}

func TestCodeNormal(t *testing.T) {
	for _, c := range []Code{NeedMoreData, EndOfStream} {
		if !c.Normal() {
			t.Errorf("%v.Normal() = false, want true", c)
		}
	}
	for _, c := range []Code{InvalidArgument, DeviceError, Error} {
		if c.Normal() {
			t.Errorf("%v.Normal() = true, want false", c)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, DeviceError, "should stay nil"); err != nil {
		t.Errorf("Wrap(nil, ...) = %v, want nil", err)
	}
}

func TestOf(t *testing.T) {
	err := New(AllocationFailure, "out of memory")
	code, ok := Of(err)
	if !ok || code != AllocationFailure {
		t.Errorf("Of(err) = (%v, %v), want (%v, true)", code, ok, AllocationFailure)
	}

	code, ok = Of(nil)
	if ok {
		t.Errorf("Of(nil) ok = true, want false")
	}

	code, ok = Of(errors.New("plain"))
	if !ok || code != Error {
		t.Errorf("Of(plain) = (%v, %v), want (%v, true)", code, ok, Error)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(Timeout, "retry 1")
	b := New(Timeout, "retry 2")
	if !errors.Is(a, b) {
		t.Error("errors.Is(a, b) = false for same Code, want true")
	}
	c := New(DeviceError, "nope")
	if errors.Is(a, c) {
		t.Error("errors.Is(a, c) = true for different Code, want false")
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("short read")
	err := Wrap(cause, DeviceError, "sync failed")
	if !errors.Is(err, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
	if !Is(err, DeviceError) {
		t.Error("Is(wrapped, DeviceError) = false, want true")
	}
}
