package h264dec

import "github.com/ausocean/utils/logging"

// printfLogger adapts a logging.Logger to the Printf-style calls used
// throughout this package's parse routines (each call carries its own
// "debug:"/"info:"/"error:" prefix, matching the rest of this codebase's
// convention of baking the level into the message rather than the call site).
type printfLogger struct{ l logging.Logger }

func (p printfLogger) Printf(format string, args ...interface{}) {
	if p.l == nil {
		return
	}
	p.l.Debug(format, args...)
}

// logger is package-scoped because the parse routines in this package
// (NewSPS, NewPPS, NewNALUnit, ParseSliceHeaderPrefix, ...) are free
// functions rather than methods on a struct that could hold one. SetLogger lets a
// caller (codec/h264.Parser) route this package's debug output through its
// own injected logging.Logger instead of discarding it.
var logger printfLogger

// SetLogger installs l as the destination for this package's internal debug
// logging. Passing nil discards log output, which is also the default.
func SetLogger(l logging.Logger) { logger = printfLogger{l: l} }
