package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// LevelTrace sits below slog's Debug, for the very verbose raw-event dumps
// RawTracer emits. slog levels are just ints, so a caller can compare
// against this when deciding whether to build a RawTracer at all.
const LevelTrace = -8

// RawTracer hex-dumps raw backend reads (evdev input_event records, HID
// reports) too noisy for the structured logger. If the destination writer
// is nil, Trace is a no-op.
type RawTracer interface {
	Trace(device string, data []byte)
}

type rawTracer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRawTracer returns a RawTracer writing hex-dumped lines to w. A nil w
// yields a tracer whose Trace calls are always no-ops.
func NewRawTracer(w io.Writer) RawTracer {
	return &rawTracer{w: w}
}

func (r *rawTracer) Trace(device string, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	const hexdigits = "0123456789abcdef"
	hex := make([]byte, 0, len(data)*3)
	for i, b := range data {
		if i > 0 {
			hex = append(hex, ' ')
		}
		hex = append(hex, hexdigits[b>>4], hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %-16s %d bytes: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"), device, len(data), hex)

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.w.Write([]byte(line))
}
