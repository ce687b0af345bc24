package evdev

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/Alia5/crossput"
	crossputlog "github.com/Alia5/crossput/internal/log"
)

// tracer receives a hex dump of every raw input_event batch read from the
// kernel, when set. Off by default; see SetRawTracer.
var tracer crossputlog.RawTracer = crossputlog.NewRawTracer(nil)

// SetRawTracer installs t as the destination for raw input_event dumps
// (LevelTrace in the ambient logging scheme). Pass nil to disable tracing.
func SetRawTracer(t crossputlog.RawTracer) {
	if t == nil {
		t = crossputlog.NewRawTracer(nil)
	}
	tracer = t
}

// poller drains raw input_event structs from an open evdev handle and
// translates them into crossput.RawEvent, oldest first. It accumulates the
// backend's own running (x,y,sx,sy) counters since evdev reports relative
// motion as deltas, not the cumulative counters crossput.RawEvent expects
// (spec §4.4 "Mouse HandleReading").
type poller struct {
	h *devHandle
}

// OpenPoller returns the event stream for a handle obtained from Open.
func (p *Provider) OpenPoller(h crossput.Handle) (crossput.Poller, error) {
	hd, ok := h.(*devHandle)
	if !ok {
		return nil, fmt.Errorf("evdev: not an evdev handle")
	}
	return &poller{h: hd}, nil
}

// Poll reads whatever whole input_event records are currently available and
// translates them. sinceTimestamp is accepted for interface compliance but
// unused: evdev has no seek-by-timestamp primitive, so the pipeline relies
// on Poll being called frequently enough that nothing is skipped; a kernel
// SYN_DROPPED notifies us when that assumption breaks.
func (p *poller) Poll(sinceTimestamp uint64) ([]crossput.RawEvent, error) {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()

	if p.h.closed {
		return nil, fmt.Errorf("evdev: handle closed: %w", crossput.ErrProviderFatal)
	}

	buf := make([]byte, inputEventSize*64)
	n, err := p.h.file.Read(buf)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("evdev: read: %w: %v", crossput.ErrProviderFatal, err)
	}
	buf = buf[:n-n%inputEventSize]
	tracer.Trace(p.h.file.Name(), buf)

	var out []crossput.RawEvent
	for off := 0; off+inputEventSize <= len(buf); off += inputEventSize {
		ev := decodeInputEvent(buf[off : off+inputEventSize])
		ts := uint64(ev.Sec)*1_000_000 + uint64(ev.Usec)
		if ts == 0 {
			ts = uint64(time.Now().UnixMicro())
		}

		switch ev.Type {
		case evSyn:
			if ev.Code == synDropped {
				return append(out, crossput.RawEvent{Timestamp: ts, Kind: crossput.EventOverrun}), nil
			}
		case evRel:
			out = append(out, p.h.translateRel(ev, ts)...)
		case evKey:
			out = append(out, p.h.translateKey(ev, ts)...)
		case evAbs:
			out = append(out, p.h.translateAbs(ev, ts)...)
		}
		p.h.lastEventTime = ts
	}
	return out, nil
}

const synDropped = 0x03

func decodeInputEvent(b []byte) inputEvent {
	return inputEvent{
		Sec:   int64(binary.LittleEndian.Uint64(b[0:8])),
		Usec:  int64(binary.LittleEndian.Uint64(b[8:16])),
		Type:  binary.LittleEndian.Uint16(b[16:18]),
		Code:  binary.LittleEndian.Uint16(b[18:20]),
		Value: int32(binary.LittleEndian.Uint32(b[20:24])),
	}
}

// translateRel folds a relative mouse axis into the handle's running
// cumulative counters and emits a move/scroll event carrying the new
// cumulative position, per spec §4.4 (the pipeline derives its own delta
// from two consecutive cumulative readings).
func (h *devHandle) translateRel(ev inputEvent, ts uint64) []crossput.RawEvent {
	switch ev.Code {
	case relX:
		h.cumX += int64(ev.Value)
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseMove, X: h.cumX, Y: h.cumY}}
	case relY:
		h.cumY += int64(ev.Value)
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseMove, X: h.cumX, Y: h.cumY}}
	case relWheelHiRes:
		h.cumSY += int64(ev.Value)
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseScroll, X: h.cumSX, Y: h.cumSY}}
	case relHWheelHiRes:
		h.cumSX += int64(ev.Value)
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseScroll, X: h.cumSX, Y: h.cumSY}}
	case relWheel:
		if h.hasHiResWheel {
			return nil // the hi-res variant already carried this tick
		}
		// Low-resolution wheel: scale by 120 to match high-resolution
		// providers (spec §6 "Units"; flagged as an open question to
		// confirm before changing, so the multiplier is preserved literally).
		h.cumSY += int64(ev.Value) * 120
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseScroll, X: h.cumSX, Y: h.cumSY}}
	case relHWheel:
		if h.hasHiResWheel {
			return nil
		}
		h.cumSX += int64(ev.Value) * 120
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseScroll, X: h.cumSX, Y: h.cumSY}}
	}
	return nil
}

func (h *devHandle) translateKey(ev inputEvent, ts uint64) []crossput.RawEvent {
	value := float32(0)
	if ev.Value != 0 {
		value = 1
	}
	if idx, ok := mouseButtonIndex(ev.Code); ok {
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventMouseButton, Button: idx, Value: value}}
	}
	if b, ok := ButtonFromRaw(ev.Code); ok {
		if h.dpadIsHat && isDpadButton(ev.Code) {
			// The hat already reports this direction as an analog axis;
			// don't double-update from the redundant digital code (spec
			// §4.4, "analog presence suppresses duplicate digital updates").
			return nil
		}
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: b, Value: value}}
	}
	if k, ok := KeyFromRaw(ev.Code); ok {
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventKeyboardKey, Key: k, Value: value}}
	}
	return nil
}

func isDpadButton(code uint16) bool {
	switch code {
	case btnDpadUp, btnDpadDown, btnDpadLeft, btnDpadRight:
		return true
	default:
		return false
	}
}

// translateAbs handles thumbstick axes and the hat-reported D-pad. Stick 0
// is ABS_X/ABS_Y, stick 1 is ABS_RX/ABS_RY; ABS_Z/ABS_RZ carry the analog
// trigger axes on the common xpad-style layout.
func (h *devHandle) translateAbs(ev inputEvent, ts uint64) []crossput.RawEvent {
	norm, ok := h.absNorms[ev.Code]
	if !ok {
		return nil
	}
	v := norm.normalize(ev.Value)

	switch ev.Code {
	case absX:
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadThumbstick, Stick: 0, StickX: v, StickXValid: true}}
	case absY:
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadThumbstick, Stick: 0, StickY: v, StickYValid: true}}
	case absRX:
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadThumbstick, Stick: 1, StickX: v, StickXValid: true}}
	case absRY:
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadThumbstick, Stick: 1, StickY: v, StickYValid: true}}
	case absZ:
		// A trigger reported 0..max already normalizes to [0,1]; a trigger
		// with a signed range is split like a stick and is remapped to [0,1].
		analog := v
		if norm.min < 0 {
			analog = (v + 1) / 2
		}
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonL2, Value: clampF32(analog, 0, 1)}}
	case absRZ:
		analog := v
		if norm.min < 0 {
			analog = (v + 1) / 2
		}
		return []crossput.RawEvent{{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonR2, Value: clampF32(analog, 0, 1)}}
	case absHat0X:
		h.dpadIsHat = true
		right := float32(0)
		left := float32(0)
		if v > 0 {
			right = v
		} else {
			left = -v
		}
		return []crossput.RawEvent{
			{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonDpadRight, Value: right},
			{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonDpadLeft, Value: left},
		}
	case absHat0Y:
		h.dpadIsHat = true
		down := float32(0)
		up := float32(0)
		if v > 0 {
			down = v
		} else {
			up = -v
		}
		return []crossput.RawEvent{
			{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonDpadDown, Value: down},
			{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonDpadUp, Value: up},
		}
	}
	return nil
}
