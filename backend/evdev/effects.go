package evdev

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Alia5/crossput"
	"golang.org/x/sys/unix"
)

// Force-effect type and waveform tags from linux/input.h. ff_effect's
// union member is selected by the type tag written at offset 0.
const (
	ffRumble   = 0x50
	ffPeriodic = 0x51
	ffConstant = 0x52
	ffSpring   = 0x53
	ffFriction = 0x54
	ffDamper   = 0x55
	ffInertia  = 0x56
	ffRamp     = 0x57

	ffSquare  = 0x58
	ffTriangle = 0x59
	ffSine    = 0x5a
	ffSawUp   = 0x5b
	ffSawDown = 0x5c
)

// ffEffectSize matches sizeof(struct ff_effect) on the LP64 ABI: a 14-byte
// header (type/id/direction/trigger/replay) followed by the largest union
// member (ff_periodic_effect, padded to pointer alignment for custom_data).
const ffEffectSize = 48

func ffTypeFor(t crossput.ForceType) uint16 {
	switch {
	case t == crossput.ForceRumble:
		return ffRumble
	case t == crossput.ForceConstant:
		return ffConstant
	case t == crossput.ForceRamp:
		return ffRamp
	case t == crossput.ForceSpring:
		return ffSpring
	case t == crossput.ForceFriction:
		return ffFriction
	case t == crossput.ForceDamper:
		return ffDamper
	case t == crossput.ForceInertia:
		return ffInertia
	case crossput.IsPeriodicForceType(t):
		return ffPeriodic
	default:
		return 0
	}
}

func waveformFor(t crossput.ForceType) uint16 {
	switch t {
	case crossput.ForceSquare:
		return ffSquare
	case crossput.ForceTriangle:
		return ffTriangle
	case crossput.ForceSawUp:
		return ffSawUp
	case crossput.ForceSawDown:
		return ffSawDown
	default:
		return ffSine
	}
}

// ffEffectHandle is the crossput.EffectHandle for an uploaded ff_effect.
// The kernel identifies uploaded effects by a signed 16-bit id returned
// from EVIOCSFF; id is -1 until the first successful upload.
type ffEffectHandle struct {
	id     int16
	motor  int
	typ    crossput.ForceType
	active bool
}

// normalizedEnvelope scales the three envelope segments down proportionally
// if their sum exceeds crossput.MaxEnvelopeTime, per spec §4.6.
func normalizedEnvelope(e crossput.ForceEnvelope) crossput.ForceEnvelope {
	total := e.AttackTime + e.SustainTime + e.ReleaseTime
	if total <= crossput.MaxEnvelopeTime || total == 0 {
		return e
	}
	scale := crossput.MaxEnvelopeTime / total
	e.AttackTime *= scale
	e.SustainTime *= scale
	e.ReleaseTime *= scale
	return e
}

func millis(seconds float32) uint16 {
	v := int64(math.Round(float64(seconds) * 1000))
	if v < 0 {
		v = 0
	}
	if v > math.MaxUint16 {
		v = math.MaxUint16
	}
	return uint16(v)
}

func scaleS16(v float32) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * math.MaxInt16)
}

func scaleU16(v float32) uint16 {
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return uint16(v * math.MaxUint16)
}

// encodeEffect serializes p into the ff_effect wire layout for motor, reusing
// id (the kernel's existing slot id, or -1 for a first upload).
func encodeEffect(id int16, motor int, p crossput.ForceParams) []byte {
	buf := make([]byte, ffEffectSize)
	le := binary.LittleEndian
	le.PutUint16(buf[0:2], ffTypeFor(p.Type))
	le.PutUint16(buf[2:4], uint16(id))
	le.PutUint16(buf[4:6], 0) // direction: omnidirectional
	le.PutUint16(buf[6:8], 0) // trigger.button
	le.PutUint16(buf[8:10], 0) // trigger.interval
	le.PutUint16(buf[10:12], 0) // replay.length: 0 plays until stopped
	le.PutUint16(buf[12:14], 0) // replay.delay

	const u = 16 // union offset: the 14-byte header padded to pointer alignment
	switch {
	case p.Type == crossput.ForceRumble:
		le.PutUint16(buf[u:u+2], scaleU16(p.Rumble.LowFrequency))    // strong_magnitude
		le.PutUint16(buf[u+2:u+4], scaleU16(p.Rumble.HighFrequency)) // weak_magnitude
	case p.Type == crossput.ForceConstant:
		env := normalizedEnvelope(p.Constant.Envelope)
		le.PutUint16(buf[u:u+2], uint16(scaleS16(p.Constant.Magnitude)))
		putEnvelope(buf[u+2:u+10], env)
	case p.Type == crossput.ForceRamp:
		env := normalizedEnvelope(p.Ramp.Envelope)
		le.PutUint16(buf[u:u+2], uint16(scaleS16(p.Ramp.MagnitudeStart)))
		le.PutUint16(buf[u+2:u+4], uint16(scaleS16(p.Ramp.MagnitudeEnd)))
		putEnvelope(buf[u+4:u+12], env)
	case crossput.IsPeriodicForceType(p.Type):
		env := normalizedEnvelope(p.Periodic.Envelope)
		le.PutUint16(buf[u:u+2], waveformFor(p.Type))
		le.PutUint16(buf[u+2:u+4], millis(1/maxf(p.Periodic.Frequency, 0.001)))
		le.PutUint16(buf[u+4:u+6], uint16(scaleS16(p.Periodic.Magnitude)))
		le.PutUint16(buf[u+6:u+8], uint16(scaleS16(p.Periodic.Offset)))
		le.PutUint16(buf[u+8:u+10], uint16(p.Periodic.Phase*math.MaxUint16))
		putEnvelope(buf[u+10:u+18], env)
	case crossput.IsConditionForceType(p.Type):
		le.PutUint16(buf[u:u+2], scaleU16(p.Condition.RightSaturation))
		le.PutUint16(buf[u+2:u+4], scaleU16(p.Condition.LeftSaturation))
		le.PutUint16(buf[u+4:u+6], uint16(scaleS16(p.Condition.RightCoefficient)))
		le.PutUint16(buf[u+6:u+8], uint16(scaleS16(p.Condition.LeftCoefficient)))
		le.PutUint16(buf[u+8:u+10], scaleU16(p.Condition.Deadzone))
		le.PutUint16(buf[u+10:u+12], uint16(scaleS16(p.Condition.Center)))
	}
	return buf
}

func putEnvelope(b []byte, e crossput.ForceEnvelope) {
	le := binary.LittleEndian
	le.PutUint16(b[0:2], millis(e.AttackTime))
	le.PutUint16(b[2:4], uint16(scaleS16(e.AttackGain)))
	le.PutUint16(b[4:6], millis(e.ReleaseTime))
	le.PutUint16(b[6:8], uint16(scaleS16(e.ReleaseGain)))
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// CreateEffect uploads a fresh effect of kind to the kernel and returns a
// handle wrapping the slot id the kernel assigns.
func (p *Provider) CreateEffect(h crossput.Handle, motor int, kind crossput.ForceType) (crossput.EffectHandle, error) {
	hd := h.(*devHandle)
	hd.mu.Lock()
	defer hd.mu.Unlock()

	buf := encodeEffect(-1, motor, crossput.ForceParams{Type: kind})
	if err := ioctlBytes(hd.fd(), eviocsff, buf); err != nil {
		return nil, fmt.Errorf("evdev: EVIOCSFF: %w", err)
	}
	id := int16(binary.LittleEndian.Uint16(buf[2:4]))
	return &ffEffectHandle{id: id, motor: motor, typ: kind}, nil
}

// UpdateEffect re-uploads the effect's parameters, reusing its existing
// kernel slot id so playback can continue without a stop/start cycle.
func (p *Provider) UpdateEffect(h crossput.Handle, eff crossput.EffectHandle, params crossput.ForceParams) error {
	hd := h.(*devHandle)
	fe := eff.(*ffEffectHandle)
	hd.mu.Lock()
	defer hd.mu.Unlock()

	buf := encodeEffect(fe.id, fe.motor, params)
	if err := ioctlBytes(hd.fd(), eviocsff, buf); err != nil {
		return fmt.Errorf("evdev: EVIOCSFF: %w", err)
	}
	fe.id = int16(binary.LittleEndian.Uint16(buf[2:4]))
	return nil
}

// StartEffect writes an EV_FF play event with value=1, the kernel's
// convention for starting an uploaded effect.
func (p *Provider) StartEffect(h crossput.Handle, eff crossput.EffectHandle) error {
	hd := h.(*devHandle)
	fe := eff.(*ffEffectHandle)
	if err := writeFFPlay(hd.fd(), fe.id, 1); err != nil {
		return err
	}
	fe.active = true
	return nil
}

// StopEffect writes an EV_FF play event with value=0.
func (p *Provider) StopEffect(h crossput.Handle, eff crossput.EffectHandle) error {
	hd := h.(*devHandle)
	fe := eff.(*ffEffectHandle)
	if err := writeFFPlay(hd.fd(), fe.id, 0); err != nil {
		return err
	}
	fe.active = false
	return nil
}

func writeFFPlay(fd int, id int16, value int32) error {
	buf := make([]byte, inputEventSize)
	le := binary.LittleEndian
	le.PutUint16(buf[16:18], evFF)
	le.PutUint16(buf[18:20], uint16(id))
	le.PutUint32(buf[20:24], uint32(value))
	_, err := writeAll(fd, buf)
	return err
}

// DestroyEffect removes the effect's kernel slot via EVIOCRMFF, freeing it
// for reuse by a later CreateEffect.
func (p *Provider) DestroyEffect(h crossput.Handle, eff crossput.EffectHandle) error {
	hd := h.(*devHandle)
	fe := eff.(*ffEffectHandle)
	hd.mu.Lock()
	defer hd.mu.Unlock()

	// EVIOCRMFF takes the effect id itself as the ioctl argument.
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(hd.fd()), eviocrmff, uintptr(fe.id)); errno != 0 {
		return fmt.Errorf("evdev: EVIOCRMFF: %w", errno)
	}
	return nil
}

// SetMotorGain writes a raw EV_FF gain event, the kernel's overall-strength
// scaler applied on top of whatever effects are active (spec §4.6 "Gain").
func (p *Provider) SetMotorGain(h crossput.Handle, motor int, gain float32) error {
	hd := h.(*devHandle)
	buf := make([]byte, inputEventSize)
	le := binary.LittleEndian
	le.PutUint16(buf[16:18], evFF)
	le.PutUint16(buf[18:20], ffGain)
	le.PutUint32(buf[20:24], uint32(scaleU16(gain)))
	_, err := writeAll(hd.fd(), buf)
	return err
}

const ffGain = 0x60

// SubmitRumble drives the device-singleton rumble motor directly, bypassing
// the effect-slot lifecycle: it uploads (or re-uploads) a single reserved
// rumble effect and starts or stops it based on whether either channel is
// nonzero (spec §4.6 "Rumble is a synthetic motor 0 force").
func (p *Provider) SubmitRumble(h crossput.Handle, low, high float32) error {
	hd := h.(*devHandle)
	hd.mu.Lock()
	id := hd.rumbleID
	hd.mu.Unlock()

	params := crossput.ForceParams{Type: crossput.ForceRumble, Rumble: crossput.RumbleForceParams{LowFrequency: low, HighFrequency: high}}
	buf := encodeEffect(id, 0, params)
	if err := ioctlBytes(hd.fd(), eviocsff, buf); err != nil {
		return fmt.Errorf("evdev: EVIOCSFF: %w", err)
	}
	newID := int16(binary.LittleEndian.Uint16(buf[2:4]))
	hd.mu.Lock()
	hd.rumbleID = newID
	hd.mu.Unlock()

	value := int32(0)
	if low > 0 || high > 0 {
		value = 1
	}
	return writeFFPlay(hd.fd(), newID, value)
}

// QueryEffectStatus reports the last StartEffect/StopEffect call's outcome;
// evdev offers no kernel-side effect-status query, so the kernel is not
// consulted. It is ForceStatusUnknown only for an effect handle that did
// not come from this backend.
func (p *Provider) QueryEffectStatus(h crossput.Handle, eff crossput.EffectHandle) crossput.ForceStatus {
	fe, ok := eff.(*ffEffectHandle)
	if !ok {
		return crossput.ForceStatusUnknown
	}
	if fe.active {
		return crossput.ForceStatusActive
	}
	return crossput.ForceStatusInactive
}

func writeAll(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}
