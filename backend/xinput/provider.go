//go:build windows

package xinput

import (
	"fmt"
	"unsafe"

	"github.com/Alia5/crossput"
	"golang.org/x/sys/windows"
)

const maxControllers = 4

var (
	xinputDLL    = windows.NewLazySystemDLL("xinput1_4.dll")
	procGetState = xinputDLL.NewProc("XInputGetState")
	procSetState = xinputDLL.NewProc("XInputSetState")
	procGetCaps  = xinputDLL.NewProc("XInputGetCapabilities")
)

// xinputGamepad mirrors the packed XINPUT_GAMEPAD struct.
type xinputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// xinputState mirrors XINPUT_STATE: a sequence counter plus the packed
// gamepad snapshot.
type xinputState struct {
	PacketNumber uint32
	Gamepad      xinputGamepad
}

// xinputVibration mirrors XINPUT_VIBRATION.
type xinputVibration struct {
	LeftMotorSpeed  uint16
	RightMotorSpeed uint16
}

const (
	btnDPadUp        = 0x0001
	btnDPadDown      = 0x0002
	btnDPadLeft      = 0x0004
	btnDPadRight     = 0x0008
	btnStart         = 0x0010
	btnBack          = 0x0020
	btnLeftThumb     = 0x0040
	btnRightThumb    = 0x0080
	btnLeftShoulder  = 0x0100
	btnRightShoulder = 0x0200
	btnA             = 0x1000
	btnB             = 0x2000
	btnX             = 0x4000
	btnY             = 0x8000
)

// buttonBits maps each XInput digital button bit to its portable
// crossput.Button; the left/right triggers are exposed as analog axes, not digital buttons,
// matching impl_windows.cpp's XInput mapping.
var buttonBits = []struct {
	bit uint16
	b   crossput.Button
}{
	{btnA, crossput.ButtonSouth},
	{btnB, crossput.ButtonEast},
	{btnX, crossput.ButtonWest},
	{btnY, crossput.ButtonNorth},
	{btnLeftShoulder, crossput.ButtonL1},
	{btnRightShoulder, crossput.ButtonR1},
	{btnBack, crossput.ButtonSelect},
	{btnStart, crossput.ButtonStart},
	{btnLeftThumb, crossput.ButtonThumbstickL},
	{btnRightThumb, crossput.ButtonThumbstickR},
	{btnDPadUp, crossput.ButtonDpadUp},
	{btnDPadDown, crossput.ButtonDpadDown},
	{btnDPadLeft, crossput.ButtonDpadLeft},
	{btnDPadRight, crossput.ButtonDpadRight},
}

// Provider is the Windows XInput crossput.Provider.
type Provider struct{}

// New returns a ready-to-use XInput provider.
func New() *Provider { return &Provider{} }

func init() {
	crossput.RegisterProvider(New())
}

func (p *Provider) Name() string { return "xinput" }

type hwID struct{ slot uint32 }

func (h hwID) Equal(other crossput.HardwareID) bool {
	o, ok := other.(hwID)
	return ok && o.slot == h.slot
}
func (h hwID) String() string { return fmt.Sprintf("xinput-slot-%d", h.slot) }

// Discover probes every XInput slot (0-3) and reports the ones that answer.
func (p *Provider) Discover() ([]crossput.Discovered, error) {
	var found []crossput.Discovered
	for slot := uint32(0); slot < maxControllers; slot++ {
		var st xinputState
		r, _, _ := procGetState.Call(uintptr(slot), uintptr(unsafe.Pointer(&st)))
		if r != 0 { // ERROR_SUCCESS == 0; nonzero means not connected
			continue
		}
		found = append(found, crossput.Discovered{HardwareID: hwID{slot}, Type: crossput.DeviceGamepad})
	}
	return found, nil
}

type handle struct {
	slot uint32
}

func (p *Provider) Open(hw crossput.HardwareID) (crossput.Handle, crossput.Capabilities, error) {
	h, ok := hw.(hwID)
	if !ok {
		return nil, crossput.Capabilities{}, fmt.Errorf("xinput: not an xinput hardware id")
	}
	var st xinputState
	r, _, _ := procGetState.Call(uintptr(h.slot), uintptr(unsafe.Pointer(&st)))
	if r != 0 {
		return nil, crossput.Capabilities{}, fmt.Errorf("xinput: slot %d not connected: %w", h.slot, crossput.ErrAccessDenied)
	}
	caps := crossput.Capabilities{
		MotorCount:      2,
		SupportedForces: []crossput.ForceType{crossput.ForceRumble},
		ThumbstickCount: 2,
		DisplayName:     fmt.Sprintf("XInput Controller %d", h.slot+1),
	}
	return &handle{slot: h.slot}, caps, nil
}

func (p *Provider) Connected(h crossput.Handle) bool {
	hd := h.(*handle)
	var st xinputState
	r, _, _ := procGetState.Call(uintptr(hd.slot), uintptr(unsafe.Pointer(&st)))
	return r == 0
}

func (p *Provider) Flush(h crossput.Handle) {}

func (p *Provider) Close(h crossput.Handle) error { return nil }

// poller polls XInputGetState on demand; XInput has no native event
// stream, so every Poll call is a fresh whole-state read translated into
// a synthetic button/thumbstick diff against the last-seen packet.
type poller struct {
	h    *handle
	last xinputGamepad
	have bool
}

func (p *Provider) OpenPoller(h crossput.Handle) (crossput.Poller, error) {
	return &poller{h: h.(*handle)}, nil
}

func axis(v int16) float32 {
	f := float32(v) / 32767.0
	if f > 1 {
		f = 1
	}
	if f < -1 {
		f = -1
	}
	return f
}

func (p *poller) Poll(sinceTimestamp uint64) ([]crossput.RawEvent, error) {
	var st xinputState
	r, _, _ := procGetState.Call(uintptr(p.h.slot), uintptr(unsafe.Pointer(&st)))
	if r != 0 {
		return nil, fmt.Errorf("xinput: slot %d disconnected: %w", p.h.slot, crossput.ErrProviderFatal)
	}
	gp := st.Gamepad
	ts := uint64(st.PacketNumber)

	var out []crossput.RawEvent
	if !p.have {
		p.last = gp
		p.have = true
	}

	for _, bb := range buttonBits {
		was := p.last.Buttons&bb.bit != 0
		now := gp.Buttons&bb.bit != 0
		if was != now {
			v := float32(0)
			if now {
				v = 1
			}
			out = append(out, crossput.RawEvent{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: bb.b, Value: v})
		}
	}
	if lt := gp.LeftTrigger; lt != p.last.LeftTrigger {
		out = append(out, crossput.RawEvent{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonL2, Value: float32(lt) / 255.0})
	}
	if rt := gp.RightTrigger; rt != p.last.RightTrigger {
		out = append(out, crossput.RawEvent{Timestamp: ts, Kind: crossput.EventGamepadButton, Button2: crossput.ButtonR2, Value: float32(rt) / 255.0})
	}
	// XInput reports Y positive up; it is negated here because the pipeline
	// negates every provider's Y (evdev reports Y positive down).
	if gp.ThumbLX != p.last.ThumbLX || gp.ThumbLY != p.last.ThumbLY {
		out = append(out, crossput.RawEvent{Timestamp: ts, Kind: crossput.EventGamepadThumbstick, Stick: 0,
			StickX: axis(gp.ThumbLX), StickXValid: true, StickY: -axis(gp.ThumbLY), StickYValid: true})
	}
	if gp.ThumbRX != p.last.ThumbRX || gp.ThumbRY != p.last.ThumbRY {
		out = append(out, crossput.RawEvent{Timestamp: ts, Kind: crossput.EventGamepadThumbstick, Stick: 1,
			StickX: axis(gp.ThumbRX), StickXValid: true, StickY: -axis(gp.ThumbRY), StickYValid: true})
	}
	p.last = gp
	return out, nil
}

func (p *Provider) GlobalState(h crossput.Handle) (crossput.GlobalSnapshot, error) {
	hd := h.(*handle)
	var st xinputState
	r, _, _ := procGetState.Call(uintptr(hd.slot), uintptr(unsafe.Pointer(&st)))
	if r != 0 {
		return crossput.GlobalSnapshot{}, fmt.Errorf("xinput: slot %d disconnected: %w", hd.slot, crossput.ErrProviderFatal)
	}
	gp := st.Gamepad
	snap := crossput.GlobalSnapshot{
		Timestamp: uint64(st.PacketNumber),
		GpButtons: map[crossput.Button]float32{},
		Sticks: []struct{ X, Y float32 }{
			{axis(gp.ThumbLX), -axis(gp.ThumbLY)},
			{axis(gp.ThumbRX), -axis(gp.ThumbRY)},
		},
	}
	for _, bb := range buttonBits {
		if gp.Buttons&bb.bit != 0 {
			snap.GpButtons[bb.b] = 1
		}
	}
	snap.GpButtons[crossput.ButtonL2] = float32(gp.LeftTrigger) / 255.0
	snap.GpButtons[crossput.ButtonR2] = float32(gp.RightTrigger) / 255.0
	return snap, nil
}

// SubmitRumble drives XInput's two motors directly; XInput has no
// general force-effect upload, only this single persistent vibration
// state, so the rest of the Provider force hooks are no-ops.
func (p *Provider) SubmitRumble(h crossput.Handle, low, high float32) error {
	hd := h.(*handle)
	v := xinputVibration{
		LeftMotorSpeed:  uint16(low * 65535),
		RightMotorSpeed: uint16(high * 65535),
	}
	procSetState.Call(uintptr(hd.slot), uintptr(unsafe.Pointer(&v)))
	return nil
}

func (p *Provider) CreateEffect(h crossput.Handle, motor int, kind crossput.ForceType) (crossput.EffectHandle, error) {
	return nil, fmt.Errorf("xinput: only rumble is supported: %w", crossput.ErrCapabilityMismatch)
}
func (p *Provider) UpdateEffect(h crossput.Handle, eff crossput.EffectHandle, params crossput.ForceParams) error {
	return fmt.Errorf("xinput: %w", crossput.ErrCapabilityMismatch)
}
func (p *Provider) StartEffect(h crossput.Handle, eff crossput.EffectHandle) error {
	return fmt.Errorf("xinput: %w", crossput.ErrCapabilityMismatch)
}
func (p *Provider) StopEffect(h crossput.Handle, eff crossput.EffectHandle) error {
	return fmt.Errorf("xinput: %w", crossput.ErrCapabilityMismatch)
}
func (p *Provider) DestroyEffect(h crossput.Handle, eff crossput.EffectHandle) error {
	return fmt.Errorf("xinput: %w", crossput.ErrCapabilityMismatch)
}

// SetMotorGain is a no-op: XInput's two motors are driven as an absolute
// pair by SubmitRumble/the rumble force's WriteParams, with no separate
// persistent per-motor gain the device itself tracks.
func (p *Provider) SetMotorGain(h crossput.Handle, motor int, gain float32) error { return nil }

func (p *Provider) QueryEffectStatus(h crossput.Handle, eff crossput.EffectHandle) crossput.ForceStatus {
	return crossput.ForceStatusUnknown
}
