package crossput

import "github.com/Alia5/crossput/internal/dispatch"

// CallbackKind tags which event family a registration/dispatch concerns.
type CallbackKind uint32

const (
	CallbackDeviceStatus CallbackKind = iota
	CallbackMouseMove
	CallbackMouseScroll
	CallbackMouseButton
	CallbackKeyboardKey
	CallbackGamepadButton
	CallbackGamepadThumbstick
)

// DeviceStatusEvent is the payload for a CallbackDeviceStatus dispatch.
type DeviceStatusEvent struct {
	Device ID
	Change DeviceStatusChange
}

// MouseMoveEvent is the payload for a CallbackMouseMove dispatch.
type MouseMoveEvent struct {
	Device     ID
	X, Y       int64
	DX, DY     int64
}

// MouseScrollEvent is the payload for a CallbackMouseScroll dispatch.
type MouseScrollEvent struct {
	Device       ID
	SX, SY       int64
	SDX, SDY     int64
}

// MouseButtonEvent is the payload for a CallbackMouseButton dispatch.
type MouseButtonEvent struct {
	Device ID
	Index  int
	Value  float32
	State  bool
}

// KeyboardKeyEvent is the payload for a CallbackKeyboardKey dispatch.
type KeyboardKeyEvent struct {
	Device ID
	Key    Key
	Value  float32
	State  bool
}

// GamepadButtonEvent is the payload for a CallbackGamepadButton dispatch.
type GamepadButtonEvent struct {
	Device ID
	Button Button
	Value  float32
	State  bool
}

// GamepadThumbstickEvent is the payload for a CallbackGamepadThumbstick
// dispatch.
type GamepadThumbstickEvent struct {
	Device ID
	Index  int
	X, Y   float32
}

var events = dispatch.New()

// insideCallback is the process-wide reentrancy flag described in spec §5:
// set for the duration of any handler invocation, checked by every
// mutation entry point.
var insideCallback bool

func runCallback(fn func()) {
	insideCallback = true
	defer func() { insideCallback = false }()
	fn()
}

func checkReentrant() error {
	if insideCallback {
		return ErrReentrantMutation
	}
	return nil
}

func dispatchDeviceStatus(dev ID, change DeviceStatusChange) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackDeviceStatus), true, uint64(change),
			DeviceStatusEvent{Device: dev, Change: change})
	})
}

func dispatchMouseMove(dev ID, x, y, dx, dy int64) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackMouseMove), false, 0,
			MouseMoveEvent{Device: dev, X: x, Y: y, DX: dx, DY: dy})
	})
}

func dispatchMouseScroll(dev ID, sx, sy, sdx, sdy int64) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackMouseScroll), false, 0,
			MouseScrollEvent{Device: dev, SX: sx, SY: sy, SDX: sdx, SDY: sdy})
	})
}

func dispatchMouseButton(dev ID, index int, value float32, state bool) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackMouseButton), true, uint64(index),
			MouseButtonEvent{Device: dev, Index: index, Value: value, State: state})
	})
}

func dispatchKeyboardKey(dev ID, k Key, value float32, state bool) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackKeyboardKey), true, uint64(k),
			KeyboardKeyEvent{Device: dev, Key: k, Value: value, State: state})
	})
}

func dispatchGamepadButton(dev ID, b Button, value float32, state bool) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackGamepadButton), true, uint64(b),
			GamepadButtonEvent{Device: dev, Button: b, Value: value, State: state})
	})
}

func dispatchGamepadThumbstick(dev ID, index int, x, y float32) {
	runCallback(func() {
		events.Dispatch(uint64(dev), uint32(CallbackGamepadThumbstick), true, uint64(index),
			GamepadThumbstickEvent{Device: dev, Index: index, X: x, Y: y})
	})
}

// RegisterDeviceStatusCallback registers fn for status transitions of dev,
// or every device if dev is 0. If filtered, fn only fires for the given
// change kind.
func RegisterDeviceStatusCallback(dev ID, filtered bool, change DeviceStatusChange, fn func(DeviceStatusEvent)) ID {
	id := events.Register(uint64(dev), uint32(CallbackDeviceStatus), filtered, uint64(change),
		func(p any) { fn(p.(DeviceStatusEvent)) })
	return ID(id)
}

// RegisterMouseMoveCallback registers fn for dev's move events.
func RegisterMouseMoveCallback(dev ID, fn func(MouseMoveEvent)) ID {
	return ID(events.Register(uint64(dev), uint32(CallbackMouseMove), false, 0,
		func(p any) { fn(p.(MouseMoveEvent)) }))
}

// RegisterMouseScrollCallback registers fn for dev's scroll events.
func RegisterMouseScrollCallback(dev ID, fn func(MouseScrollEvent)) ID {
	return ID(events.Register(uint64(dev), uint32(CallbackMouseScroll), false, 0,
		func(p any) { fn(p.(MouseScrollEvent)) }))
}

// RegisterMouseButtonCallback registers fn for dev's button events, or all
// buttons if filtered is false.
func RegisterMouseButtonCallback(dev ID, filtered bool, index int, fn func(MouseButtonEvent)) ID {
	return ID(events.Register(uint64(dev), uint32(CallbackMouseButton), filtered, uint64(index),
		func(p any) { fn(p.(MouseButtonEvent)) }))
}

// RegisterKeyboardKeyCallback registers fn for dev's key events, or all
// keys if filtered is false.
func RegisterKeyboardKeyCallback(dev ID, filtered bool, k Key, fn func(KeyboardKeyEvent)) ID {
	return ID(events.Register(uint64(dev), uint32(CallbackKeyboardKey), filtered, uint64(k),
		func(p any) { fn(p.(KeyboardKeyEvent)) }))
}

// RegisterGamepadButtonCallback registers fn for dev's button events, or
// all buttons if filtered is false.
func RegisterGamepadButtonCallback(dev ID, filtered bool, b Button, fn func(GamepadButtonEvent)) ID {
	return ID(events.Register(uint64(dev), uint32(CallbackGamepadButton), filtered, uint64(b),
		func(p any) { fn(p.(GamepadButtonEvent)) }))
}

// RegisterGamepadThumbstickCallback registers fn for dev's thumbstick
// events, or every stick if filtered is false.
func RegisterGamepadThumbstickCallback(dev ID, filtered bool, index int, fn func(GamepadThumbstickEvent)) ID {
	return ID(events.Register(uint64(dev), uint32(CallbackGamepadThumbstick), filtered, uint64(index),
		func(p any) { fn(p.(GamepadThumbstickEvent)) }))
}

// UnregisterCallback removes a previously registered callback by id. Safe
// to call with an id that is already gone.
func UnregisterCallback(id ID) error {
	if err := checkReentrant(); err != nil {
		return err
	}
	events.Unregister(uint64(id))
	return nil
}
