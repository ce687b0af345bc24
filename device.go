package crossput

// ID is the opaque, runtime-unique identifier of a device, force, or
// callback binding. Zero is the sentinel value ("invalid" for devices and
// forces, "global" for callback registrations).
type ID uint64

// DeviceType classifies a device. It is fixed at creation.
type DeviceType uint8

const (
	// DeviceUnknown marks hardware crossput could not classify; no device
	// interface is ever created for it.
	DeviceUnknown DeviceType = iota
	DeviceMouse
	DeviceKeyboard
	DeviceGamepad
)

func (t DeviceType) String() string {
	switch t {
	case DeviceMouse:
		return "Mouse"
	case DeviceKeyboard:
		return "Keyboard"
	case DeviceGamepad:
		return "Gamepad"
	default:
		return "Unknown"
	}
}

// DeviceStatusChange describes a transition reported by the status
// callback family.
type DeviceStatusChange uint8

const (
	DeviceDiscovered DeviceStatusChange = iota
	DeviceConnected
	DeviceDisconnected
	DeviceDestroyed
)

func (s DeviceStatusChange) String() string {
	switch s {
	case DeviceDiscovered:
		return "Discovered"
	case DeviceConnected:
		return "Connected"
	case DeviceDisconnected:
		return "Disconnected"
	case DeviceDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Device is the capability set common to every device, real or aggregate.
type Device interface {
	// ID returns the runtime-unique identifier of this device. It has no
	// meaning beyond the lifetime of the process.
	ID() ID

	// Type returns the exact device type.
	Type() DeviceType

	// DisplayName returns a human-readable name, or "" while disconnected
	// or if the platform/driver does not supply one.
	DisplayName() string

	// Connected reports whether the device is currently connected.
	// Aggregates are connected only if every member was connected at the
	// end of the last Update.
	Connected() bool

	// IsAggregate reports whether this device is a composite over other
	// devices (see Aggregate).
	IsAggregate() bool

	// Update drains pending provider events (or member updates, for an
	// aggregate) and folds them into state. Fails with ErrReentrantMutation
	// if called from within a callback handler.
	Update() error

	// MotorCount returns the number of addressable force motors (for an
	// aggregate, the concatenation of its members'). Zero while
	// disconnected, per spec §3's disconnected-device invariants.
	MotorCount() int
	// Gain returns the gain currently committed for motor, or 0 for an
	// out-of-range motor or while disconnected.
	Gain(motor int) float32
}

// Mouse is the capability set exposed by mouse devices.
type Mouse interface {
	Device

	// Position returns the cumulative (x, y) position in provider units.
	Position() (x, y int64)
	// Delta returns the (dx, dy) accumulated since the last Update.
	Delta() (dx, dy int64)
	// Scroll returns the cumulative (sx, sy) scroll in provider units.
	Scroll() (sx, sy int64)
	// ScrollDelta returns the (sdx, sdy) accumulated since the last Update.
	ScrollDelta() (sdx, sdy int64)

	// ButtonCount returns the number of addressable buttons (0=left,
	// 1=right, 2=middle, then extras).
	ButtonCount() int
	// ButtonThreshold returns the per-button digital threshold.
	ButtonThreshold(index int) float32
	// SetButtonThreshold sets the per-button digital threshold, clamped to
	// [0,1]. No-op for an out-of-range index.
	SetButtonThreshold(index int, t float32)
	// ButtonValue returns the button's current analog value in [0,1].
	ButtonValue(index int) float32
	// ButtonState returns the button's current digital state.
	ButtonState(index int) bool
	// TimeSinceButtonChange returns seconds since the button's last
	// transition, or +Inf if it has never changed.
	TimeSinceButtonChange(index int) float64
}

// Keyboard is the capability set exposed by keyboard devices.
type Keyboard interface {
	Device

	// NumKeysPressed returns the count of keys currently in the true
	// digital state.
	NumKeysPressed() int

	KeyThreshold(k Key) float32
	SetKeyThreshold(k Key, t float32)
	KeyValue(k Key) float32
	KeyState(k Key) bool
	TimeSinceKeyChange(k Key) float64
}

// Gamepad is the capability set exposed by gamepad/controller devices.
type Gamepad interface {
	Device

	ButtonThreshold(b Button) float32
	SetButtonThreshold(b Button, t float32)
	ButtonValue(b Button) float32
	ButtonState(b Button) bool
	TimeSinceButtonChange(b Button) float64

	// ThumbstickCount returns the number of thumbsticks this gamepad
	// exposes (for an aggregate, the concatenation of its members').
	ThumbstickCount() int
	// Thumbstick returns the (x, y) position of thumbstick index, each
	// axis in [-1,+1], y positive up.
	Thumbstick(index int) (x, y float32)
}
