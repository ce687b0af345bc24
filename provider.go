package crossput

// This file defines the platform adapter interface that crossput's device
// pipelines drive. A Provider enumerates hardware, opens handles, streams
// timestamped raw events, and executes force primitives; its internal
// native-code-to-portable-code translation tables are data, not design, and
// live in the concrete backends (backend/evdev, backend/xinput). The
// interface lives in the root package, not a separate "backend" package,
// so that backend implementations can import crossput without creating an
// import cycle back into themselves — the same driver-registration shape as
// database/sql and image.RegisterFormat.

// HardwareID is an opaque, platform-defined, comparable identifier for a
// piece of hardware, stable across Discover calls for as long as the
// hardware stays attached in the same physical/logical slot.
type HardwareID interface {
	// Equal reports whether two hardware identities refer to the same
	// piece of hardware. Equality is tier-aware: a backend may compare at
	// different levels of confidence (e.g. unique-ID string first, bus
	// tuple second, ephemeral index last).
	Equal(other HardwareID) bool
	// String renders a debug-friendly representation.
	String() string
}

// Discovered is one hardware entry produced by Discover.
type Discovered struct {
	HardwareID HardwareID
	Type       DeviceType
}

// Handle is an opaque, backend-owned live connection to a device.
type Handle interface{}

// EffectHandle is an opaque, backend-owned force-effect object.
type EffectHandle interface{}

// Capabilities describes what Open discovered about a device.
type Capabilities struct {
	MotorCount          int
	SupportedForces     []ForceType
	MaxSimultaneousKeys int
	DisplayName         string
	// ButtonCount is meaningful for mice (addressable button count) and is
	// 0 for keyboards/gamepads, which have fixed portable enumerations.
	ButtonCount int
	// ThumbstickCount is meaningful for gamepads.
	ThumbstickCount int
}

// RawEvent is one timestamped, already-portable-coded event drained from
// Poll. Exactly one of the typed fields is meaningful, selected by Kind.
type RawEvent struct {
	Timestamp uint64 // microseconds, same clock as Capabilities/Open
	Kind      EventKind

	// MouseMove / MouseScroll: cumulative counters (not deltas); the
	// device pipeline computes its own baseline-relative delta.
	X, Y int64

	Button  int // mouse button index, or portable Key/Button cast to int
	Key     Key
	Button2 Button
	Value   float32 // analog value in [0,1], or axis value in [-1,1] for thumbsticks
	Stick   int     // thumbstick index

	StickX, StickY           float32
	StickXValid, StickYValid bool
}

// EventKind tags the meaningful fields of a RawEvent.
type EventKind uint8

const (
	EventMouseMove EventKind = iota
	EventMouseScroll
	EventMouseButton
	EventKeyboardKey
	EventGamepadButton
	EventGamepadThumbstick
	// EventOverrun is the buffer-overrun sentinel: the pipeline must
	// discard all queued readings and resynchronize via GlobalState.
	EventOverrun
)

// Poller is returned by OpenPoller and drained by the device pipeline.
type Poller interface {
	// Poll returns events strictly newer than sinceTimestamp, oldest
	// first. A returned EventOverrun event means the caller must stop
	// consuming (any events after it in the slice are meaningless) and
	// call GlobalState instead.
	Poll(sinceTimestamp uint64) ([]RawEvent, error)
}

// GlobalSnapshot is the whole-device state query used to resynchronize
// after a buffer overrun.
type GlobalSnapshot struct {
	Timestamp uint64
	Buttons   map[int]float32 // mouse button index -> value
	Keys      map[Key]float32
	GpButtons map[Button]float32
	Sticks    []struct{ X, Y float32 }
	MousePos  struct{ X, Y, SX, SY int64 }
}

// Provider is the capability interface a platform backend must implement.
type Provider interface {
	Name() string

	// Discover enumerates attached hardware known to this provider.
	Discover() ([]Discovered, error)

	// Open obtains a live handle and queries capabilities.
	Open(hw HardwareID) (Handle, Capabilities, error)
	// OpenPoller returns the event stream for a handle obtained from Open.
	OpenPoller(h Handle) (Poller, error)
	// GlobalState performs a whole-device query, used after a buffer
	// overrun.
	GlobalState(h Handle) (GlobalSnapshot, error)
	// Connected reports live connectivity (not just handle validity).
	Connected(h Handle) bool
	// Flush hints the provider to deliver any coalesced input immediately.
	Flush(h Handle)
	Close(h Handle) error

	// SubmitRumble drives the synthetic/singleton rumble motor.
	SubmitRumble(h Handle, low, high float32) error
	CreateEffect(h Handle, motor int, kind ForceType) (EffectHandle, error)
	UpdateEffect(h Handle, eff EffectHandle, params ForceParams) error
	StartEffect(h Handle, eff EffectHandle) error
	StopEffect(h Handle, eff EffectHandle) error
	DestroyEffect(h Handle, eff EffectHandle) error
	SetMotorGain(h Handle, motor int, gain float32) error
	QueryEffectStatus(h Handle, eff EffectHandle) ForceStatus
}

// providerFactory lets a backend register itself at init() time without
// the root package importing it (which would cycle, since backends import
// crossput for the domain types above). Backends call RegisterProvider
// from their own init(); the façade discovers across every registered
// provider.
var registeredProviders []Provider

// RegisterProvider adds a platform backend to the set crossput.Discover
// enumerates. Intended to be called from a backend package's init()
// function after a blank import, e.g.:
//
//	import _ "github.com/Alia5/crossput/backend/evdev"
func RegisterProvider(p Provider) {
	registeredProviders = append(registeredProviders, p)
}
