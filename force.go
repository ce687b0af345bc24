package crossput

// ForceType identifies the kind of force effect applied to a motor.
type ForceType uint8

const (
	ForceRumble ForceType = iota
	ForceConstant
	ForceRamp
	ForceSine
	ForceTriangle
	ForceSquare
	ForceSawUp
	ForceSawDown
	ForceSpring
	ForceFriction
	ForceDamper
	ForceInertia

	numForceTypes
)

// NumForceTypes is the total number of portable force kinds.
const NumForceTypes = int(numForceTypes)

// IsConditionForceType reports whether t is one of the condition-effect
// kinds (Spring, Friction, Damper, Inertia), which share ConditionForceParams.
func IsConditionForceType(t ForceType) bool {
	return t == ForceSpring || t == ForceFriction || t == ForceDamper || t == ForceInertia
}

// IsPeriodicForceType reports whether t is one of the periodic-wave kinds,
// which share PeriodicForceParams.
func IsPeriodicForceType(t ForceType) bool {
	switch t {
	case ForceSine, ForceTriangle, ForceSquare, ForceSawUp, ForceSawDown:
		return true
	default:
		return false
	}
}

// ForceStatus reports whether a force is known to be active.
type ForceStatus uint8

const (
	// ForceStatusUnknown means the backend cannot introspect running state.
	ForceStatusUnknown ForceStatus = iota
	ForceStatusInactive
	ForceStatusActive
)

func (s ForceStatus) String() string {
	switch s {
	case ForceStatusInactive:
		return "Inactive"
	case ForceStatusActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// ForceEnvelope defines the duration and gain over time of a force. The sum
// of the three times is normalized to never exceed MaxEnvelopeTime; if the
// caller's sum exceeds it, all three are scaled down proportionally.
type ForceEnvelope struct {
	AttackTime   float32
	AttackGain   float32
	SustainTime  float32
	SustainGain  float32
	ReleaseTime  float32
	ReleaseGain  float32
}

// MaxEnvelopeTime is the maximum total envelope time, in seconds, any force
// may be active for.
const MaxEnvelopeTime float32 = 32.0

// RumbleForceParams parametrizes ForceRumble.
type RumbleForceParams struct {
	// LowFrequency is the low-frequency ("strong") motor intensity, [0,1].
	LowFrequency float32
	// HighFrequency is the high-frequency ("weak") motor intensity, [0,1].
	HighFrequency float32
}

// ConstantForceParams parametrizes ForceConstant.
type ConstantForceParams struct {
	Envelope  ForceEnvelope
	Magnitude float32
}

// RampForceParams parametrizes ForceRamp.
type RampForceParams struct {
	Envelope       ForceEnvelope
	MagnitudeStart float32
	MagnitudeEnd   float32
}

// PeriodicForceParams parametrizes the periodic wave force kinds.
type PeriodicForceParams struct {
	Envelope  ForceEnvelope
	Magnitude float32
	// Frequency of the wave, in Hz.
	Frequency float32
	// Phase is the horizontal shift of the wave, in [0,1].
	Phase float32
	// Offset is the vertical shift of the wave, in terms of magnitude.
	Offset float32
}

// ConditionForceParams parametrizes the condition force kinds.
type ConditionForceParams struct {
	Magnitude       float32
	LeftSaturation  float32
	RightSaturation float32
	LeftCoefficient float32
	RightCoefficient float32
	Deadzone        float32
	Center          float32
}

// ForceParams carries the type tag and the one parameter record that
// applies to it. Exactly one of the typed fields is meaningful for a given
// Type; which one is determined by Type/IsConditionForceType/IsPeriodicForceType.
type ForceParams struct {
	Type ForceType

	Rumble    RumbleForceParams
	Constant  ConstantForceParams
	Ramp      RampForceParams
	Periodic  PeriodicForceParams
	Condition ConditionForceParams
}

// Force is a software handle representing one haptic effect on one motor of
// one device.
type Force interface {
	ID() ID
	Type() ForceType

	// Device returns the owning device's ID. The ID is kept after the
	// device disconnects (Orphaned reports true in that case) and after the
	// force has been destroyed.
	Device() ID
	// Orphaned reports whether the owning device has disconnected. An
	// orphaned force reports ForceStatusInactive and all mutators no-op.
	Orphaned() bool

	Status() ForceStatus
	Motor() int

	Params() ForceParams
	// WriteParams uploads new parameters. Fails if p.Type differs from the
	// force's original type (the type tag is immutable for a given force),
	// or if the force is orphaned.
	WriteParams(p ForceParams) bool

	Start() bool
	Stop() bool
	Destroy()
}
