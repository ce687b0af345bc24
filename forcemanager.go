package crossput

import "fmt"

// force is the concrete Force implementation shared by every device type
// that can own motors (spec §4.6).
type force struct {
	id       ID
	typ      ForceType
	deviceID ID
	owner    *baseDevice
	motor    int
	params   ForceParams
	status   ForceStatus
	orphaned bool
	handle   EffectHandle
	isRumble bool
}

func (f *force) ID() ID         { return f.id }
func (f *force) Type() ForceType { return f.typ }
func (f *force) Device() ID     { return f.deviceID }
func (f *force) Orphaned() bool { return f.orphaned }
func (f *force) Motor() int     { return f.motor }
func (f *force) Params() ForceParams { return f.params }

func (f *force) Status() ForceStatus {
	if f.orphaned {
		return ForceStatusInactive
	}
	if f.isRumble {
		return f.status
	}
	return f.owner.provider.QueryEffectStatus(f.owner.handle, f.handle)
}

// WriteParams re-uploads new parameters, failing if the force is orphaned
// or if the caller attempts to change the immutable type tag.
func (f *force) WriteParams(p ForceParams) bool {
	if f.orphaned || p.Type != f.typ {
		return false
	}
	f.params = p
	if f.isRumble {
		return f.submitRumble() == nil
	}
	return f.owner.provider.UpdateEffect(f.owner.handle, f.handle, p) == nil
}

func (f *force) Start() bool {
	if f.orphaned {
		return false
	}
	if f.isRumble {
		f.status = ForceStatusActive
		return f.submitRumble() == nil
	}
	if err := f.owner.provider.UpdateEffect(f.owner.handle, f.handle, f.params); err != nil {
		return false
	}
	if err := f.owner.provider.StartEffect(f.owner.handle, f.handle); err != nil {
		return false
	}
	f.status = ForceStatusActive
	return true
}

func (f *force) Stop() bool {
	if f.orphaned {
		return false
	}
	if f.isRumble {
		f.status = ForceStatusInactive
		return f.submitRumble() == nil
	}
	if err := f.owner.provider.StopEffect(f.owner.handle, f.handle); err != nil {
		return false
	}
	f.status = ForceStatusInactive
	return true
}

func (f *force) Destroy() {
	if f.orphaned {
		return
	}
	if f.isRumble {
		_ = f.owner.provider.SubmitRumble(f.owner.handle, 0, 0)
	} else {
		_ = f.owner.provider.DestroyEffect(f.owner.handle, f.handle)
	}
	delete(f.owner.forces, f.id)
	f.orphaned = true
	f.status = ForceStatusInactive
}

func (f *force) submitRumble() error {
	gain := float32(1)
	if f.motor < len(f.owner.motorGains) {
		gain = f.owner.motorGains[f.motor]
	}
	if f.status != ForceStatusActive {
		return f.owner.provider.SubmitRumble(f.owner.handle, 0, 0)
	}
	return f.owner.provider.SubmitRumble(f.owner.handle,
		clamp01f(f.params.Rumble.LowFrequency)*gain,
		clamp01f(f.params.Rumble.HighFrequency)*gain)
}

// TryCreateForce requests a new force on dev's motor, failing with
// ErrCapabilityMismatch if the motor/kind combination is unsupported
// (spec §4.6).
func TryCreateForce(dev Device, motor int, kind ForceType) (Force, error) {
	if err := checkReentrant(); err != nil {
		return nil, err
	}
	base, motor, ok := resolveDeviceMotor(dev, motor)
	if !ok {
		return nil, fmt.Errorf("crossput: invalid motor %d: %w", motor, ErrCapabilityMismatch)
	}
	if !base.connected {
		return nil, fmt.Errorf("crossput: device not connected: %w", ErrCapabilityMismatch)
	}

	supported := false
	for _, t := range base.caps.SupportedForces {
		if t == kind {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("crossput: motor %d does not support %v: %w", motor, kind, ErrCapabilityMismatch)
	}

	if kind == ForceRumble {
		for _, f := range base.forces {
			if f.isRumble && f.motor == motor {
				return nil, fmt.Errorf("crossput: rumble already exists on motor %d: %w", motor, ErrCapabilityMismatch)
			}
		}
		id := ID(idAllocator.Reserve())
		f := &force{id: id, typ: kind, deviceID: base.id, owner: base, motor: motor, isRumble: true, status: ForceStatusInactive}
		base.forces[id] = f
		return f, nil
	}

	eh, err := base.provider.CreateEffect(base.handle, motor, kind)
	if err != nil {
		return nil, fmt.Errorf("crossput: create effect: %w", ErrCapabilityMismatch)
	}
	id := ID(idAllocator.Reserve())
	f := &force{id: id, typ: kind, deviceID: base.id, owner: base, motor: motor, handle: eh, params: ForceParams{Type: kind}, status: ForceStatusInactive}
	base.forces[id] = f
	return f, nil
}

// SetMotorGain clamps g to [0,1], stores it for dev's motor, and pushes it
// to the backend. If motor 0 hosts an active rumble, the rumble is
// re-committed so the audible effect updates immediately (spec §4.6).
func SetMotorGain(dev Device, motor int, g float32) error {
	if err := checkReentrant(); err != nil {
		return err
	}
	base, motor, ok := resolveDeviceMotor(dev, motor)
	if !ok || !base.connected {
		return fmt.Errorf("crossput: invalid motor %d: %w", motor, ErrCapabilityMismatch)
	}
	g = clamp01f(g)
	base.motorGains[motor] = g
	_ = base.provider.SetMotorGain(base.handle, motor, g)

	for _, f := range base.forces {
		if f.isRumble && f.motor == motor {
			_ = f.submitRumble()
		}
	}
	return nil
}
