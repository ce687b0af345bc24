package crossput

import (
	"time"

	"github.com/Alia5/crossput/internal/statecell"
)

// reader is implemented by each device-type's pipeline to fold readings and
// whole-device snapshots into its own state cells (spec §4.4).
type reader interface {
	preInputHandling()
	handleReading(ev RawEvent)
	handleGlobalSnapshot(snap GlobalSnapshot)
	clearSession()
}

// baseDevice carries the fields and transitions common to every real
// (non-aggregate) device: hardware identity, provider/handle, connection
// state, and the watermark used to resume polling (spec §4.4).
type baseDevice struct {
	id          ID
	typ         DeviceType
	hwid        HardwareID
	provider    Provider
	caps        Capabilities
	handle      Handle
	poller      Poller
	connected   bool
	displayName string
	watermark   uint64
	lastUpdate  uint64

	motorGains []float32
	forces     map[ID]*force
}

func (d *baseDevice) ID() ID                 { return d.id }
func (d *baseDevice) Type() DeviceType       { return d.typ }
func (d *baseDevice) DisplayName() string    { return d.displayName }
func (d *baseDevice) Connected() bool        { return d.connected }
func (d *baseDevice) IsAggregate() bool      { return false }

// MotorCount returns the number of addressable force motors, 0 while
// disconnected (motorGains is cleared on Disconnect).
func (d *baseDevice) MotorCount() int { return d.totalMotors() }

// Gain returns the last-committed gain for motor, or 0 for an out-of-range
// motor or while disconnected.
func (d *baseDevice) Gain(motor int) float32 {
	if motor < 0 || motor >= len(d.motorGains) {
		return 0
	}
	return d.motorGains[motor]
}

func now() uint64 {
	return uint64(time.Now().UnixMicro())
}

// update runs the generic Update() protocol against r, the type-specific
// reading folder, per spec §4.4.
func (d *baseDevice) update(r reader) error {
	if insideCallback {
		return ErrReentrantMutation
	}

	if !d.connected {
		if err := d.open(); err != nil {
			return nil
		}
	}

	if !d.provider.Connected(d.handle) {
		d.disconnect()
		r.clearSession()
		return nil
	}

	d.provider.Flush(d.handle)
	r.preInputHandling()

	events, err := d.poller.Poll(d.watermark)
	if err != nil {
		_ = d.provider.Close(d.handle)
		d.disconnect()
		r.clearSession()
		return nil
	}

	highest := d.watermark
	for _, ev := range events {
		if ev.Kind != EventOverrun {
			continue
		}
		// An overrun invalidates the whole batch, including readings queued
		// before the marker: resynchronize from a whole-device query instead.
		snap, err := d.provider.GlobalState(d.handle)
		if err != nil {
			_ = d.provider.Close(d.handle)
			d.disconnect()
			r.clearSession()
			return nil
		}
		r.handleGlobalSnapshot(snap)
		if snap.Timestamp > highest {
			highest = snap.Timestamp
		}
		events = nil
		break
	}
	for _, ev := range events {
		r.handleReading(ev)
		if ev.Timestamp > highest {
			highest = ev.Timestamp
		}
	}
	d.watermark = highest

	n := now()
	if n > highest {
		d.lastUpdate = n
	} else {
		d.lastUpdate = highest
	}
	return nil
}

func (d *baseDevice) open() error {
	handle, caps, err := d.provider.Open(d.hwid)
	if err != nil {
		return err
	}
	poller, err := d.provider.OpenPoller(handle)
	if err != nil {
		_ = d.provider.Close(handle)
		return err
	}
	d.handle = handle
	d.poller = poller
	d.caps = caps
	d.displayName = caps.DisplayName
	d.connected = true
	d.watermark = 0

	motors := caps.MotorCount
	d.motorGains = make([]float32, motors)
	for i := range d.motorGains {
		d.motorGains[i] = 1.0
		_ = d.provider.SetMotorGain(handle, i, 1.0)
	}
	dispatchDeviceStatus(d.id, DeviceConnected)
	return nil
}

// disconnect implements the Disconnect transition: forces are orphaned,
// the handle released, and status fired. Type-specific session state
// (button/key/axis cells, pressed counters, normalizers) is cleared by the
// caller, since that state lives on the concrete device type.
func (d *baseDevice) disconnect() {
	for _, f := range d.forces {
		f.orphaned = true
		f.status = ForceStatusInactive
	}
	if d.handle != nil {
		_ = d.provider.Close(d.handle)
	}
	d.handle = nil
	d.poller = nil
	d.connected = false
	d.displayName = ""
	d.motorGains = nil
	dispatchDeviceStatus(d.id, DeviceDisconnected)
}

// destroy releases all resources and fires the Destroyed notification.
func (d *baseDevice) destroy() {
	for _, f := range d.forces {
		f.orphaned = true
		f.status = ForceStatusInactive
	}
	if d.connected && d.handle != nil {
		_ = d.provider.Close(d.handle)
	}
	d.connected = false
	dispatchDeviceStatus(d.id, DeviceDestroyed)
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func newCellSlice(n int) []statecell.Cell {
	cells := make([]statecell.Cell, n)
	for i := range cells {
		cells[i] = statecell.NewCell(0.5)
	}
	return cells
}
