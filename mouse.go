package crossput

import (
	"math"

	"github.com/Alia5/crossput/internal/statecell"
)

// mouseDevice is the concrete crossput.Mouse pipeline (spec §4.4 "Mouse
// HandleReading").
type mouseDevice struct {
	baseDevice

	buttons    []statecell.Cell
	thresholds []float32 // mirrors buttons[i].Threshold(), kept for disconnect/reconnect persistence

	haveOffset                   bool
	haveScrollOffset             bool
	offsetX, offsetY             int64
	offsetSX, offsetSY           int64
	posX, posY, scrollX, scrollY int64
	deltaX, deltaY               int64
	deltaSX, deltaSY             int64
}

func newMouse(id ID, hwid HardwareID, provider Provider) *mouseDevice {
	m := &mouseDevice{
		baseDevice: baseDevice{id: id, typ: DeviceMouse, hwid: hwid, provider: provider, forces: map[ID]*force{}},
	}
	return m
}

func (m *mouseDevice) Update() error { return m.update(m) }

func (m *mouseDevice) preInputHandling() {
	m.deltaX, m.deltaY = 0, 0
	m.deltaSX, m.deltaSY = 0, 0
}

func (m *mouseDevice) ensureButtons() {
	if m.buttons != nil {
		return
	}
	n := m.caps.ButtonCount
	if n < 3 {
		n = 3
	}
	m.buttons = newCellSlice(n)
	if m.thresholds != nil {
		for i := 0; i < len(m.buttons) && i < len(m.thresholds); i++ {
			m.buttons[i].SetThreshold(m.thresholds[i])
		}
	}
}

func (m *mouseDevice) handleReading(ev RawEvent) {
	m.ensureButtons()
	switch ev.Kind {
	case EventMouseMove:
		if !m.haveOffset {
			m.offsetX, m.offsetY = ev.X, ev.Y
			m.posX, m.posY = ev.X, ev.Y
			m.haveOffset = true
			return
		}
		dx := ev.X - m.offsetX
		dy := ev.Y - m.offsetY
		m.offsetX, m.offsetY = ev.X, ev.Y
		if dx == 0 && dy == 0 {
			return
		}
		m.deltaX += dx
		m.deltaY += dy
		m.posX += dx
		m.posY += dy
		dispatchMouseMove(m.id, m.posX, m.posY, dx, dy)

	case EventMouseScroll:
		if !m.haveScrollOffset {
			m.offsetSX, m.offsetSY = ev.X, ev.Y
			m.scrollX, m.scrollY = ev.X, ev.Y
			m.haveScrollOffset = true
			return
		}
		dsx := ev.X - m.offsetSX
		dsy := ev.Y - m.offsetSY
		m.offsetSX, m.offsetSY = ev.X, ev.Y
		if dsx == 0 && dsy == 0 {
			return
		}
		m.deltaSX += dsx
		m.deltaSY += dsy
		m.scrollX += dsx
		m.scrollY += dsy
		dispatchMouseScroll(m.id, m.scrollX, m.scrollY, dsx, dsy)

	case EventMouseButton:
		if ev.Button < 0 || ev.Button >= len(m.buttons) {
			return
		}
		changed, state := m.buttons[ev.Button].Modify(ev.Value, ev.Timestamp)
		if changed {
			dispatchMouseButton(m.id, ev.Button, m.buttons[ev.Button].Value(), state)
		}
	}
}

func (m *mouseDevice) handleGlobalSnapshot(snap GlobalSnapshot) {
	m.ensureButtons()
	m.offsetX, m.offsetY = snap.MousePos.X, snap.MousePos.Y
	m.offsetSX, m.offsetSY = snap.MousePos.SX, snap.MousePos.SY
	m.haveOffset = true
	m.haveScrollOffset = true

	for idx, v := range snap.Buttons {
		if idx < 0 || idx >= len(m.buttons) {
			continue
		}
		changed, state := m.buttons[idx].Modify(v, snap.Timestamp)
		if changed {
			dispatchMouseButton(m.id, idx, m.buttons[idx].Value(), state)
		}
	}
}

func (m *mouseDevice) clearSession() {
	m.buttons = nil
	m.haveOffset = false
	m.haveScrollOffset = false
	m.offsetX, m.offsetY, m.offsetSX, m.offsetSY = 0, 0, 0, 0
}

func (m *mouseDevice) Position() (x, y int64)       { return m.posX, m.posY }
func (m *mouseDevice) Delta() (dx, dy int64)        { return m.deltaX, m.deltaY }
func (m *mouseDevice) Scroll() (sx, sy int64)       { return m.scrollX, m.scrollY }
func (m *mouseDevice) ScrollDelta() (sdx, sdy int64) { return m.deltaSX, m.deltaSY }

func (m *mouseDevice) ButtonCount() int {
	m.ensureButtons()
	return len(m.buttons)
}

func (m *mouseDevice) ButtonThreshold(index int) float32 {
	m.ensureButtons()
	if index < 0 || index >= len(m.buttons) {
		return 0
	}
	return m.buttons[index].Threshold()
}

func (m *mouseDevice) SetButtonThreshold(index int, t float32) {
	m.ensureButtons()
	if index < 0 || index >= len(m.buttons) {
		return
	}
	m.buttons[index].SetThreshold(t)
	if m.thresholds == nil {
		m.thresholds = make([]float32, len(m.buttons))
	}
	m.thresholds[index] = clamp01f(t)
}

func (m *mouseDevice) ButtonValue(index int) float32 {
	m.ensureButtons()
	if index < 0 || index >= len(m.buttons) {
		return 0
	}
	return m.buttons[index].Value()
}

func (m *mouseDevice) ButtonState(index int) bool {
	m.ensureButtons()
	if index < 0 || index >= len(m.buttons) {
		return false
	}
	return m.buttons[index].State()
}

func (m *mouseDevice) TimeSinceButtonChange(index int) float64 {
	m.ensureButtons()
	if index < 0 || index >= len(m.buttons) {
		return math.Inf(1)
	}
	return m.buttons[index].TimeSinceChange(now())
}
