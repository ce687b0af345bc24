package crossput

import (
	"math"

	"github.com/Alia5/crossput/internal/statecell"
)

// gamepadDevice is the concrete crossput.Gamepad pipeline (spec §4.4
// "Gamepad HandleReading").
type gamepadDevice struct {
	baseDevice

	buttons [NumButtonCodes]statecell.Cell
	sticks  []struct{ X, Y float32 }
}

func newGamepad(id ID, hwid HardwareID, provider Provider) *gamepadDevice {
	g := &gamepadDevice{
		baseDevice: baseDevice{id: id, typ: DeviceGamepad, hwid: hwid, provider: provider, forces: map[ID]*force{}},
	}
	for i := range g.buttons {
		g.buttons[i] = statecell.NewCell(0.5)
	}
	return g
}

func (g *gamepadDevice) Update() error { return g.update(g) }

func (g *gamepadDevice) preInputHandling() {}

func (g *gamepadDevice) ensureSticks() {
	n := g.caps.ThumbstickCount
	if n < 1 {
		n = 1
	}
	if len(g.sticks) >= n {
		return
	}
	grown := make([]struct{ X, Y float32 }, n)
	copy(grown, g.sticks)
	g.sticks = grown
}

func (g *gamepadDevice) handleReading(ev RawEvent) {
	g.ensureSticks()
	switch ev.Kind {
	case EventGamepadButton:
		if !IsValidButton(ev.Button2) {
			return
		}
		changed, state := g.buttons[ev.Button2].Modify(ev.Value, ev.Timestamp)
		if changed {
			dispatchGamepadButton(g.id, ev.Button2, g.buttons[ev.Button2].Value(), state)
		}

	case EventGamepadThumbstick:
		if ev.Stick < 0 {
			return
		}
		if ev.Stick >= len(g.sticks) {
			grown := make([]struct{ X, Y float32 }, ev.Stick+1)
			copy(grown, g.sticks)
			g.sticks = grown
		}
		changed := false
		if ev.StickXValid && g.sticks[ev.Stick].X != ev.StickX {
			g.sticks[ev.Stick].X = ev.StickX
			changed = true
		}
		if ev.StickYValid {
			y := -ev.StickY
			if g.sticks[ev.Stick].Y != y {
				g.sticks[ev.Stick].Y = y
				changed = true
			}
		}
		if changed {
			dispatchGamepadThumbstick(g.id, ev.Stick, g.sticks[ev.Stick].X, g.sticks[ev.Stick].Y)
		}
	}
}

func (g *gamepadDevice) handleGlobalSnapshot(snap GlobalSnapshot) {
	g.ensureSticks()
	for b, v := range snap.GpButtons {
		if !IsValidButton(b) {
			continue
		}
		changed, state := g.buttons[b].Modify(v, snap.Timestamp)
		if changed {
			dispatchGamepadButton(g.id, b, g.buttons[b].Value(), state)
		}
	}
	if len(snap.Sticks) > len(g.sticks) {
		grown := make([]struct{ X, Y float32 }, len(snap.Sticks))
		copy(grown, g.sticks)
		g.sticks = grown
	}
	for i, s := range snap.Sticks {
		y := -s.Y
		if g.sticks[i].X != s.X || g.sticks[i].Y != y {
			g.sticks[i].X, g.sticks[i].Y = s.X, y
			dispatchGamepadThumbstick(g.id, i, s.X, y)
		}
	}
}

func (g *gamepadDevice) clearSession() {
	for i := range g.buttons {
		th := g.buttons[i].Threshold()
		g.buttons[i] = statecell.NewCell(th)
	}
	g.sticks = nil
}

func (g *gamepadDevice) ButtonThreshold(b Button) float32 {
	if !IsValidButton(b) {
		return 0
	}
	return g.buttons[b].Threshold()
}

func (g *gamepadDevice) SetButtonThreshold(b Button, t float32) {
	if !IsValidButton(b) {
		return
	}
	g.buttons[b].SetThreshold(t)
}

func (g *gamepadDevice) ButtonValue(b Button) float32 {
	if !IsValidButton(b) {
		return 0
	}
	return g.buttons[b].Value()
}

func (g *gamepadDevice) ButtonState(b Button) bool {
	if !IsValidButton(b) {
		return false
	}
	return g.buttons[b].State()
}

func (g *gamepadDevice) TimeSinceButtonChange(b Button) float64 {
	if !IsValidButton(b) {
		return math.Inf(1)
	}
	return g.buttons[b].TimeSinceChange(now())
}

func (g *gamepadDevice) ThumbstickCount() int {
	g.ensureSticks()
	return len(g.sticks)
}

func (g *gamepadDevice) Thumbstick(index int) (x, y float32) {
	g.ensureSticks()
	if index < 0 || index >= len(g.sticks) {
		return 0, 0
	}
	return g.sticks[index].X, g.sticks[index].Y
}
