package crossput

import (
	"math"

	"github.com/Alia5/crossput/internal/statecell"
)

// keyboardDevice is the concrete crossput.Keyboard pipeline (spec §4.4
// "Keyboard HandleReading").
type keyboardDevice struct {
	baseDevice

	keys    [NumKeyCodes]statecell.Cell
	pressed int
}

func newKeyboard(id ID, hwid HardwareID, provider Provider) *keyboardDevice {
	k := &keyboardDevice{
		baseDevice: baseDevice{id: id, typ: DeviceKeyboard, hwid: hwid, provider: provider, forces: map[ID]*force{}},
	}
	for i := range k.keys {
		k.keys[i] = statecell.NewCell(0.5)
	}
	return k
}

func (k *keyboardDevice) Update() error { return k.update(k) }

func (k *keyboardDevice) preInputHandling() {}

func (k *keyboardDevice) handleReading(ev RawEvent) {
	if ev.Kind != EventKeyboardKey || !IsValidKey(ev.Key) {
		return
	}
	changed, state := k.keys[ev.Key].ModifyCounted(ev.Value, ev.Timestamp, &k.pressed)
	if changed {
		dispatchKeyboardKey(k.id, ev.Key, k.keys[ev.Key].Value(), state)
	}
}

func (k *keyboardDevice) handleGlobalSnapshot(snap GlobalSnapshot) {
	for key, v := range snap.Keys {
		if !IsValidKey(key) {
			continue
		}
		changed, state := k.keys[key].ModifyCounted(v, snap.Timestamp, &k.pressed)
		if changed {
			dispatchKeyboardKey(k.id, key, k.keys[key].Value(), state)
		}
	}
}

func (k *keyboardDevice) clearSession() {
	for i := range k.keys {
		th := k.keys[i].Threshold()
		k.keys[i] = statecell.NewCell(th)
	}
	k.pressed = 0
}

func (k *keyboardDevice) NumKeysPressed() int { return k.pressed }

func (k *keyboardDevice) KeyThreshold(key Key) float32 {
	if !IsValidKey(key) {
		return 0
	}
	return k.keys[key].Threshold()
}

func (k *keyboardDevice) SetKeyThreshold(key Key, t float32) {
	if !IsValidKey(key) {
		return
	}
	k.keys[key].SetThreshold(t)
}

func (k *keyboardDevice) KeyValue(key Key) float32 {
	if !IsValidKey(key) {
		return 0
	}
	return k.keys[key].Value()
}

func (k *keyboardDevice) KeyState(key Key) bool {
	if !IsValidKey(key) {
		return false
	}
	return k.keys[key].State()
}

func (k *keyboardDevice) TimeSinceKeyChange(key Key) float64 {
	if !IsValidKey(key) {
		return math.Inf(1)
	}
	return k.keys[key].TimeSinceChange(now())
}
