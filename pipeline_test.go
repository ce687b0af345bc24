package crossput

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMouseDeltaAccumulation(t *testing.T) {
	id := newTestMouse(t, "m")
	dev, _ := GetDevice(id)
	m := dev.(*mouseDevice)
	p := m.provider.(*fakeProvider)

	p.events = []RawEvent{
		{Kind: EventMouseMove, X: 100, Y: 0, Timestamp: 1000},
		{Kind: EventMouseMove, X: 100, Y: 50, Timestamp: 1001},
		{Kind: EventMouseMove, X: 140, Y: 50, Timestamp: 1002},
	}
	require.NoError(t, m.Update())

	x, y := m.Position()
	require.Equal(t, int64(140), x)
	require.Equal(t, int64(50), y)
	dx, dy := m.Delta()
	require.Equal(t, int64(40), dx)
	require.Equal(t, int64(50), dy)

	require.NoError(t, m.Update())
	dx, dy = m.Delta()
	require.Equal(t, int64(0), dx, "an update with no readings must yield a zero delta")
	require.Equal(t, int64(0), dy)
	x2, y2 := m.Position()
	require.Equal(t, x, x2, "position must be unchanged when no readings arrive")
	require.Equal(t, y, y2)
}

func TestKeyboardPressedCounter(t *testing.T) {
	id := ID(idAllocator.Reserve())
	p := &fakeProvider{caps: Capabilities{}}
	kb := newKeyboard(id, fakeHWID{"kb"}, p)
	devices.Put(uint64(id), kb)
	t.Cleanup(func() { destroyOne(id) })
	require.NoError(t, kb.Update())

	p.events = []RawEvent{
		{Kind: EventKeyboardKey, Key: KeyA, Value: 1.0, Timestamp: 1000},
		{Kind: EventKeyboardKey, Key: KeyB, Value: 1.0, Timestamp: 1100},
		{Kind: EventKeyboardKey, Key: KeyA, Value: 0.0, Timestamp: 1200},
	}
	require.NoError(t, kb.Update())

	require.Equal(t, 1, kb.NumKeysPressed())
	require.False(t, kb.KeyState(KeyA))
	require.True(t, kb.KeyState(KeyB))
}

func TestGamepadThumbstickYNegation(t *testing.T) {
	id := ID(idAllocator.Reserve())
	p := &fakeProvider{caps: Capabilities{ThumbstickCount: 1}}
	g := newGamepad(id, fakeHWID{"gp"}, p)
	devices.Put(uint64(id), g)
	t.Cleanup(func() { destroyOne(id) })
	require.NoError(t, g.Update())

	p.events = []RawEvent{
		{Kind: EventGamepadThumbstick, Stick: 0, StickX: 0, StickXValid: true, StickY: -1, StickYValid: true, Timestamp: 1000},
	}
	require.NoError(t, g.Update())

	x, y := g.Thumbstick(0)
	require.Equal(t, float32(0), x)
	require.Equal(t, float32(1), y, "a raw axis normalized to -1 must be stored negated")
}

func TestDisconnectResetsObservableState(t *testing.T) {
	id := newTestMouse(t, "m")
	dev, _ := GetDevice(id)
	m := dev.(*mouseDevice)
	p := m.provider.(*fakeProvider)

	require.True(t, m.Connected())
	require.NotEmpty(t, m.DisplayName())

	p.connected = false
	require.NoError(t, m.Update())

	require.False(t, m.Connected())
	require.Equal(t, "", m.DisplayName())
	require.Equal(t, float32(0), m.ButtonValue(0))
	require.False(t, m.ButtonState(0))
	require.True(t, math.IsInf(m.TimeSinceButtonChange(0), 1))
}

func TestBufferOverrunDiscardsPreOverrunReadingsAndResyncs(t *testing.T) {
	id := ID(idAllocator.Reserve())
	p := &fakeProvider{caps: Capabilities{ButtonCount: 3}}
	m := newMouse(id, fakeHWID{"m"}, p)
	devices.Put(uint64(id), m)
	t.Cleanup(func() { destroyOne(id) })
	require.NoError(t, m.Update())

	p.events = []RawEvent{
		{Kind: EventMouseButton, Button: 0, Value: 1.0, Timestamp: 1000},
		{Kind: EventMouseButton, Button: 1, Value: 1.0, Timestamp: 1001},
		{Kind: EventMouseButton, Button: 2, Value: 1.0, Timestamp: 1002},
		{Kind: EventOverrun, Timestamp: 1003},
		{Kind: EventMouseButton, Button: 0, Value: 0.0, Timestamp: 1004},
	}
	p.snap = GlobalSnapshot{
		Timestamp: 1003,
		Buttons:   map[int]float32{0: 0, 1: 1, 2: 0},
	}
	require.NoError(t, m.Update())

	require.False(t, m.ButtonState(0))
	require.True(t, m.ButtonState(1))
	require.False(t, m.ButtonState(2), "a reading queued after the overrun marker must never be applied")
}

func TestReentrancyGuardRejectsMutationFromCallbackAndClearsAfter(t *testing.T) {
	id := newTestMouse(t, "m")
	var reentrantErr error
	cb := RegisterDeviceStatusCallback(0, true, DeviceConnected, func(DeviceStatusEvent) {
		_, reentrantErr = DiscoverDevices()
	})
	t.Cleanup(func() { _ = UnregisterCallback(cb) })

	dev, _ := GetDevice(id)
	m := dev.(*mouseDevice)
	p := m.provider.(*fakeProvider)
	p.connected = false
	require.NoError(t, m.Update()) // disconnect
	p.connected = true
	require.NoError(t, m.Update()) // reconnect fires DeviceConnected, invoking the callback above

	require.ErrorIs(t, reentrantErr, ErrReentrantMutation)
	require.False(t, insideCallback, "the reentrancy flag must be cleared once the handler returns")

	_, err := DiscoverDevices()
	require.NoError(t, err, "a subsequent external call must succeed once the guard has cleared")
}
