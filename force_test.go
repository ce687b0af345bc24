package crossput

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGamepadWithRumble(t *testing.T, name string) (*gamepadDevice, *fakeProvider) {
	t.Helper()
	id := ID(idAllocator.Reserve())
	p := &fakeProvider{caps: Capabilities{
		MotorCount:      2,
		SupportedForces: []ForceType{ForceRumble},
	}}
	g := newGamepad(id, fakeHWID{name}, p)
	devices.Put(uint64(id), g)
	t.Cleanup(func() { destroyOne(id) })
	require.NoError(t, g.Update())
	return g, p
}

// fakeProvider.SubmitRumble doesn't record its arguments; rumbleRecorder
// wraps it to capture the last commit for TestRumbleGainUpdateRecommits.
type rumbleRecorder struct {
	*fakeProvider
	low, high float32
	calls     int
}

func (r *rumbleRecorder) SubmitRumble(h Handle, low, high float32) error {
	r.low, r.high = low, high
	r.calls++
	return nil
}

func TestRumbleGainUpdateRecommitsWithoutExplicitWriteParams(t *testing.T) {
	id := ID(idAllocator.Reserve())
	base := &fakeProvider{caps: Capabilities{
		MotorCount:      2,
		SupportedForces: []ForceType{ForceRumble},
	}}
	rec := &rumbleRecorder{fakeProvider: base}
	g := newGamepad(id, fakeHWID{"rumble"}, rec)
	devices.Put(uint64(id), g)
	t.Cleanup(func() { destroyOne(id) })
	require.NoError(t, g.Update())

	f, err := TryCreateForce(g, 0, ForceRumble)
	require.NoError(t, err)

	require.True(t, f.WriteParams(ForceParams{Type: ForceRumble, Rumble: RumbleForceParams{LowFrequency: 1, HighFrequency: 1}}))
	require.True(t, f.Start())
	require.Equal(t, float32(1), rec.low)
	require.Equal(t, float32(1), rec.high)

	callsBeforeGain := rec.calls
	require.NoError(t, SetMotorGain(g, 0, 0.5))
	require.Greater(t, rec.calls, callsBeforeGain, "a gain change on a motor with an active rumble must recommit")
	require.Equal(t, float32(0.5), rec.low)
	require.Equal(t, float32(0.5), rec.high)
}

func TestForceOrphanedOnDisconnect(t *testing.T) {
	g, p := newTestGamepadWithRumble(t, "g")
	f, err := TryCreateForce(g, 0, ForceRumble)
	require.NoError(t, err)
	require.True(t, f.Start())
	require.Equal(t, ForceStatusActive, f.Status())

	p.connected = false
	require.NoError(t, g.Update())

	require.True(t, f.Orphaned())
	require.Equal(t, ForceStatusInactive, f.Status())
	require.False(t, f.WriteParams(ForceParams{Type: ForceRumble}))
	require.False(t, f.Start())
}

func TestCreateForceRejectsUnsupportedKind(t *testing.T) {
	g, _ := newTestGamepadWithRumble(t, "g")
	_, err := TryCreateForce(g, 0, ForceConstant)
	require.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestCreateForceRejectsDuplicateRumbleOnSameMotor(t *testing.T) {
	g, _ := newTestGamepadWithRumble(t, "g")
	_, err := TryCreateForce(g, 0, ForceRumble)
	require.NoError(t, err)

	_, err = TryCreateForce(g, 0, ForceRumble)
	require.ErrorIs(t, err, ErrCapabilityMismatch)
}
