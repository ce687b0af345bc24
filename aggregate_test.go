package crossput

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProvider is a minimal, fully-connected Provider stand-in: Open
// always succeeds, Poll returns a queued batch exactly once, and every
// force/motor hook is a no-op success. Good enough to drive the device
// pipeline through Update without a real backend.
type fakeProvider struct {
	caps      Capabilities
	events    []RawEvent
	snap      GlobalSnapshot
	connected bool
}

func (p *fakeProvider) Name() string                    { return "fake" }
func (p *fakeProvider) Discover() ([]Discovered, error)  { return nil, nil }
func (p *fakeProvider) Open(hw HardwareID) (Handle, Capabilities, error) {
	p.connected = true
	return p, p.caps, nil
}
func (p *fakeProvider) OpenPoller(h Handle) (Poller, error) { return p, nil }
func (p *fakeProvider) Poll(since uint64) ([]RawEvent, error) {
	ev := p.events
	p.events = nil
	return ev, nil
}
func (p *fakeProvider) GlobalState(h Handle) (GlobalSnapshot, error) { return p.snap, nil }
func (p *fakeProvider) Connected(h Handle) bool                      { return p.connected }
func (p *fakeProvider) Flush(h Handle)                               {}
func (p *fakeProvider) Close(h Handle) error                         { return nil }
func (p *fakeProvider) SubmitRumble(h Handle, low, high float32) error { return nil }
func (p *fakeProvider) CreateEffect(h Handle, motor int, kind ForceType) (EffectHandle, error) {
	return p, nil
}
func (p *fakeProvider) UpdateEffect(h Handle, eff EffectHandle, params ForceParams) error { return nil }
func (p *fakeProvider) StartEffect(h Handle, eff EffectHandle) error                      { return nil }
func (p *fakeProvider) StopEffect(h Handle, eff EffectHandle) error                       { return nil }
func (p *fakeProvider) DestroyEffect(h Handle, eff EffectHandle) error                    { return nil }
func (p *fakeProvider) SetMotorGain(h Handle, motor int, gain float32) error              { return nil }
func (p *fakeProvider) QueryEffectStatus(h Handle, eff EffectHandle) ForceStatus          { return ForceStatusInactive }

type fakeHWID struct{ id string }

func (h fakeHWID) Equal(other HardwareID) bool {
	o, ok := other.(fakeHWID)
	return ok && o.id == h.id
}
func (h fakeHWID) String() string { return h.id }

func newTestMouse(t *testing.T, name string) ID {
	t.Helper()
	id := ID(idAllocator.Reserve())
	p := &fakeProvider{caps: Capabilities{ButtonCount: 3, DisplayName: name}}
	m := newMouse(id, fakeHWID{name}, p)
	devices.Put(uint64(id), m)
	t.Cleanup(func() { destroyOne(id) })
	require.NoError(t, m.Update()) // drives open(), so Connected() becomes true
	return id
}

func TestAggregateSingleMemberReturnsItDirectly(t *testing.T) {
	a := newTestMouse(t, "a")
	dev, err := Aggregate([]ID{a})
	require.NoError(t, err)
	require.Equal(t, a, dev.ID())
	require.False(t, dev.IsAggregate())
}

func TestAggregateIdentityIsMemoized(t *testing.T) {
	a := newTestMouse(t, "a")
	b := newTestMouse(t, "b")

	first, err := Aggregate([]ID{a, b})
	require.NoError(t, err)
	require.True(t, first.IsAggregate())

	second, err := Aggregate([]ID{b, a})
	require.NoError(t, err)
	require.Equal(t, first.ID(), second.ID(), "same member multiset must return the same aggregate")

	t.Cleanup(func() { destroyOne(first.ID()) })
}

func TestAggregateRejectsMixedTypes(t *testing.T) {
	mouseID := newTestMouse(t, "m")

	kbID := ID(idAllocator.Reserve())
	p := &fakeProvider{caps: Capabilities{}}
	kb := newKeyboard(kbID, fakeHWID{"kb"}, p)
	devices.Put(uint64(kbID), kb)
	require.NoError(t, kb.Update())
	t.Cleanup(func() { destroyOne(kbID) })

	_, err := Aggregate([]ID{mouseID, kbID})
	require.Error(t, err)
}

func TestAggregateConnectivityRequiresAllMembers(t *testing.T) {
	a := newTestMouse(t, "a")
	b := newTestMouse(t, "b")

	agg, err := Aggregate([]ID{a, b})
	require.NoError(t, err)
	t.Cleanup(func() { destroyOne(agg.ID()) })

	require.NoError(t, agg.Update())
	require.True(t, agg.Connected(), "aggregate must be connected once every member has updated while connected")

	memberB, ok := GetDevice(b)
	require.True(t, ok)
	memberB.(*mouseDevice).provider.(*fakeProvider).connected = false

	require.NoError(t, agg.Update())
	require.False(t, agg.Connected(), "aggregate must drop to disconnected the moment any member is")
}

func TestAggregateMouseSumsBaselineDeltas(t *testing.T) {
	a := newTestMouse(t, "a")
	b := newTestMouse(t, "b")

	agg, err := Aggregate([]ID{a, b})
	require.NoError(t, err)
	t.Cleanup(func() { destroyOne(agg.ID()) })
	require.NoError(t, agg.Update())

	memberA, _ := GetDevice(a)
	memberB, _ := GetDevice(b)
	ma := memberA.(*mouseDevice)
	mb := memberB.(*mouseDevice)
	ma.provider.(*fakeProvider).events = []RawEvent{{Kind: EventMouseMove, X: 10, Y: 5, Timestamp: 1000}}
	mb.provider.(*fakeProvider).events = []RawEvent{{Kind: EventMouseMove, X: 3, Y: -2, Timestamp: 1000}}

	require.NoError(t, agg.Update())

	aggMouse := agg.(Mouse)
	dx, dy := aggMouse.Delta()
	require.Equal(t, int64(13), dx)
	require.Equal(t, int64(3), dy)
}

func TestDestroyHierarchyCascadesOutermostFirst(t *testing.T) {
	a := newTestMouse(t, "a")
	b := newTestMouse(t, "b")

	inner, err := Aggregate([]ID{a, b})
	require.NoError(t, err)

	c := newTestMouse(t, "c")
	outer, err := Aggregate([]ID{inner.ID(), c})
	require.NoError(t, err)

	require.NoError(t, DestroyDevice(inner.ID()))

	_, ok := GetDevice(inner.ID())
	require.False(t, ok, "destroying a member aggregate must cascade to destroy its containing aggregate")
	_, ok = GetDevice(outer.ID())
	require.False(t, ok)

	_, ok = GetDevice(a)
	require.True(t, ok, "leaf members must survive their aggregate's destruction")
	_, ok = GetDevice(c)
	require.True(t, ok)
}
