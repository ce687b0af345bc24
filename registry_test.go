package crossput

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// discoverOnceProvider always reports the same fixed hardware set, so a
// second DiscoverDevices call must be a no-op (hardware identities are
// deduplicated by the registry, not by the provider).
type discoverOnceProvider struct {
	fakeProvider
	name string
	hw   []Discovered
}

func (p *discoverOnceProvider) Name() string                   { return p.name }
func (p *discoverOnceProvider) Discover() ([]Discovered, error) { return p.hw, nil }

func TestDiscoverDevicesIsIdempotent(t *testing.T) {
	p := &discoverOnceProvider{
		name: "registry-test-provider",
		hw:   []Discovered{{HardwareID: fakeHWID{"registry-test-hw"}, Type: DeviceMouse}},
	}
	RegisterProvider(p)

	first, err := DiscoverDevices()
	require.NoError(t, err)
	require.Len(t, first, 1)
	t.Cleanup(func() { destroyOne(first[0]) })

	second, err := DiscoverDevices()
	require.NoError(t, err)
	require.Empty(t, second, "re-discovery without hardware changes must create zero additional devices")
}

func TestDestroyDeviceRemovesFromRegistry(t *testing.T) {
	id := newTestMouse(t, "destroy-me")
	require.NoError(t, DestroyDevice(id))

	_, ok := GetDevice(id)
	require.False(t, ok)
}

func TestBackendEnabledAllowlistSkipsDisabledProviders(t *testing.T) {
	p := &discoverOnceProvider{
		name: "registry-test-disabled-provider",
		hw:   []Discovered{{HardwareID: fakeHWID{"registry-test-disabled-hw"}, Type: DeviceMouse}},
	}
	RegisterProvider(p)
	t.Cleanup(func() { SetOptions(DefaultOptions()) })

	SetOptions(Options{EnabledBackends: []string{"some-other-backend"}})
	ids, err := DiscoverDevices()
	require.NoError(t, err)
	require.Empty(t, ids, "a provider not in EnabledBackends must be skipped entirely")
}
