package crossput

import (
	"fmt"

	"github.com/Alia5/crossput/internal/idalloc"
	"github.com/Alia5/crossput/internal/registry"
)

var (
	idAllocator idalloc.Allocator
	devices     = registry.New()
	knownHW     = map[string]ID{} // provider name + hardware id string -> device id, for Discover dedup
	options     = DefaultOptions()
)

// SetOptions installs o as the active configuration; DiscoverDevices reads
// o.EnabledBackends to restrict which registered providers it queries.
func SetOptions(o Options) {
	options = o
}

func hwKey(providerName string, hw HardwareID) string {
	return providerName + "\x00" + hw.String()
}

// DiscoverDevices asks every registered backend to enumerate attached
// hardware and creates a device for each hardware id not already known.
// Newly created devices fire DeviceDiscovered; existing devices are left
// untouched (spec §4.8).
func DiscoverDevices() ([]ID, error) {
	if err := checkReentrant(); err != nil {
		return nil, err
	}

	var created []ID
	for _, p := range registeredProviders {
		if !options.BackendEnabled(p.Name()) {
			continue
		}
		found, err := p.Discover()
		if err != nil {
			return created, fmt.Errorf("crossput: discover via %s: %w", p.Name(), err)
		}
		for _, d := range found {
			key := hwKey(p.Name(), d.HardwareID)
			if _, ok := knownHW[key]; ok {
				continue
			}
			id := ID(idAllocator.Reserve())
			var dev any
			switch d.Type {
			case DeviceMouse:
				dev = newMouse(id, d.HardwareID, p)
			case DeviceKeyboard:
				dev = newKeyboard(id, d.HardwareID, p)
			case DeviceGamepad:
				dev = newGamepad(id, d.HardwareID, p)
			default:
				continue
			}
			knownHW[key] = id
			devices.Put(uint64(id), dev)
			created = append(created, id)
			logger.Info("device discovered", "id", id, "type", d.Type, "provider", p.Name())
			dispatchDeviceStatus(id, DeviceDiscovered)
		}
	}
	return created, nil
}

// UpdateAllDevices calls Update on every registered, non-aggregate-member
// device (aggregates update their members directly as part of their own
// Update, so members are skipped here per spec §4.8).
func UpdateAllDevices() error {
	if err := checkReentrant(); err != nil {
		return err
	}
	var firstErr error
	devices.Each(func(id uint64, v any) {
		if isAggregateMember(ID(id)) {
			return
		}
		if dev, ok := v.(Device); ok {
			if err := dev.Update(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// DestroyAllDevices destroys every known device.
func DestroyAllDevices() error {
	if err := checkReentrant(); err != nil {
		return err
	}
	var ids []ID
	devices.Each(func(id uint64, v any) { ids = append(ids, ID(id)) })
	for _, id := range ids {
		_ = DestroyDevice(id)
	}
	return nil
}

// GetDeviceCount returns the number of known devices.
func GetDeviceCount() int {
	return devices.Len()
}

// GetDevice looks up a device by id.
func GetDevice(id ID) (Device, bool) {
	v, ok := devices.Get(uint64(id))
	if !ok {
		return nil, false
	}
	dev, ok := v.(Device)
	return dev, ok
}

// GetDevices returns every known device.
func GetDevices() []Device {
	var out []Device
	devices.Each(func(id uint64, v any) {
		if dev, ok := v.(Device); ok {
			out = append(out, dev)
		}
	})
	return out
}

// GetMice returns every known mouse device, including aggregates.
func GetMice() []Mouse {
	var out []Mouse
	devices.Each(func(id uint64, v any) {
		if dev, ok := v.(Mouse); ok {
			out = append(out, dev)
		}
	})
	return out
}

// GetKeyboards returns every known keyboard device, including aggregates.
func GetKeyboards() []Keyboard {
	var out []Keyboard
	devices.Each(func(id uint64, v any) {
		if dev, ok := v.(Keyboard); ok {
			out = append(out, dev)
		}
	})
	return out
}

// GetGamepads returns every known gamepad device, including aggregates.
func GetGamepads() []Gamepad {
	var out []Gamepad
	devices.Each(func(id uint64, v any) {
		if dev, ok := v.(Gamepad); ok {
			out = append(out, dev)
		}
	})
	return out
}

// DestroyDevice releases a device's resources, cascades destruction to any
// aggregate depending on it, and removes it from the registry.
func DestroyDevice(id ID) error {
	if err := checkReentrant(); err != nil {
		return err
	}
	if err := destroyHierarchy(id); err != nil {
		logger.Warn("destroy failed", "id", id, "error", err)
		return err
	}
	logger.Info("device destroyed", "id", id)
	return nil
}

func destroyOne(id ID) {
	v, ok := devices.Get(uint64(id))
	if !ok {
		return
	}
	switch d := v.(type) {
	case *mouseDevice:
		d.destroy()
	case *keyboardDevice:
		d.destroy()
	case *gamepadDevice:
		d.destroy()
	case *aggregateMouse:
		d.destroy()
	case *aggregateKeyboard:
		d.destroy()
	case *aggregateGamepad:
		d.destroy()
	}
	events.UnregisterScope(uint64(id))
	devices.Delete(uint64(id))
	for k, v := range knownHW {
		if v == id {
			delete(knownHW, k)
		}
	}
}
