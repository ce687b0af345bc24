package evdev

import (
	"fmt"

	"github.com/Alia5/crossput"
)

// hardwareIDTier orders the identity strategies from most to least
// confident, per spec §6 "Platform-specific hardware identity".
type hardwareIDTier uint8

const (
	tierUnique   hardwareIDTier = iota // driver-supplied unique ID string (EVIOCGUNIQ)
	tierPhysBus                        // physical location string + (bustype,vendor,product,version)
	tierEphemeral                      // /dev/input/eventN index
)

type busTuple struct {
	bustype, vendor, product, version uint16
}

// hardwareID is the Linux/evdev HardwareID implementation. Equality is
// defined per tier: two IDs only compare equal if they resolved to the same
// tier and that tier's fields match.
type hardwareID struct {
	tier  hardwareIDTier
	uniq  string
	phys  string
	bus   busTuple
	index uint
}

func newHardwareID(uniq, phys string, bus busTuple, index uint) hardwareID {
	if uniq != "" {
		return hardwareID{tier: tierUnique, uniq: uniq}
	}
	if phys != "" {
		return hardwareID{tier: tierPhysBus, phys: phys, bus: bus}
	}
	return hardwareID{tier: tierEphemeral, index: index}
}

// Equal implements crossput.HardwareID.
func (h hardwareID) Equal(other crossput.HardwareID) bool {
	o, ok := other.(hardwareID)
	if !ok {
		return false
	}
	if h.tier != o.tier {
		return false
	}
	switch h.tier {
	case tierUnique:
		return h.uniq == o.uniq
	case tierPhysBus:
		return h.phys == o.phys && h.bus == o.bus
	default:
		return h.index == o.index
	}
}

func (h hardwareID) String() string {
	switch h.tier {
	case tierUnique:
		return fmt.Sprintf("uniq:%s", h.uniq)
	case tierPhysBus:
		return fmt.Sprintf("phys:%s/%04x:%04x:%04x:%04x", h.phys, h.bus.bustype, h.bus.vendor, h.bus.product, h.bus.version)
	default:
		return fmt.Sprintf("event%d", h.index)
	}
}
