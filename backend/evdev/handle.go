package evdev

import (
	"os"
	"sync"

	"github.com/Alia5/crossput"
)

// devHandle is the crossput.Handle for an open /dev/input/eventN file.
type devHandle struct {
	mu   sync.Mutex
	file *os.File
	hwid hardwareID
	typ  crossput.DeviceType

	absNorms map[uint16]absNorm
	motors   int
	rumbleID int16

	// cumX/cumY/cumSX/cumSY are the backend's own running cumulative
	// counters, since evdev reports relative motion as deltas but
	// crossput.RawEvent expects a cumulative position (spec §4.4).
	cumX, cumY, cumSX, cumSY int64
	hasHiResWheel            bool
	dpadIsHat                bool

	lastEventTime uint64
	closed        bool
}

func (h *devHandle) fd() int {
	return int(h.file.Fd())
}
