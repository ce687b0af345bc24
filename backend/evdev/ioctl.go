package evdev

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Raw ioctl numbers and wire structs for the Linux input subsystem
// (linux/input.h). golang.org/x/sys/unix exposes the generic ioctl
// syscall primitives but not these device-specific request codes, so they
// are reproduced here; the layout is part of the stable kernel uAPI.
const (
	eviocgversion = 0x80044501
	eviocgid      = 0x80084502
	eviocgbitBase = 0x20 // EVIOCGBIT(ev, len) request number base, OR'd with len in the high bits by evIOCGBit
	eviocgabsBase = 0x40
	eviocgkey     = 0x80404518
	eviocgname    = 0x81004506
	eviocgphys    = 0x81004507
	eviocguniq    = 0x81004508
	eviocgrab     = 0x40044590
	eviocsff      = 0x40304580
	eviocrmff     = 0x40044581
	eviocgeffects = 0x80044584
	eviocsclockid = 0x400440a0
)

// inputEvent mirrors struct input_event (64-bit time_t/suseconds_t ABI).
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const inputEventSize = int(unsafe.Sizeof(inputEvent{}))

// inputAbsinfo mirrors struct input_absinfo.
type inputAbsinfo struct {
	Value, Minimum, Maximum, Fuzz, Flat, Resolution int32
}

// inputID mirrors struct input_id.
type inputID struct {
	Bustype, Vendor, Product, Version uint16
}

func evIOCGBit(evType, length int) uintptr {
	// _IOC(_IOC_READ, 'E', 0x20+evType, length)
	return iocRead('E', eviocgbitBase+evType, length)
}

func evIOCGAbs(code int) uintptr {
	return iocRead('E', eviocgabsBase+code, int(unsafe.Sizeof(inputAbsinfo{})))
}

func iocRead(typ byte, nr, size int) uintptr {
	const iocRead = 2
	return (uintptr(iocRead) << 30) | (uintptr(typ) << 8) | uintptr(nr) | (uintptr(size) << 16)
}

func ioctlBytes(fd int, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// testBit reports whether bit `code` is set in a little-endian capability
// bitmap as returned by EVIOCGBIT/EVIOCGKEY.
func testBit(bitmap []byte, code int) bool {
	byteIdx := code / 8
	if byteIdx >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]&(1<<uint(code%8)) != 0
}

func readAbsInfo(buf []byte) inputAbsinfo {
	return inputAbsinfo{
		Value:      int32(binary.LittleEndian.Uint32(buf[0:4])),
		Minimum:    int32(binary.LittleEndian.Uint32(buf[4:8])),
		Maximum:    int32(binary.LittleEndian.Uint32(buf[8:12])),
		Fuzz:       int32(binary.LittleEndian.Uint32(buf[12:16])),
		Flat:       int32(binary.LittleEndian.Uint32(buf[16:20])),
		Resolution: int32(binary.LittleEndian.Uint32(buf[20:24])),
	}
}
