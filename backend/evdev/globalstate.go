package evdev

import (
	"time"

	"github.com/Alia5/crossput"
)

// GlobalState performs a whole-device query via EVIOCGKEY/EVIOCGABS,
// used to resynchronize after a buffer overrun (spec §4.4
// "HandleBufferOverrun").
func (p *Provider) GlobalState(h crossput.Handle) (crossput.GlobalSnapshot, error) {
	hd := h.(*devHandle)
	hd.mu.Lock()
	defer hd.mu.Unlock()

	snap := crossput.GlobalSnapshot{
		Timestamp: uint64(time.Now().UnixMicro()),
		Buttons:   map[int]float32{},
		Keys:      map[crossput.Key]float32{},
		GpButtons: map[crossput.Button]float32{},
	}
	snap.MousePos.X, snap.MousePos.Y = hd.cumX, hd.cumY
	snap.MousePos.SX, snap.MousePos.SY = hd.cumSX, hd.cumSY

	keyBits := make([]byte, (keyMax+8)/8)
	if err := ioctlBytes(hd.fd(), eviocgkey, keyBits); err != nil {
		return snap, err
	}

	for code := 0; code <= keyMax; code++ {
		if !testBit(keyBits, code) {
			continue
		}
		v := float32(1)
		if idx, ok := mouseButtonIndex(uint16(code)); ok {
			snap.Buttons[idx] = v
			continue
		}
		if b, ok := ButtonFromRaw(uint16(code)); ok {
			if hd.dpadIsHat && isDpadButton(uint16(code)) {
				continue
			}
			snap.GpButtons[b] = v
			continue
		}
		if k, ok := KeyFromRaw(uint16(code)); ok {
			snap.Keys[k] = v
		}
	}

	sticks := map[int]*struct{ X, Y float32 }{}
	for code, norm := range hd.absNorms {
		infoBuf := make([]byte, 24)
		if err := ioctlBytes(hd.fd(), evIOCGAbs(int(code)), infoBuf); err != nil {
			continue
		}
		v := norm.normalize(readAbsInfo(infoBuf).Value)

		switch code {
		case absX, absY:
			s := stickSlot(sticks, 0)
			if code == absX {
				s.X = v
			} else {
				s.Y = v
			}
		case absRX, absRY:
			s := stickSlot(sticks, 1)
			if code == absRX {
				s.X = v
			} else {
				s.Y = v
			}
		case absZ, absRZ:
			analog := v
			if norm.min < 0 {
				analog = (v + 1) / 2
			}
			if code == absZ {
				snap.GpButtons[crossput.ButtonL2] = clampF32(analog, 0, 1)
			} else {
				snap.GpButtons[crossput.ButtonR2] = clampF32(analog, 0, 1)
			}
		case absHat0X:
			if v > 0 {
				snap.GpButtons[crossput.ButtonDpadRight] = v
			} else if v < 0 {
				snap.GpButtons[crossput.ButtonDpadLeft] = -v
			}
		case absHat0Y:
			if v > 0 {
				snap.GpButtons[crossput.ButtonDpadDown] = v
			} else if v < 0 {
				snap.GpButtons[crossput.ButtonDpadUp] = -v
			}
		}
	}
	maxStick := -1
	for i := range sticks {
		if i > maxStick {
			maxStick = i
		}
	}
	if maxStick >= 0 {
		snap.Sticks = make([]struct{ X, Y float32 }, maxStick+1)
		for i, s := range sticks {
			snap.Sticks[i] = *s
		}
	}
	return snap, nil
}

func stickSlot(m map[int]*struct{ X, Y float32 }, i int) *struct{ X, Y float32 } {
	s, ok := m[i]
	if !ok {
		s = &struct{ X, Y float32 }{}
		m[i] = s
	}
	return s
}
