package evdev

import "github.com/Alia5/crossput"

// capabilityBitmaps is the subset of a device's evdev capability report
// that device-type deduction needs: which event types it supports, and
// which key/button/abs codes it exposes within EV_KEY/EV_ABS.
type capabilityBitmaps struct {
	hasRel, hasAbs, hasFF bool
	keyCodes              []uint16
}

// deduceDeviceType implements spec §4.3's weighted-evidence rule, ported
// from the reference backend's DeduceInputDeviceType: EV_REL favors Mouse,
// EV_ABS and EV_FF favor Gamepad (each penalizing the other two types by 1);
// overlap with the portable keycode/button tables adds a weighted bonus
// (mouse+2, keyboard+3, gamepad+2 per matching code); overlap with the
// digitizer/stylus blacklist subtracts from all three. The winner is
// accepted only if its net evidence exceeds 1.
func deduceDeviceType(caps capabilityBitmaps) crossput.DeviceType {
	var mouse, keyboard, gamepad int

	if caps.hasRel {
		mouse++
		keyboard--
		gamepad--
	}
	if caps.hasAbs {
		gamepad++
		mouse--
		keyboard--
	}
	if caps.hasFF {
		gamepad++
		mouse--
		keyboard--
	}

	for _, code := range caps.keyCodes {
		if devrecogAvoid[code] {
			mouse--
			keyboard--
			gamepad--
			continue
		}
		if devrecogMouse[code] {
			mouse += 2
			continue
		}
		if _, ok := reverseKeycodeMapping[code]; ok {
			keyboard += 3
		}
		if _, ok := reverseButtonMapping[code]; ok {
			gamepad += 2
		}
	}

	best := crossput.DeviceUnknown
	bestScore := 1 // must exceed 1 to win
	if mouse > bestScore {
		bestScore = mouse
		best = crossput.DeviceMouse
	}
	if keyboard > bestScore {
		bestScore = keyboard
		best = crossput.DeviceKeyboard
	}
	if gamepad > bestScore {
		bestScore = gamepad
		best = crossput.DeviceGamepad
	}
	return best
}
