package evdev

import "github.com/Alia5/crossput"

// Raw Linux input-event-codes.h values. These are part of the stable kernel
// uAPI and are reproduced here rather than imported, since this package
// talks to /dev/input/eventN directly via golang.org/x/sys/unix rather than
// through a higher-level evdev library.
const (
	evSyn     = 0x00
	evKey     = 0x01
	evRel     = 0x02
	evAbs     = 0x03
	evMsc     = 0x04
	evSw      = 0x05
	evLed     = 0x11
	evSnd     = 0x12
	evRep     = 0x14
	evFF      = 0x15
	evPwr     = 0x16
	evFFStatus = 0x17
	evMax     = 0x1f
)

const (
	relX           = 0x00
	relY           = 0x01
	relHWheel      = 0x06
	relWheel       = 0x08
	relWheelHiRes  = 0x0b
	relHWheelHiRes = 0x0c
	relMax         = 0x0f
)

const (
	absX    = 0x00
	absY    = 0x01
	absZ    = 0x02
	absRX   = 0x03
	absRY   = 0x04
	absRZ   = 0x05
	absHat0X = 0x10
	absHat0Y = 0x11
	absMax  = 0x3f
)

const (
	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnSide    = 0x113
	btnExtra   = 0x114
	btnForward = 0x115
	btnBack    = 0x116
	btnTask    = 0x117

	btnSouth   = 0x130
	btnEast    = 0x131
	btnNorth   = 0x133
	btnWest    = 0x134
	btnTL      = 0x136
	btnTR      = 0x137
	btnTL2     = 0x138
	btnTR2     = 0x139
	btnSelect  = 0x13a
	btnStart   = 0x13b
	btnThumbL  = 0x13d
	btnThumbR  = 0x13e

	btnDpadUp    = 0x220
	btnDpadDown  = 0x221
	btnDpadLeft  = 0x222
	btnDpadRight = 0x223

	keyMax = 0x2ff
)

// devrecogAvoid blacklists codes associated with digitizers/styluses/touch
// surfaces; any overlap with this set subtracts evidence from every
// candidate device type during deduction.
var devrecogAvoid = map[uint16]bool{
	0x140: true, // BTN_TOOL_PEN
	0x141: true, // BTN_TOOL_RUBBER
	0x142: true, // BTN_TOOL_BRUSH
	0x143: true, // BTN_TOOL_PENCIL
	0x144: true, // BTN_TOOL_AIRBRUSH
	0x145: true, // BTN_TOOL_FINGER
	0x146: true, // BTN_TOOL_MOUSE
	0x147: true, // BTN_TOOL_LENS
	0x14a: true, // BTN_TOUCH
	0x14b: true, // BTN_STYLUS
	0x14c: true, // BTN_STYLUS2
}

// reverseKeycodeMapping translates raw Linux key codes to portable Key
// values. Unmapped entries are the zero value and must be checked with
// KeyFromRaw's ok return.
var reverseKeycodeMapping = map[uint16]crossput.Key{
	1:  crossput.KeyEsc,
	28: crossput.KeyEnter,
	14: crossput.KeyBackspace,
	15: crossput.KeyTab,
	57: crossput.KeySpace,
	58: crossput.KeyCapsLock,
	42: crossput.KeyShiftL,
	54: crossput.KeyShiftR,
	56: crossput.KeyAltL,
	100: crossput.KeyAltR,
	29: crossput.KeyCtrlL,
	97: crossput.KeyCtrlR,

	11: crossput.KeyNumrow0,
	2:  crossput.KeyNumrow1,
	3:  crossput.KeyNumrow2,
	4:  crossput.KeyNumrow3,
	5:  crossput.KeyNumrow4,
	6:  crossput.KeyNumrow5,
	7:  crossput.KeyNumrow6,
	8:  crossput.KeyNumrow7,
	9:  crossput.KeyNumrow8,
	10: crossput.KeyNumrow9,

	30: crossput.KeyA,
	48: crossput.KeyB,
	46: crossput.KeyC,
	32: crossput.KeyD,
	18: crossput.KeyE,
	33: crossput.KeyF,
	34: crossput.KeyG,
	35: crossput.KeyH,
	23: crossput.KeyI,
	36: crossput.KeyJ,
	37: crossput.KeyK,
	38: crossput.KeyL,
	50: crossput.KeyM,
	49: crossput.KeyN,
	24: crossput.KeyO,
	25: crossput.KeyP,
	16: crossput.KeyQ,
	19: crossput.KeyR,
	31: crossput.KeyS,
	20: crossput.KeyT,
	22: crossput.KeyU,
	47: crossput.KeyV,
	17: crossput.KeyW,
	45: crossput.KeyX,
	21: crossput.KeyY,
	44: crossput.KeyZ,

	12: crossput.KeyMinus,
	13: crossput.KeyEqual,
	26: crossput.KeyBraceL,
	27: crossput.KeyBraceR,
	39: crossput.KeySemicolon,
	40: crossput.KeyApostrophe,
	41: crossput.KeyGrave,
	51: crossput.KeyComma,
	52: crossput.KeyDot,
	53: crossput.KeySlash,
	43: crossput.KeyBackslash,
	86: crossput.Key102,

	69: crossput.KeyNumLock,
	70: crossput.KeyScrollLock,
	119: crossput.KeyPause,
	110: crossput.KeyInsert,
	111: crossput.KeyDel,
	102: crossput.KeyHome,
	107: crossput.KeyEnd,
	104: crossput.KeyPageUp,
	109: crossput.KeyPageDown,

	105: crossput.KeyLeft,
	103: crossput.KeyUp,
	106: crossput.KeyRight,
	108: crossput.KeyDown,

	82: crossput.KeyNumpad0,
	79: crossput.KeyNumpad1,
	80: crossput.KeyNumpad2,
	81: crossput.KeyNumpad3,
	75: crossput.KeyNumpad4,
	76: crossput.KeyNumpad5,
	77: crossput.KeyNumpad6,
	71: crossput.KeyNumpad7,
	72: crossput.KeyNumpad8,
	73: crossput.KeyNumpad9,
	83: crossput.KeyNumpadDecimal,
	78: crossput.KeyNumpadPlus,
	74: crossput.KeyNumpadMinus,
	55: crossput.KeyNumpadMultiply,
	98: crossput.KeyNumpadSlash,

	59: crossput.KeyF1,
	60: crossput.KeyF2,
	61: crossput.KeyF3,
	62: crossput.KeyF4,
	63: crossput.KeyF5,
	64: crossput.KeyF6,
	65: crossput.KeyF7,
	66: crossput.KeyF8,
	67: crossput.KeyF9,
	68: crossput.KeyF10,
	87: crossput.KeyF11,
	88: crossput.KeyF12,
	183: crossput.KeyF13,
	184: crossput.KeyF14,
	185: crossput.KeyF15,
	186: crossput.KeyF16,
	187: crossput.KeyF17,
	188: crossput.KeyF18,
	189: crossput.KeyF19,
	190: crossput.KeyF20,
	191: crossput.KeyF21,
	192: crossput.KeyF22,
	193: crossput.KeyF23,
	194: crossput.KeyF24,
}

// reverseButtonMapping translates raw Linux BTN_* codes to portable
// Button values for the contiguous "standard button" and "D-pad" regions.
var reverseButtonMapping = map[uint16]crossput.Button{
	btnNorth: crossput.ButtonNorth,
	btnSouth: crossput.ButtonSouth,
	btnWest:  crossput.ButtonWest,
	btnEast:  crossput.ButtonEast,

	btnDpadUp:    crossput.ButtonDpadUp,
	btnDpadDown:  crossput.ButtonDpadDown,
	btnDpadLeft:  crossput.ButtonDpadLeft,
	btnDpadRight: crossput.ButtonDpadRight,

	btnTL: crossput.ButtonL1,
	btnTL2: crossput.ButtonL2,
	btnTR: crossput.ButtonR1,
	btnTR2: crossput.ButtonR2,

	btnThumbL: crossput.ButtonThumbstickL,
	btnThumbR: crossput.ButtonThumbstickR,

	btnSelect: crossput.ButtonSelect,
	btnStart:  crossput.ButtonStart,
}

// devrecogMouse lists BTN_* codes that are mouse-specific evidence during
// device-type deduction.
var devrecogMouse = map[uint16]bool{
	btnLeft: true, btnRight: true, btnMiddle: true,
	btnSide: true, btnExtra: true, btnForward: true, btnBack: true, btnTask: true,
}

// KeyFromRaw maps a raw key code to its portable Key, if any.
func KeyFromRaw(code uint16) (crossput.Key, bool) {
	k, ok := reverseKeycodeMapping[code]
	return k, ok
}

// ButtonFromRaw maps a raw button code to its portable Button, if any.
func ButtonFromRaw(code uint16) (crossput.Button, bool) {
	b, ok := reverseButtonMapping[code]
	return b, ok
}

// mouseButtonIndex maps the first few BTN_* codes to the 0=left/1=right/
// 2=middle/then-extras indexing spec §4.4 requires for mice.
var mouseButtonOrder = []uint16{btnLeft, btnRight, btnMiddle, btnSide, btnExtra, btnForward, btnBack, btnTask}

func mouseButtonIndex(code uint16) (int, bool) {
	for i, c := range mouseButtonOrder {
		if c == code {
			return i, true
		}
	}
	return 0, false
}

