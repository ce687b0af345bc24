package crossput

// Key is a cross-platform keycode, influenced by physical keyboard layout
// and the OS layout settings. Values are sequential starting at 0.
type Key uint8

const (
	KeyEsc Key = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeySpace
	KeyCapsLock
	KeyShiftL
	KeyShiftR
	KeyAltL
	KeyAltR
	KeyCtrlL
	KeyCtrlR

	KeyNumrow0
	KeyNumrow1
	KeyNumrow2
	KeyNumrow3
	KeyNumrow4
	KeyNumrow5
	KeyNumrow6
	KeyNumrow7
	KeyNumrow8
	KeyNumrow9

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	KeyMinus
	KeyEqual
	KeyBraceL
	KeyBraceR
	KeySemicolon
	KeyApostrophe
	KeyGrave
	KeyComma
	KeyDot
	KeySlash
	KeyBackslash

	// Key102 varies by keyboard, most commonly angle brackets ('<' and '>').
	Key102

	KeyNumLock
	KeyScrollLock
	KeyPause
	KeyInsert
	KeyDel
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyLeft
	KeyUp
	KeyRight
	KeyDown

	KeyNumpad0
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadDecimal
	KeyNumpadPlus
	KeyNumpadMinus
	KeyNumpadMultiply
	KeyNumpadSlash

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24

	// numKeyCodes is the count of entries above and must stay last.
	numKeyCodes
)

// NumKeyCodes is the total number of valid portable keys.
const NumKeyCodes = int(numKeyCodes)

// InvalidKey marks inputs with no cross-platform representation.
const InvalidKey Key = 255

// IsValidKey reports whether k is a key defined by this enumeration.
func IsValidKey(k Key) bool {
	return int(k) < NumKeyCodes
}
