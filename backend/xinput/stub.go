//go:build !windows

// Package xinput implements the Windows crossput.Provider over the
// XInput gamepad API (xinput1_4.dll), following the axis/button deduction
// and rumble-as-synthetic-motor-0 conventions impl_windows.cpp uses for the
// RawInput/XInput family. XInput only exposes gamepads; mice and
// keyboards would need a RawInput-based sibling provider this spec does
// not require. On every other platform this package registers nothing,
// the same per-OS build-tag layout aluo96078-vkvm uses for its input hooks
// (trap_windows.go/inject_darwin.go/*_stub.go).
package xinput
