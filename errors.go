package crossput

import "errors"

// Sentinel errors for the taxonomy in spec §7. Wrap with fmt.Errorf("...: %w", ErrX)
// at the raise site; callers check with errors.Is.
var (
	// ErrAccessDenied means the OS denied enumeration or open of an input
	// device (e.g. the caller is not in the "input" group on Linux).
	ErrAccessDenied = errors.New("crossput: access denied")

	// ErrBackendInit means a vendor runtime failed to initialize.
	ErrBackendInit = errors.New("crossput: backend initialization failed")

	// ErrReentrantMutation means a mutation entry point was called while a
	// callback handler was executing.
	ErrReentrantMutation = errors.New("crossput: mutation attempted from within a callback")

	// ErrProviderFatal means a non-recoverable provider error occurred on a
	// device handle; the handle has been released and the device marked
	// disconnected.
	ErrProviderFatal = errors.New("crossput: fatal provider error")

	// ErrCapabilityMismatch means a force of the requested kind could not be
	// created on the requested motor.
	ErrCapabilityMismatch = errors.New("crossput: capability mismatch")

	// ErrCyclicAggregation means the destruction hierarchy could not make
	// progress; the aggregation graph is cyclic, which is undefined input.
	ErrCyclicAggregation = errors.New("crossput: cyclic aggregation")
)
