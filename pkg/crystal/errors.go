package crystal

import (
	"errors"
	"fmt"

	"crystal/internal/config"
	"crystal/internal/provision"
)

// Failure kinds surfaced through the ready future and the "error" event.
type (
	// ConfigLoadError is a configuration document that exists but could not
	// be loaded or parsed.
	ConfigLoadError = config.LoadError
	// UnsupportedResourceTypeError is a resource entry with no factory and no
	// callable driver.
	UnsupportedResourceTypeError = provision.UnsupportedTypeError
	// ResourceConnectError wraps an error returned by a factory or driver.
	ResourceConnectError = provision.ConnectError
)

// ErrInitInFlight is returned by Close when its context ended before
// initialization settled. Resources connected after that point stay open.
var ErrInitInFlight = errors.New("initialization still running")

// HookError wraps a failing pre-init or post-init hook.
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string { return fmt.Sprintf("%s hook: %v", e.Hook, e.Err) }

func (e *HookError) Unwrap() error { return e.Err }

// IsConfigLoadFailure reports whether err came from loading configuration.
func IsConfigLoadFailure(err error) bool {
	var e *config.LoadError
	return errors.As(err, &e)
}

// IsHookFailure reports whether err came from a pre-init or post-init hook.
func IsHookFailure(err error) bool {
	var e *HookError
	return errors.As(err, &e)
}

// IsUnsupportedResourceType reports whether a resource had no usable driver.
func IsUnsupportedResourceType(err error) bool {
	var e *provision.UnsupportedTypeError
	return errors.As(err, &e)
}

// IsResourceConnectFailure reports whether a driver or factory failed.
func IsResourceConnectFailure(err error) bool {
	var e *provision.ConnectError
	return errors.As(err, &e)
}
