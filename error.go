// FILE: lixenwraith/argconfig/error.go
package argconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOption is returned when an option declaration is malformed or conflicts with a registered one.
	ErrInvalidOption = errors.New("invalid option")
	// ErrRegistrySealed is returned when options are added after the first parse.
	ErrRegistrySealed = errors.New("option registry sealed")
	// ErrConfigNotFound is returned by readers when the configuration file does not exist.
	// Parser treats it as an empty configuration.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrConfigLoad is returned when a configuration file exists but cannot be read or parsed.
	ErrConfigLoad = errors.New("failed to load configuration file")
	// ErrCoercion is matched by every CoercionError.
	ErrCoercion = errors.New("value coercion failed")
	// ErrMissingConfig is matched by every MissingConfigError.
	ErrMissingConfig = errors.New("missing required configuration value")
	// ErrCommandLine wraps failures reported by the command-line capability.
	ErrCommandLine = errors.New("command-line error")
)

// CoercionError reports a configuration value that could not be converted to the option's type.
type CoercionError struct {
	Dest    string
	Source  Source // SourceFile or SourceEnv
	Section string // empty for environment values
	Key     string
	Raw     string
	Err     error
}

func (e *CoercionError) Error() string {
	if e.Source == SourceEnv {
		return fmt.Sprintf("cannot convert env %s = %q for %s: %v", e.Key, e.Raw, e.Dest, e.Err)
	}
	return fmt.Sprintf("cannot convert [%s] %s = %q for %s: %v", e.Section, e.Key, e.Raw, e.Dest, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCoercion) match.
func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }

// MissingConfigError reports a required configuration-only option absent from the file.
type MissingConfigError struct {
	Dest    string
	Section string
	Key     string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("no configuration value found for required option %s (%s:%s)", e.Dest, e.Section, e.Key)
}

func (e *MissingConfigError) Is(target error) bool { return target == ErrMissingConfig }
