package argconfig

import (
	"fmt"
	"sync"
)

// Registry is the ordered set of declared options.
// Options can only be added, and only until the registry is sealed by the first parse.
type Registry struct {
	options []*Option
	byDest  map[string]*Option
	sealed  bool
	mutex   sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byDest: make(map[string]*Option),
	}
}

// Add registers options in order. Either all options are added or none is.
func (r *Registry) Add(opts ...*Option) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.check(opts); err != nil {
		return err
	}

	for _, opt := range opts {
		r.options = append(r.options, opt)
		r.byDest[opt.Dest()] = opt
	}
	return nil
}

// Check reports whether Add would accept opts, without registering them.
func (r *Registry) Check(opts ...*Option) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.check(opts)
}

func (r *Registry) check(opts []*Option) error {
	if r.sealed {
		return ErrRegistrySealed
	}

	batch := make(map[string]bool, len(opts))
	for _, opt := range opts {
		if opt == nil {
			return fmt.Errorf("%w: nil option", ErrInvalidOption)
		}
		if err := opt.Err(); err != nil {
			return err
		}
		dest := opt.Dest()
		if _, exists := r.byDest[dest]; exists || batch[dest] {
			return fmt.Errorf("%w: duplicate dest %q from %s", ErrInvalidOption, dest, opt)
		}
		batch[dest] = true
	}
	return nil
}

// Lookup returns the option registered under dest.
func (r *Registry) Lookup(dest string) (*Option, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	opt, ok := r.byDest[dest]
	return opt, ok
}

// Options returns the registered options in insertion order.
func (r *Registry) Options() []*Option {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return append([]*Option(nil), r.options...)
}

// Len returns the number of registered options.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.options)
}

// Seal prevents further additions.
func (r *Registry) Seal() {
	r.mutex.Lock()
	r.sealed = true
	r.mutex.Unlock()
}

// Sealed reports whether the registry accepts additions.
func (r *Registry) Sealed() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.sealed
}
