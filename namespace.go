// FILE: lixenwraith/argconfig/namespace.go
package argconfig

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

// Namespace holds the values produced by one parse, keyed by dest.
// It is owned by the caller; parsing again produces a new one.
type Namespace struct {
	dests   []string
	values  map[string]any
	sources map[string]Source
}

func newNamespace(size int) *Namespace {
	return &Namespace{
		dests:   make([]string, 0, size),
		values:  make(map[string]any, size),
		sources: make(map[string]Source, size),
	}
}

func (n *Namespace) set(dest string, value any, source Source) {
	if _, exists := n.values[dest]; !exists {
		n.dests = append(n.dests, dest)
	}
	n.values[dest] = value
	n.sources[dest] = source
}

// Get returns the value for dest. The second return value reports whether dest exists.
func (n *Namespace) Get(dest string) (any, bool) {
	v, ok := n.values[dest]
	return v, ok
}

// Source returns where the value for dest came from.
func (n *Namespace) Source(dest string) (Source, bool) {
	s, ok := n.sources[dest]
	return s, ok
}

// Dests returns the destination names in registration order.
func (n *Namespace) Dests() []string {
	return append([]string(nil), n.dests...)
}

// Map returns a copy of all values.
func (n *Namespace) Map() map[string]any {
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// Len returns the number of values.
func (n *Namespace) Len() int {
	return len(n.dests)
}

// String retrieves a string value, converting common types.
func (n *Namespace) String(dest string) (string, error) {
	val, found := n.Get(dest)
	if !found {
		return "", fmt.Errorf("dest not found: %s", dest)
	}
	if val == nil {
		return "", nil // Treat nil as empty string for convenience
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for dest %s", val, dest)
	}
}

// Int64 retrieves an int64 value, converting numeric types and parsable strings.
func (n *Namespace) Int64(dest string) (int64, error) {
	val, found := n.Get(dest)
	if !found {
		return 0, fmt.Errorf("dest not found: %s", dest)
	}
	if val == nil {
		return 0, fmt.Errorf("value for dest %s is nil, cannot convert to int64", dest)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > uint64(int64(^uint64(0)>>1)) {
			return 0, fmt.Errorf("cannot convert unsigned integer %d to int64 for dest %s: overflow", u, dest)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(v.Float()), nil
	case reflect.String:
		i, err := strconv.ParseInt(v.String(), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to int64 for dest %s: %w", v.String(), dest, err)
		}
		return i, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for dest %s", val, dest)
}

// Int retrieves an int value.
func (n *Namespace) Int(dest string) (int, error) {
	i, err := n.Int64(dest)
	return int(i), err
}

// Bool retrieves a boolean value.
func (n *Namespace) Bool(dest string) (bool, error) {
	val, found := n.Get(dest)
	if !found {
		return false, fmt.Errorf("dest not found: %s", dest)
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, err := Bool(v)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for dest %s: %w", v, dest, err)
		}
		return b.(bool), nil
	case nil:
		return false, fmt.Errorf("value for dest %s is nil, cannot convert to bool", dest)
	}

	return false, fmt.Errorf("cannot convert type %T to bool for dest %s", val, dest)
}

// Float64 retrieves a float64 value.
func (n *Namespace) Float64(dest string) (float64, error) {
	val, found := n.Get(dest)
	if !found {
		return 0, fmt.Errorf("dest not found: %s", dest)
	}
	if val == nil {
		return 0, fmt.Errorf("value for dest %s is nil, cannot convert to float64", dest)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float64 for dest %s: %w", v.String(), dest, err)
		}
		return f, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to float64 for dest %s", val, dest)
}

// Duration retrieves a time.Duration value, parsing strings like "1m30s".
func (n *Namespace) Duration(dest string) (time.Duration, error) {
	val, found := n.Get(dest)
	if !found {
		return 0, fmt.Errorf("dest not found: %s", dest)
	}

	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to duration for dest %s: %w", v, dest, err)
		}
		return d, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to duration for dest %s", val, dest)
}

// Strings retrieves a list value as strings.
func (n *Namespace) Strings(dest string) ([]string, error) {
	val, found := n.Get(dest)
	if !found {
		return nil, fmt.Errorf("dest not found: %s", dest)
	}

	switch v := val.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			out[i] = stringify(e)
		}
		return out, nil
	case string:
		return []string{v}, nil
	}

	return nil, fmt.Errorf("cannot convert type %T to []string for dest %s", val, dest)
}

// Scan decodes the namespace into the target struct or map.
// Struct fields are matched by the "arg" tag, falling back to case-insensitive field names.
func (n *Namespace) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "arg",
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(n.Map()); err != nil {
		return fmt.Errorf("failed to scan namespace into %T: %w", target, err)
	}
	return nil
}

// Debug returns a formatted string showing all values and their sources.
func (n *Namespace) Debug() string {
	var b strings.Builder
	b.WriteString("Resolved options:\n")
	for _, dest := range n.dests {
		fmt.Fprintf(&b, "  %s = %v (%s)\n", dest, n.values[dest], n.sources[dest])
	}
	return b.String()
}

// Dump writes the namespace as a flat TOML document. Nil values are omitted.
func (n *Namespace) Dump(w io.Writer) error {
	doc := make(map[string]any, len(n.values))
	for dest, value := range n.values {
		if v, ok := tomlValue(value); ok {
			doc[dest] = v
		}
	}
	return toml.NewEncoder(w).Encode(doc)
}

// tomlValue maps a resolved value onto something the TOML encoder writes as a scalar or array.
func tomlValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return val, true
	case []any:
		out := make([]any, 0, len(val))
		for _, e := range val {
			if ev, ok := tomlValue(e); ok {
				out = append(out, ev)
			}
		}
		return out, true
	case []string:
		return val, true
	default:
		return stringify(val), true
	}
}
