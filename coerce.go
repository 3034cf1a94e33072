// FILE: lixenwraith/argconfig/coerce.go
package argconfig

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Coercer converts a raw string into an option's target type.
type Coercer func(raw string) (any, error)

// String returns the raw value unchanged.
func String(raw string) (any, error) {
	return raw, nil
}

var (
	Int      = As[int]()
	Int64    = As[int64]()
	Float64  = As[float64]()
	Duration = As[time.Duration]()
	IP       = As[net.IP]()
	URL      = As[*url.URL]()
	Strings  = As[[]string]()
)

// Bool accepts the strconv.ParseBool forms plus yes/no and on/off.
func Bool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return As[bool]()(raw)
}

// As returns a Coercer that decodes a string into T using weakly typed mapstructure decoding.
// Durations, times (RFC3339), IPs, CIDRs, URLs and comma separated slices are understood.
// A blank value is an error unless T is a string or slice type.
func As[T any]() Coercer {
	target := reflect.TypeFor[T]()
	return func(raw string) (any, error) {
		if strings.TrimSpace(raw) == "" {
			switch target.Kind() {
			case reflect.String, reflect.Slice:
			default:
				return nil, fmt.Errorf("empty value is not a valid %s", target)
			}
		}

		var out T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &out,
			WeaklyTypedInput: true,
			DecodeHook:       decodeHook(),
		})
		if err != nil {
			return nil, fmt.Errorf("decoder creation failed: %w", err)
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// decodeHook returns the composite hook shared by coercion and Namespace.Scan.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		parseHook(45, parseIP), // max IPv6 text length
		parseHook(49, parseCIDR),
		parseHook(2048, url.Parse),

		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// parseHook decodes strings into T or *T with parse. Longer inputs than maxLen are rejected unparsed.
func parseHook[T any](maxLen int, parse func(string) (*T, error)) mapstructure.DecodeHookFunc {
	target := reflect.TypeFor[T]()
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		if t != target && !(isPtr && t.Elem() == target) {
			return data, nil
		}

		str := data.(string)
		if len(str) > maxLen {
			return nil, fmt.Errorf("%s value too long: %d bytes", target, len(str))
		}
		v, err := parse(str)
		if err != nil {
			return nil, err
		}
		if isPtr {
			return v, nil
		}
		return *v, nil
	}
}

func parseIP(s string) (*net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", s)
	}
	return &ip, nil
}

func parseCIDR(s string) (*net.IPNet, error) {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}
	return ipnet, nil
}

// convert turns a raw string into the option's value: split and count-checked for
// list options, coerced and checked against choices in every case.
// Non-string values are returned unchanged.
func (o *Option) convert(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}

	if !o.nargs.IsList() {
		return o.convertItem(s)
	}

	values, err := o.convertList(s)
	if err != nil {
		return nil, err
	}
	if err := o.nargs.checkCount(len(values)); err != nil {
		return nil, err
	}
	return values, nil
}

// convertList splits and coerces list elements without checking arity.
func (o *Option) convertList(s string) ([]any, error) {
	values := make([]any, 0)
	if strings.TrimSpace(s) == "" {
		return values, nil
	}
	for _, part := range strings.Split(s, o.split) {
		v, err := o.convertItem(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// convertItem coerces a single value and checks it against the choices.
func (o *Option) convertItem(s string) (any, error) {
	v, err := o.coerce(s)
	if err != nil {
		return nil, err
	}
	if err := o.checkChoice(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (o *Option) checkChoice(v any) error {
	if len(o.choices) == 0 {
		return nil
	}
	for _, c := range o.choices {
		if reflect.DeepEqual(c, v) {
			return nil
		}
	}
	formatted := make([]string, len(o.choices))
	for i, c := range o.choices {
		formatted[i] = fmt.Sprintf("%q", fmt.Sprint(c))
	}
	return fmt.Errorf("invalid choice: %v (choose from %s)", v, strings.Join(formatted, ", "))
}
