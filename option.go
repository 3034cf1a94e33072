// FILE: lixenwraith/argconfig/option.go
package argconfig

import (
	"fmt"
	"strings"
)

// Kind tells where an option may take its value from.
// It is decided once by Declare and never re-derived from names.
type Kind int

const (
	// KindCommandLine options are resolved from the command line and the default only.
	KindCommandLine Kind = iota
	// KindConfig options have no command-line form.
	KindConfig
	// KindBoth options have a command-line form and a configuration reference.
	KindBoth
)

func (k Kind) String() string {
	switch k {
	case KindCommandLine:
		return "command-line"
	case KindConfig:
		return "config"
	case KindBoth:
		return "both"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ConfigRef addresses a value in the configuration file.
type ConfigRef struct {
	Section string
	Key     string
}

func (r ConfigRef) String() string {
	return r.Section + ":" + r.Key
}

// DefaultSplit separates list values read from the configuration file.
const DefaultSplit = ","

// Option describes one resolvable setting.
//
// Names passed to Declare are classified as:
//   - "-x", "--xxx": command-line flags
//   - "section:key": a configuration file reference, split on the first ':'
//   - anything else: a positional command-line argument
type Option struct {
	names      []string
	dest       string
	kind       Kind
	flags      []string // as declared, with dashes
	short      string   // without dash
	long       []string // without dashes
	positional string
	ref        ConfigRef
	hasRef     bool

	help     string
	metavar  string
	def      any
	coerce   Coercer
	required bool
	choices  []any
	nargs    NArgs
	split    string
	isSwitch bool

	err error // first declaration error, surfaced on registration
}

// Declare creates an option from its names. Further settings are chained with the With methods.
// Declaration errors are kept on the option and reported by Err and by registration.
func Declare(names ...string) *Option {
	o := &Option{
		names:  append([]string(nil), names...),
		coerce: String,
		nargs:  NArgsOne,
		split:  DefaultSplit,
	}
	o.err = o.classify()
	return o
}

// MustDeclare is like Declare but panics on a declaration error.
func MustDeclare(names ...string) *Option {
	o := Declare(names...)
	if o.err != nil {
		panic(o.err)
	}
	return o
}

// classify sorts names into flags, positional and configuration reference.
func (o *Option) classify() error {
	if len(o.names) == 0 {
		return fmt.Errorf("%w: option needs at least one name", ErrInvalidOption)
	}

	for _, name := range o.names {
		switch {
		case strings.HasPrefix(name, "-"):
			if err := o.addFlag(name); err != nil {
				return err
			}

		case strings.Contains(name, ":"):
			if o.hasRef {
				return fmt.Errorf("%w: %v declares more than one configuration reference", ErrInvalidOption, o.names)
			}
			ref, err := parseConfigRef(name)
			if err != nil {
				return err
			}
			o.ref = ref
			o.hasRef = true

		default:
			if o.positional != "" {
				return fmt.Errorf("%w: %v declares more than one positional name", ErrInvalidOption, o.names)
			}
			if name == "" {
				return fmt.Errorf("%w: empty option name", ErrInvalidOption)
			}
			o.positional = name
		}
	}

	if o.positional != "" && len(o.flags) > 0 {
		return fmt.Errorf("%w: %v mixes a positional name with flags", ErrInvalidOption, o.names)
	}

	hasCommandLine := o.positional != "" || len(o.flags) > 0
	switch {
	case hasCommandLine && o.hasRef:
		o.kind = KindBoth
	case o.hasRef:
		o.kind = KindConfig
	default:
		o.kind = KindCommandLine
	}

	o.dest = o.deriveDest()
	return nil
}

// addFlag validates a flag against the "-x" / "--name" conventions of the command-line parser.
func (o *Option) addFlag(name string) error {
	if strings.HasPrefix(name, "--") {
		long := name[2:]
		if !isValidFlagName(long) {
			return fmt.Errorf("%w: invalid long flag %q", ErrInvalidOption, name)
		}
		o.long = append(o.long, long)
		o.flags = append(o.flags, name)
		return nil
	}

	short := name[1:]
	if len(short) != 1 || !isValidFlagName(short) {
		return fmt.Errorf("%w: invalid short flag %q, expected -x or --name", ErrInvalidOption, name)
	}
	if o.short != "" {
		return fmt.Errorf("%w: %v declares more than one short flag", ErrInvalidOption, o.names)
	}
	o.short = short
	o.flags = append(o.flags, name)
	return nil
}

func parseConfigRef(name string) (ConfigRef, error) {
	section, key, _ := strings.Cut(name, ":")
	section = strings.TrimSpace(section)
	key = strings.TrimSpace(key)
	if section == "" || key == "" || strings.HasPrefix(key, ":") || strings.HasSuffix(key, ":") {
		return ConfigRef{}, fmt.Errorf("%w: malformed configuration reference %q, expected section:key", ErrInvalidOption, name)
	}
	return ConfigRef{Section: section, Key: key}, nil
}

// deriveDest picks the primary name: first long flag, short flag, positional, then section_key.
func (o *Option) deriveDest() string {
	var primary string
	switch {
	case len(o.long) > 0:
		primary = o.long[0]
	case o.short != "":
		primary = o.short
	case o.positional != "":
		primary = o.positional
	default:
		primary = o.ref.Section + "_" + o.ref.Key
	}
	return normalizeDest(primary)
}

func normalizeDest(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.', ' ':
			return '_'
		}
		return r
	}, s)
}

// WithHelp sets the help text.
func (o *Option) WithHelp(help string) *Option {
	o.help = help
	return o
}

// WithDefault sets the value used when no source supplies one. It is never coerced.
func (o *Option) WithDefault(v any) *Option {
	o.def = v
	return o
}

// WithType sets the conversion applied to string values.
func (o *Option) WithType(c Coercer) *Option {
	if c == nil {
		c = String
	}
	o.coerce = c
	return o
}

// WithRequired marks the option as required.
// For command-line forms it is enforced by the command line only, a file value never satisfies it.
func (o *Option) WithRequired() *Option {
	o.required = true
	return o
}

// WithChoices restricts the accepted values, compared after coercion.
func (o *Option) WithChoices(choices ...any) *Option {
	o.choices = append([]any(nil), choices...)
	return o
}

// WithDest overrides the derived destination name.
func (o *Option) WithDest(dest string) *Option {
	if o.err == nil && !isValidDest(dest) {
		o.err = fmt.Errorf("%w: invalid dest %q", ErrInvalidOption, dest)
		return o
	}
	o.dest = dest
	return o
}

// WithMetavar sets the value placeholder shown in usage.
func (o *Option) WithMetavar(metavar string) *Option {
	o.metavar = metavar
	return o
}

// WithNArgs sets the option's arity.
func (o *Option) WithNArgs(n NArgs) *Option {
	if o.err == nil && n.kind == nargsExact && n.n < 1 {
		o.err = fmt.Errorf("%w: %s: exact arity must be positive, got %d", ErrInvalidOption, o.dest, n.n)
		return o
	}
	o.nargs = n
	return o
}

// WithSplit sets the separator for list values read from the configuration file.
func (o *Option) WithSplit(sep string) *Option {
	if o.err == nil && sep == "" {
		o.err = fmt.Errorf("%w: %s: empty list separator", ErrInvalidOption, o.dest)
		return o
	}
	o.split = sep
	return o
}

// WithSwitch makes the option a boolean flag that takes no value on the command line.
func (o *Option) WithSwitch() *Option {
	o.isSwitch = true
	o.coerce = Bool
	if o.def == nil {
		o.def = false
	}
	return o
}

// Err returns the first declaration error, if any.
func (o *Option) Err() error {
	if o.err != nil {
		return o.err
	}
	return o.validate()
}

// validate checks combinations that only make sense once all settings are applied.
func (o *Option) validate() error {
	if o.isSwitch {
		if o.positional != "" {
			return fmt.Errorf("%w: %s: positional arguments cannot be switches", ErrInvalidOption, o.dest)
		}
		if o.nargs != NArgsOne {
			return fmt.Errorf("%w: %s: switches take no arguments", ErrInvalidOption, o.dest)
		}
		if len(o.choices) > 0 {
			return fmt.Errorf("%w: %s: switches cannot have choices", ErrInvalidOption, o.dest)
		}
	}
	if o.nargs == NArgsOptional && o.positional == "" {
		return fmt.Errorf("%w: %s: optional arity only applies to positional arguments", ErrInvalidOption, o.dest)
	}
	if o.required && o.positional != "" {
		return fmt.Errorf("%w: %s: required does not apply to positional arguments", ErrInvalidOption, o.dest)
	}
	if !isValidDest(o.dest) {
		return fmt.Errorf("%w: invalid dest %q", ErrInvalidOption, o.dest)
	}
	return nil
}

// Dest returns the name under which the resolved value is exposed.
func (o *Option) Dest() string { return o.dest }

// Kind returns where the option may take its value from.
func (o *Option) Kind() Kind { return o.kind }

// Flags returns the command-line flags in declaration order.
func (o *Option) Flags() []string { return append([]string(nil), o.flags...) }

// Positional returns the positional argument name, if the option is positional.
func (o *Option) Positional() (string, bool) { return o.positional, o.positional != "" }

// ConfigRef returns the configuration reference, if any.
func (o *Option) ConfigRef() (ConfigRef, bool) { return o.ref, o.hasRef }

func (o *Option) Help() string    { return o.help }
func (o *Option) Default() any    { return o.def }
func (o *Option) Required() bool  { return o.required }
func (o *Option) NArgs() NArgs    { return o.nargs }
func (o *Option) Metavar() string { return o.metavar }
func (o *Option) IsSwitch() bool  { return o.isSwitch }
func (o *Option) Choices() []any  { return append([]any(nil), o.choices...) }

// hasCommandLine reports whether the option is visible to the command-line parser.
func (o *Option) hasCommandLine() bool {
	return o.kind != KindConfig
}

func (o *Option) String() string {
	return fmt.Sprintf("Option(%s)", strings.Join(o.names, " "))
}

// isValidFlagName accepts ASCII letters, digits, '-', '_' and '.'; must start with a letter or digit.
func isValidFlagName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !(isLetter || isDigit) {
			return false
		}
		if !(isLetter || isDigit || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

// isValidDest accepts identifier-like names: letters, digits and underscores.
func isValidDest(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_') {
			return false
		}
	}
	return true
}
