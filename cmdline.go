// FILE: lixenwraith/argconfig/cmdline.go
package argconfig

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Parsed is the outcome of one command-line parse.
type Parsed struct {
	// Values holds an entry only for options the user actually supplied.
	Values map[string]any
	// Rest holds arguments left over in known mode.
	Rest []string
}

// Lookup returns the supplied value for dest.
func (p Parsed) Lookup(dest string) (any, bool) {
	v, ok := p.Values[dest]
	return v, ok
}

// ParseMode selects how arguments nobody declared are handled.
type ParseMode int

const (
	// ModeStrict fails on undeclared flags and leftover arguments.
	ModeStrict ParseMode = iota
	// ModeKnown returns undeclared flags, their values and leftover arguments in Rest.
	ModeKnown
	// ModeBootstrap is ModeKnown with an undeclared -h/--help passed to Rest instead of requesting help.
	ModeBootstrap
)

// CommandLine declares options as command-line flags and parses arguments against them.
type CommandLine interface {
	// Declare adds the command-line form of opts. Options without one are ignored.
	// Either all options are declared or none is.
	Declare(opts ...*Option) error
	// Parse tokenizes args according to mode.
	Parse(args []string, mode ParseMode) (Parsed, error)
	// Usage renders help text.
	Usage() string
}

// PFlagCommandLine implements CommandLine with POSIX/GNU style flags.
// The first long flag is the flag name; additional long flags are hidden aliases.
// Short-only options get a hidden long name that no declaration can produce.
// Positional options consume the arguments left after flag parsing, in declaration order.
type PFlagCommandLine struct {
	name        string
	flags       []*Option
	positionals []*Option
	probe       *pflag.FlagSet // catches name clashes and renders usage
}

// NewPFlagCommandLine creates a command line named after the program.
func NewPFlagCommandLine(name string) *PFlagCommandLine {
	probe := pflag.NewFlagSet(name, pflag.ContinueOnError)
	probe.SetOutput(io.Discard)
	return &PFlagCommandLine{
		name:  name,
		probe: probe,
	}
}

// shortOnlyPrefix makes the internal long name of short-only flags; ':' is never valid in a declared flag.
const shortOnlyPrefix = ":"

// flagNames returns all long names under which opt is defined.
func flagNames(opt *Option) []string {
	if len(opt.long) > 0 {
		return opt.long
	}
	return []string{shortOnlyPrefix + opt.short}
}

// Declare implements CommandLine.
func (c *PFlagCommandLine) Declare(opts ...*Option) error {
	names := make(map[string]bool)
	shorts := make(map[string]bool)

	for _, opt := range opts {
		if !opt.hasCommandLine() || opt.positional != "" {
			continue
		}
		for _, name := range flagNames(opt) {
			if names[name] || c.probe.Lookup(name) != nil {
				return fmt.Errorf("%w: %s: flag --%s redefined", ErrInvalidOption, opt, name)
			}
			names[name] = true
		}
		if opt.short != "" {
			if shorts[opt.short] || c.probe.ShorthandLookup(opt.short) != nil {
				return fmt.Errorf("%w: %s: flag -%s redefined", ErrInvalidOption, opt, opt.short)
			}
			shorts[opt.short] = true
		}
	}

	for _, opt := range opts {
		switch {
		case !opt.hasCommandLine():
			continue
		case opt.positional != "":
			c.positionals = append(c.positionals, opt)
		default:
			defineFlag(c.probe, opt)
			c.flags = append(c.flags, opt)
		}
	}
	return nil
}

// defineFlag adds opt and its aliases to fs, all sharing one value.
func defineFlag(fs *pflag.FlagSet, opt *Option) *optionValue {
	value := &optionValue{opt: opt}
	for i, name := range flagNames(opt) {
		short := ""
		if i == 0 {
			short = opt.short
		}
		flag := fs.VarPF(value, name, short, opt.help)
		if opt.isSwitch {
			flag.NoOptDefVal = "true"
		}
		if i > 0 || len(opt.long) == 0 {
			flag.Hidden = true
		}
	}
	return value
}

// Parse implements CommandLine.
func (c *PFlagCommandLine) Parse(args []string, mode ParseMode) (Parsed, error) {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	values := make(map[*Option]*optionValue, len(c.flags))
	for _, opt := range c.flags {
		values[opt] = defineFlag(fs, opt)
	}

	var unknown []string
	if mode != ModeStrict {
		args, unknown = splitUnknown(fs, args, mode)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Parsed{}, err
		}
		return Parsed{}, fmt.Errorf("%w: %w", ErrCommandLine, err)
	}

	parsed := Parsed{Values: make(map[string]any)}
	var missing []string

	for _, opt := range c.flags {
		if !flagChanged(fs, opt) {
			if opt.required {
				missing = append(missing, strings.Join(opt.flags, "/"))
			}
			continue
		}
		value := values[opt]
		if opt.nargs.IsList() {
			if err := opt.nargs.checkCount(len(value.list)); err != nil {
				return Parsed{}, fmt.Errorf("%w: argument %s: %w", ErrCommandLine, strings.Join(opt.flags, "/"), err)
			}
			parsed.Values[opt.dest] = value.list
			continue
		}
		parsed.Values[opt.dest] = value.value
	}

	rest, err := c.assignPositionals(fs.Args(), parsed.Values, &missing)
	if err != nil {
		return Parsed{}, err
	}

	if len(missing) > 0 {
		return Parsed{}, fmt.Errorf("%w: the following arguments are required: %s", ErrCommandLine, strings.Join(missing, ", "))
	}
	if len(rest) > 0 && mode == ModeStrict {
		return Parsed{}, fmt.Errorf("%w: unrecognized arguments: %s", ErrCommandLine, strings.Join(rest, " "))
	}
	parsed.Rest = append(unknown, rest...)
	return parsed, nil
}

// splitUnknown moves undeclared flags out of args, keeping relative order.
// An undeclared flag without an inline value takes the next argument along
// unless that argument looks like a flag. Everything after "--" stays.
func splitUnknown(fs *pflag.FlagSet, args []string, mode ParseMode) (known, unknown []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(known, args[i:]...), unknown
		}
		if len(arg) < 2 || arg[0] != '-' {
			known = append(known, arg)
			continue
		}

		declared, consumesNext, help := classifyFlagToken(fs, arg, args[i+1:])

		dst := &unknown
		if declared || (help && mode != ModeBootstrap) {
			dst = &known
		}
		*dst = append(*dst, arg)
		if consumesNext {
			i++
			*dst = append(*dst, args[i])
		}
	}
	return known, unknown
}

// classifyFlagToken reports whether arg refers only to declared flags, whether it
// consumes the following argument as its value, and whether it is an undeclared help request.
func classifyFlagToken(fs *pflag.FlagSet, arg string, following []string) (declared, consumesNext, help bool) {
	hasNext := len(following) > 0
	nextIsValue := hasNext && !strings.HasPrefix(following[0], "-")

	if strings.HasPrefix(arg, "--") {
		name, _, hasValue := strings.Cut(arg[2:], "=")
		flag := fs.Lookup(name)
		if flag == nil {
			if name == "help" {
				return false, false, true
			}
			return false, !hasValue && nextIsValue, false
		}
		return true, !hasValue && flag.NoOptDefVal == "" && hasNext, false
	}

	shorts := arg[1:]
	for j := 0; j < len(shorts); j++ {
		flag := fs.ShorthandLookup(shorts[j : j+1])
		if flag == nil {
			if shorts == "h" {
				return false, false, true
			}
			return false, len(shorts) == 1 && nextIsValue, false
		}
		if flag.NoOptDefVal == "" {
			// the rest of the cluster, or the next argument, is the value
			return true, j == len(shorts)-1 && hasNext, false
		}
	}
	return true, false, false
}

// flagChanged reports whether any alias of opt was set on the command line.
func flagChanged(fs *pflag.FlagSet, opt *Option) bool {
	for _, name := range flagNames(opt) {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// assignPositionals hands out args to positional options in order, reserving
// the minimum each later positional needs. It returns the unconsumed args.
func (c *PFlagCommandLine) assignPositionals(args []string, into map[string]any, missing *[]string) ([]string, error) {
	reserved := make([]int, len(c.positionals)+1)
	for i := len(c.positionals) - 1; i >= 0; i-- {
		reserved[i] = reserved[i+1] + minCount(c.positionals[i].nargs)
	}

	for i, opt := range c.positionals {
		available := len(args) - reserved[i+1]
		if available < 0 {
			available = 0
		}

		take := 0
		switch opt.nargs.kind {
		case nargsOne, nargsOptional:
			if available > 0 {
				take = 1
			}
		case nargsAny, nargsSome:
			take = available
		case nargsExact:
			take = min(opt.nargs.n, available)
		}

		tokens := args[:take]
		args = args[take:]

		if len(tokens) == 0 {
			if !opt.nargs.allowsEmpty() {
				*missing = append(*missing, opt.positional)
			}
			continue
		}

		if !opt.nargs.IsList() {
			v, err := opt.convertItem(tokens[0])
			if err != nil {
				return nil, fmt.Errorf("%w: argument %s: %w", ErrCommandLine, opt.positional, err)
			}
			into[opt.dest] = v
			continue
		}

		if err := opt.nargs.checkCount(len(tokens)); err != nil {
			*missing = append(*missing, opt.positional)
			continue
		}
		list := make([]any, 0, len(tokens))
		for _, token := range tokens {
			v, err := opt.convertItem(token)
			if err != nil {
				return nil, fmt.Errorf("%w: argument %s: %w", ErrCommandLine, opt.positional, err)
			}
			list = append(list, v)
		}
		into[opt.dest] = list
	}
	return args, nil
}

func minCount(n NArgs) int {
	switch n.kind {
	case nargsOne, nargsSome:
		return 1
	case nargsExact:
		return n.n
	default:
		return 0
	}
}

// Usage implements CommandLine.
func (c *PFlagCommandLine) Usage() string {
	var b strings.Builder

	b.WriteString("Usage: ")
	b.WriteString(c.name)
	if len(c.flags) > 0 {
		b.WriteString(" [flags]")
	}
	for _, opt := range c.positionals {
		b.WriteString(" ")
		b.WriteString(positionalSynopsis(opt))
	}
	b.WriteString("\n")

	if len(c.positionals) > 0 {
		b.WriteString("\nPositional arguments:\n")
		for _, opt := range c.positionals {
			fmt.Fprintf(&b, "  %-20s %s\n", positionalLabel(opt), opt.help)
		}
	}

	b.WriteString("\nFlags:\n")
	b.WriteString(c.helpUsage())
	b.WriteString(c.probe.FlagUsages())
	for _, opt := range c.flags {
		if len(opt.long) > 0 {
			continue
		}
		label := "-" + opt.short
		if !opt.isSwitch {
			label += " " + (&optionValue{opt: opt}).Type()
		}
		fmt.Fprintf(&b, "  %-20s %s\n", label, opt.help)
	}
	return b.String()
}

// helpUsage describes the built-in help flags unless declarations took them over.
func (c *PFlagCommandLine) helpUsage() string {
	if c.probe.Lookup("help") != nil {
		return ""
	}
	if c.probe.ShorthandLookup("h") != nil {
		return "      --help   Show this help message\n"
	}
	return "  -h, --help   Show this help message\n"
}

func positionalLabel(opt *Option) string {
	if opt.metavar != "" {
		return opt.metavar
	}
	return opt.positional
}

func positionalSynopsis(opt *Option) string {
	label := positionalLabel(opt)
	switch opt.nargs.kind {
	case nargsOptional:
		return "[" + label + "]"
	case nargsAny:
		return "[" + label + " ...]"
	case nargsSome:
		return label + " [" + label + " ...]"
	case nargsExact:
		return strings.TrimSpace(strings.Repeat(label+" ", opt.nargs.n))
	default:
		return label
	}
}

// optionValue is the pflag.Value behind every alias of one option.
// Set coerces through the option, so the parsed result is already typed.
type optionValue struct {
	opt   *Option
	value any
	list  []any
	set   bool
}

func (v *optionValue) String() string {
	switch {
	case v.set && v.opt.nargs.IsList():
		return stringify(v.list)
	case v.set:
		return stringify(v.value)
	case v.opt.def == nil:
		return ""
	default:
		return stringify(v.opt.def)
	}
}

func (v *optionValue) Set(s string) error {
	if v.opt.nargs.IsList() {
		items, err := v.opt.convertList(s)
		if err != nil {
			return err
		}
		v.list = append(v.list, items...)
		v.set = true
		return nil
	}

	val, err := v.opt.convertItem(s)
	if err != nil {
		return err
	}
	v.value = val
	v.set = true
	return nil
}

// Type is shown as the value placeholder in usage; "bool" hides it for switches.
func (v *optionValue) Type() string {
	switch {
	case v.opt.isSwitch:
		return "bool"
	case v.opt.metavar != "":
		return v.opt.metavar
	default:
		return "value"
	}
}
