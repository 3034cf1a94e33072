// FILE: lixenwraith/argconfig/cmdline_test.go
package argconfig

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommandLine(t *testing.T, opts ...*Option) *PFlagCommandLine {
	t.Helper()
	cl := NewPFlagCommandLine("test")
	require.NoError(t, cl.Declare(opts...))
	return cl
}

// TestPFlagCommandLine tests flag and positional parsing
func TestPFlagCommandLine(t *testing.T) {
	t.Run("OnlySuppliedValuesPresent", func(t *testing.T) {
		cl := newTestCommandLine(t,
			Declare("config:option", "-o", "--option").WithDefault("fallback"),
			Declare("-n", "--count").WithType(Int).WithDefault(3),
		)

		parsed, err := cl.Parse([]string{"--count", "5"}, ModeStrict)
		require.NoError(t, err)

		count, ok := parsed.Lookup("count")
		assert.True(t, ok)
		assert.Equal(t, 5, count)

		_, ok = parsed.Lookup("option")
		assert.False(t, ok, "defaulted flags are not reported as supplied")
	})

	t.Run("ExplicitValueEqualToDefault", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("--mode").WithDefault("fast"))
		parsed, err := cl.Parse([]string{"--mode=fast"}, ModeStrict)
		require.NoError(t, err)
		v, ok := parsed.Lookup("mode")
		assert.True(t, ok)
		assert.Equal(t, "fast", v)
	})

	t.Run("ShortFlag", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("config:option", "-o", "--option"))
		parsed, err := cl.Parse([]string{"-o", "cmdline"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, "cmdline", parsed.Values["option"])
	})

	t.Run("HiddenAlias", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("--color", "--colour"))
		parsed, err := cl.Parse([]string{"--colour", "red"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, "red", parsed.Values["color"])
		assert.NotContains(t, cl.Usage(), "colour")
	})

	t.Run("Switch", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("-v", "--verbose").WithSwitch())

		parsed, err := cl.Parse([]string{"-v"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, true, parsed.Values["verbose"])

		parsed, err = cl.Parse([]string{"--verbose=false"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, false, parsed.Values["verbose"])

		parsed, err = cl.Parse(nil, ModeStrict)
		require.NoError(t, err)
		assert.Empty(t, parsed.Values)
	})

	t.Run("ListFlagAccumulates", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("--tag").WithNArgs(NArgsSome))
		parsed, err := cl.Parse([]string{"--tag", "a,b", "--tag", "c"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, parsed.Values["tag"])
	})

	t.Run("CoercionAndChoicesOnCommandLine", func(t *testing.T) {
		cl := newTestCommandLine(t,
			Declare("--port").WithType(Int),
			Declare("--level").WithChoices("debug", "info"),
		)

		_, err := cl.Parse([]string{"--port", "eighty"}, ModeStrict)
		assert.ErrorIs(t, err, ErrCommandLine)

		_, err = cl.Parse([]string{"--port="}, ModeStrict)
		assert.ErrorIs(t, err, ErrCommandLine)

		_, err = cl.Parse([]string{"--level", "trace"}, ModeStrict)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid choice")
	})

	t.Run("RequiredFlag", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("app:token", "--token").WithRequired())
		_, err := cl.Parse([]string{}, ModeStrict)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCommandLine)
		assert.Contains(t, err.Error(), "--token")
	})

	t.Run("Positionals", func(t *testing.T) {
		cl := newTestCommandLine(t,
			Declare("source"),
			Declare("extra").WithNArgs(NArgsAny),
			Declare("target"),
		)
		parsed, err := cl.Parse([]string{"a", "b", "c", "d"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, "a", parsed.Values["source"])
		assert.Equal(t, []any{"b", "c"}, parsed.Values["extra"])
		assert.Equal(t, "d", parsed.Values["target"])
	})

	t.Run("InterspersedFlags", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("argument"), Declare("-o", "--option"))
		parsed, err := cl.Parse([]string{"-o", "x", "somevalue"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, "somevalue", parsed.Values["argument"])
		assert.Equal(t, "x", parsed.Values["option"])
	})

	t.Run("TypedPositional", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("count").WithType(Int))
		parsed, err := cl.Parse([]string{"12"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, 12, parsed.Values["count"])

		_, err = cl.Parse([]string{"twelve"}, ModeStrict)
		assert.ErrorIs(t, err, ErrCommandLine)
	})

	t.Run("MissingPositional", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("argument"))
		_, err := cl.Parse(nil, ModeStrict)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "argument")
	})

	t.Run("OptionalPositional", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("input").WithNArgs(NArgsOptional))
		parsed, err := cl.Parse(nil, ModeStrict)
		require.NoError(t, err)
		_, ok := parsed.Lookup("input")
		assert.False(t, ok)
	})

	t.Run("UnrecognizedArguments", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("argument"))
		_, err := cl.Parse([]string{"one", "two"}, ModeStrict)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognized arguments: two")

		parsed, err := cl.Parse([]string{"one", "two"}, ModeKnown)
		require.NoError(t, err)
		assert.Equal(t, []string{"two"}, parsed.Rest)
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("--known"))
		_, err := cl.Parse([]string{"--unknown"}, ModeStrict)
		assert.ErrorIs(t, err, ErrCommandLine)

		parsed, err := cl.Parse([]string{"--unknown", "--known", "k"}, ModeKnown)
		require.NoError(t, err)
		assert.Equal(t, "k", parsed.Values["known"])
		assert.Equal(t, []string{"--unknown"}, parsed.Rest)
	})

	t.Run("UnknownFlagsKeptInRest", func(t *testing.T) {
		cl := newTestCommandLine(t,
			Declare("argument"),
			Declare("-o", "--option"),
			Declare("-v", "--verbose").WithSwitch(),
		)

		tests := []struct {
			name     string
			args     []string
			argument string
			rest     []string
		}{
			{"SeparateValue", []string{"--unknown", "uval", "somevalue", "extra"}, "somevalue", []string{"--unknown", "uval", "extra"}},
			{"InlineValue", []string{"--unknown=uval", "somevalue"}, "somevalue", []string{"--unknown=uval"}},
			{"FollowedByFlag", []string{"--unknown", "-o", "x", "somevalue"}, "somevalue", []string{"--unknown"}},
			{"UnknownShort", []string{"-z", "zval", "somevalue"}, "somevalue", []string{"-z", "zval"}},
			{"DeclaredValueNotStolen", []string{"-o", "--odd", "somevalue", "--unknown"}, "somevalue", []string{"--unknown"}},
			{"SwitchCluster", []string{"-vo", "x", "somevalue", "-q"}, "somevalue", []string{"-q"}},
			{"AfterTerminator", []string{"--unknown", "--", "--literal"}, "--literal", []string{"--unknown"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				parsed, err := cl.Parse(tt.args, ModeKnown)
				require.NoError(t, err)
				assert.Equal(t, tt.argument, parsed.Values["argument"])
				assert.Equal(t, tt.rest, parsed.Rest)
			})
		}
	})

	t.Run("BootstrapIgnoresHelp", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("-o", "--option"))

		_, err := cl.Parse([]string{"--help"}, ModeKnown)
		assert.ErrorIs(t, err, pflag.ErrHelp)

		parsed, err := cl.Parse([]string{"--help", "-o", "x", "-h"}, ModeBootstrap)
		require.NoError(t, err)
		assert.Equal(t, "x", parsed.Values["option"])
		assert.Equal(t, []string{"--help", "-h"}, parsed.Rest)
	})

	t.Run("ShortOnlyFlag", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("-x").WithHelp("Short only"), Declare("-q").WithSwitch())

		parsed, err := cl.Parse([]string{"-x", "1", "-q"}, ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, "1", parsed.Values["x"])
		assert.Equal(t, true, parsed.Values["q"])

		_, err = cl.Parse([]string{"--x", "1"}, ModeStrict)
		assert.ErrorIs(t, err, ErrCommandLine, "short-only flags have no long form")

		usage := cl.Usage()
		assert.NotContains(t, usage, "--x")
		assert.Contains(t, usage, "-x value")
		assert.Contains(t, usage, "Short only")
	})

	t.Run("ShortOnlyDoesNotReserveLongName", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("-x").WithDest("name"))
		assert.NoError(t, cl.Declare(Declare("--name").WithDest("other")))
	})

	t.Run("HelpPassesThrough", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("--known"))
		_, err := cl.Parse([]string{"--help"}, ModeStrict)
		assert.ErrorIs(t, err, pflag.ErrHelp)
	})

	t.Run("ConfigOnlyNotDeclared", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("config:only"))
		_, err := cl.Parse([]string{"--config_only", "x"}, ModeStrict)
		assert.ErrorIs(t, err, ErrCommandLine)
	})
}

// TestPFlagDeclare tests clash detection
func TestPFlagDeclare(t *testing.T) {
	t.Run("LongClash", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("--name"))
		err := cl.Declare(Declare("--other", "--name").WithDest("other"))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("ShortClash", func(t *testing.T) {
		cl := newTestCommandLine(t, Declare("-n", "--name"))
		err := cl.Declare(Declare("-n", "--number"))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("ClashWithinBatchDeclaresNothing", func(t *testing.T) {
		cl := NewPFlagCommandLine("test")
		err := cl.Declare(Declare("--first"), Declare("-f", "--first").WithDest("again"))
		require.ErrorIs(t, err, ErrInvalidOption)
		assert.NoError(t, cl.Declare(Declare("--first")))
	})
}

// TestPFlagUsage tests rendered help
func TestPFlagUsage(t *testing.T) {
	cl := newTestCommandLine(t,
		Declare("config:option", "-o", "--option").WithHelp("The option").WithMetavar("VALUE"),
		Declare("-v", "--verbose").WithHelp("Be chatty").WithSwitch(),
		Declare("argument").WithHelp("The argument"),
		Declare("files").WithNArgs(NArgsAny),
	)

	usage := cl.Usage()
	assert.Contains(t, usage, "Usage: test [flags] argument [files ...]")
	assert.Contains(t, usage, "-h, --help")
	assert.Contains(t, usage, "The argument")
	assert.Contains(t, usage, "-o, --option VALUE")
	assert.Contains(t, usage, "The option")
	assert.Contains(t, usage, "-v, --verbose")
	assert.Contains(t, usage, "Be chatty")
}

// TestPFlagUsageHelpTakenOver tests the help line when declarations use -h
func TestPFlagUsageHelpTakenOver(t *testing.T) {
	cl := newTestCommandLine(t, Declare("-h", "--host"))
	usage := cl.Usage()
	assert.Contains(t, usage, "      --help")
	assert.NotContains(t, usage, "-h, --help")
	assert.Contains(t, usage, "-h, --host")
}
