// FILE: lixenwraith/argconfig/option_test.go
package argconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeclareClassification tests how names map onto flags, positionals and config references
func TestDeclareClassification(t *testing.T) {
	t.Run("ConfigOnly", func(t *testing.T) {
		opt := Declare("config:only")
		require.NoError(t, opt.Err())
		assert.Equal(t, KindConfig, opt.Kind())
		assert.Equal(t, "config_only", opt.Dest())
		assert.Empty(t, opt.Flags())

		ref, ok := opt.ConfigRef()
		assert.True(t, ok)
		assert.Equal(t, ConfigRef{Section: "config", Key: "only"}, ref)
	})

	t.Run("FlagsAndConfig", func(t *testing.T) {
		opt := Declare("config:option", "-o", "--option")
		require.NoError(t, opt.Err())
		assert.Equal(t, KindBoth, opt.Kind())
		assert.Equal(t, "option", opt.Dest())
		assert.Equal(t, []string{"-o", "--option"}, opt.Flags())
	})

	t.Run("CommandLineOnly", func(t *testing.T) {
		opt := Declare("-n", "--dry-run")
		require.NoError(t, opt.Err())
		assert.Equal(t, KindCommandLine, opt.Kind())
		assert.Equal(t, "dry_run", opt.Dest())
		_, ok := opt.ConfigRef()
		assert.False(t, ok)
	})

	t.Run("ShortOnly", func(t *testing.T) {
		opt := Declare("-x")
		require.NoError(t, opt.Err())
		assert.Equal(t, "x", opt.Dest())
	})

	t.Run("Positional", func(t *testing.T) {
		opt := Declare("argument")
		require.NoError(t, opt.Err())
		assert.Equal(t, KindCommandLine, opt.Kind())
		name, ok := opt.Positional()
		assert.True(t, ok)
		assert.Equal(t, "argument", name)
		assert.Equal(t, "argument", opt.Dest())
	})

	t.Run("PositionalWithConfig", func(t *testing.T) {
		opt := Declare("input-file", "paths:input").WithNArgs(NArgsOptional)
		require.NoError(t, opt.Err())
		assert.Equal(t, KindBoth, opt.Kind())
		assert.Equal(t, "input_file", opt.Dest())
	})

	t.Run("KeySplitsOnFirstColon", func(t *testing.T) {
		opt := Declare("urls:http:proxy")
		require.NoError(t, opt.Err())
		ref, _ := opt.ConfigRef()
		assert.Equal(t, "urls", ref.Section)
		assert.Equal(t, "http:proxy", ref.Key)
		assert.Equal(t, "urls_http_proxy", opt.Dest())
	})

	t.Run("DottedSection", func(t *testing.T) {
		opt := Declare("server.tls:cert")
		require.NoError(t, opt.Err())
		assert.Equal(t, "server_tls_cert", opt.Dest())
	})

	t.Run("ExplicitDest", func(t *testing.T) {
		opt := Declare("db:url", "--database-url").WithDest("dsn")
		require.NoError(t, opt.Err())
		assert.Equal(t, "dsn", opt.Dest())
	})

	t.Run("SwitchDefaultsToFalse", func(t *testing.T) {
		opt := Declare("-v", "--verbose").WithSwitch()
		require.NoError(t, opt.Err())
		assert.True(t, opt.IsSwitch())
		assert.Equal(t, false, opt.Default())
	})
}

// TestDeclareErrors tests declarations rejected with ErrInvalidOption
func TestDeclareErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  *Option
	}{
		{"NoNames", Declare()},
		{"EmptySection", Declare(":key")},
		{"EmptyKey", Declare("section:")},
		{"DoubleColonKey", Declare("section::key")},
		{"TwoConfigRefs", Declare("a:b", "c:d")},
		{"TwoPositionals", Declare("first", "second")},
		{"PositionalWithFlag", Declare("input", "--input")},
		{"SingleDashLongFlag", Declare("-long")},
		{"BareDash", Declare("-")},
		{"BadLongFlag", Declare("--bad flag")},
		{"TwoShortFlags", Declare("-a", "-b")},
		{"InvalidDest", Declare("--name").WithDest("not valid")},
		{"ZeroExactArity", Declare("--pair").WithNArgs(NArgsExactly(0))},
		{"EmptySplit", Declare("s:k").WithSplit("")},
		{"PositionalSwitch", Declare("flag").WithSwitch()},
		{"SwitchWithChoices", Declare("--on").WithSwitch().WithChoices(true)},
		{"OptionalArityOnFlag", Declare("--maybe").WithNArgs(NArgsOptional)},
		{"RequiredPositional", Declare("input").WithRequired()},
		{"PositionalBadDest", Declare("in/out")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt.Err()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

// TestMustDeclare tests the panicking constructor
func TestMustDeclare(t *testing.T) {
	assert.NotPanics(t, func() { MustDeclare("config:only") })
	assert.Panics(t, func() { MustDeclare("section:") })
}

// TestNArgs tests arity helpers
func TestNArgs(t *testing.T) {
	assert.False(t, NArgsOne.IsList())
	assert.False(t, NArgsOptional.IsList())
	assert.True(t, NArgsAny.IsList())
	assert.True(t, NArgsSome.IsList())
	assert.True(t, NArgsExactly(2).IsList())

	assert.Equal(t, "+", NArgsSome.String())
	assert.Equal(t, "3", NArgsExactly(3).String())

	assert.NoError(t, NArgsAny.checkCount(0))
	assert.Error(t, NArgsSome.checkCount(0))
	assert.NoError(t, NArgsExactly(2).checkCount(2))
	assert.Error(t, NArgsExactly(2).checkCount(3))
}
