// FILE: lixenwraith/argconfig/resolve.go
package argconfig

import (
	"log/slog"
	"strings"
)

// Source represents where a resolved value came from.
type Source string

const (
	// SourceDefault represents use of the declared default value
	SourceDefault Source = "default"
	// SourceFile represents values loaded from the configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values supplied on the command line
	SourceCLI Source = "cli"
)

// LookupEnvFunc reads an environment variable, like os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// Resolver computes final values with the precedence command line, environment,
// configuration file, default. The environment is consulted only when EnvPrefix is set,
// and only for options with a configuration reference.
type Resolver struct {
	EnvPrefix string
	LookupEnv LookupEnvFunc
	Logger    *slog.Logger
}

// EnvName returns the environment variable consulted for ref,
// e.g. prefix "APP_" and "server:max-conns" give "APP_SERVER_MAX_CONNS".
func EnvName(prefix string, ref ConfigRef) string {
	return prefix + strings.ToUpper(normalizeDest(ref.Section+"_"+ref.Key))
}

// Resolve produces one value per option, in option order.
// Coercion failures and missing required configuration values abort the whole call.
func (r Resolver) Resolve(opts []*Option, parsed Parsed, sections Sections) (*Namespace, error) {
	ns := newNamespace(len(opts))
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, opt := range opts {
		value, source, err := r.resolveOption(opt, parsed, sections)
		if err != nil {
			return nil, err
		}
		ns.set(opt.dest, value, source)
		logger.Debug("option resolved", "dest", opt.dest, "source", string(source))
	}
	return ns, nil
}

func (r Resolver) resolveOption(opt *Option, parsed Parsed, sections Sections) (any, Source, error) {
	// 1. Explicit command-line value, already typed by the command line
	if v, ok := parsed.Lookup(opt.dest); ok {
		return v, SourceCLI, nil
	}

	ref, hasRef := opt.ConfigRef()
	if hasRef {
		// 2. Environment override of the file value
		if r.EnvPrefix != "" && r.LookupEnv != nil {
			name := EnvName(r.EnvPrefix, ref)
			if raw, ok := r.LookupEnv(name); ok {
				v, err := opt.convert(raw)
				if err != nil {
					return nil, "", &CoercionError{Dest: opt.dest, Source: SourceEnv, Key: name, Raw: raw, Err: err}
				}
				return v, SourceEnv, nil
			}
		}

		// 3. Configuration file; a missing section is the same as a missing key
		if raw, ok := sections.Lookup(ref.Section, ref.Key); ok {
			v, err := opt.convert(raw)
			if err != nil {
				return nil, "", &CoercionError{Dest: opt.dest, Source: SourceFile, Section: ref.Section, Key: ref.Key, Raw: raw, Err: err}
			}
			return v, SourceFile, nil
		}

		// Command-line forms enforce required-ness themselves
		if opt.kind == KindConfig && opt.required {
			return nil, "", &MissingConfigError{Dest: opt.dest, Section: ref.Section, Key: ref.Key}
		}
	}

	// 4. Declared default, never coerced
	return opt.def, SourceDefault, nil
}
