// File: lixenwraith/argconfig/builder.go
package argconfig

import (
	"fmt"
	"log/slog"
	"os"
)

// Builder provides a fluent interface for building parsers
type Builder struct {
	name       string
	file       string
	configFlag []string
	envPrefix  string
	logger     *slog.Logger
	reader     ConfigReader
	cmdline    CommandLine
	options    []*Option
	args       []string
}

// NewBuilder creates a new parser builder
func NewBuilder() *Builder {
	return &Builder{
		args: os.Args[1:],
	}
}

// WithName sets the program name shown in usage
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithConfigFlag adds a command-line flag that overrides the configuration file path
func (b *Builder) WithConfigFlag(names ...string) *Builder {
	b.configFlag = names
	return b
}

// WithEnvPrefix enables environment overrides for configuration-backed options
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// WithLogger sets the logger used for debug output
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithReader replaces the configuration file reader
func (b *Builder) WithReader(r ConfigReader) *Builder {
	b.reader = r
	return b
}

// WithCommandLine replaces the command-line parser
func (b *Builder) WithCommandLine(c CommandLine) *Builder {
	b.cmdline = c
	return b
}

// WithOptions adds options, in order
func (b *Builder) WithOptions(opts ...*Option) *Builder {
	b.options = append(b.options, opts...)
	return b
}

// WithArgs sets the command-line arguments used by BuildAndParse and BuildAndScan
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// Build creates the Parser with all specified options
func (b *Builder) Build() (*Parser, error) {
	var opts []ParserOption
	if b.name != "" {
		opts = append(opts, WithName(b.name))
	}
	if b.configFlag != nil {
		opts = append(opts, WithConfigFlag(b.configFlag...))
	}
	if b.envPrefix != "" {
		opts = append(opts, WithEnvPrefix(b.envPrefix))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.reader != nil {
		opts = append(opts, WithReader(b.reader))
	}
	if b.cmdline != nil {
		opts = append(opts, WithCommandLine(b.cmdline))
	}

	p := New(b.file, opts...)
	if err := p.Extend(b.options...); err != nil {
		return nil, fmt.Errorf("failed to register options: %w", err)
	}
	return p, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Parser {
	p, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("parser build failed: %v", err))
	}
	return p
}

// BuildAndParse builds the parser and parses the configured arguments
func (b *Builder) BuildAndParse() (*Namespace, error) {
	p, err := b.Build()
	if err != nil {
		return nil, err
	}
	return p.Parse(b.args)
}

// BuildAndScan builds, parses and decodes the namespace into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	ns, err := b.BuildAndParse()
	if err != nil {
		return err
	}

	if err := ns.Scan(target); err != nil {
		return fmt.Errorf("failed to scan namespace into target: %w", err)
	}
	return nil
}
