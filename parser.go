// FILE: lixenwraith/argconfig/parser.go
package argconfig

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Parser merges command-line arguments with a configuration file.
// Options are added with Extend before the first Parse; every Parse reads the file again.
type Parser struct {
	name       string
	configPath string
	configFlag *Option
	registry   *Registry
	cmdline    CommandLine
	reader     ConfigReader
	envPrefix  string
	lookupEnv  LookupEnvFunc
	logger     *slog.Logger
	err        error
	mutex      sync.Mutex
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithName sets the program name shown in usage.
func WithName(name string) ParserOption {
	return func(p *Parser) {
		p.name = name
	}
}

// WithConfigFlag adds a flag that overrides the configuration file path, e.g. "-c", "--config".
// Its value is exposed in the namespace like any other option.
func WithConfigFlag(names ...string) ParserOption {
	return func(p *Parser) {
		p.configFlag = Declare(names...).
			WithHelp("Path to the config file").
			WithMetavar("CFG")
	}
}

// WithReader replaces the configuration file reader.
func WithReader(r ConfigReader) ParserOption {
	return func(p *Parser) {
		p.reader = r
	}
}

// WithCommandLine replaces the command-line parser.
func WithCommandLine(c CommandLine) ParserOption {
	return func(p *Parser) {
		p.cmdline = c
	}
}

// WithEnvPrefix enables environment overrides for options with a configuration reference.
// See EnvName for the variable naming.
func WithEnvPrefix(prefix string) ParserOption {
	return func(p *Parser) {
		p.envPrefix = prefix
	}
}

// WithLookupEnv replaces os.LookupEnv for environment overrides.
func WithLookupEnv(fn LookupEnvFunc) ParserOption {
	return func(p *Parser) {
		p.lookupEnv = fn
	}
}

// WithLogger sets the logger for debug output. The default discards everything.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a parser reading configPath. An empty path disables the file unless a config flag supplies one.
func New(configPath string, opts ...ParserOption) *Parser {
	p := &Parser{
		name:       filepath.Base(os.Args[0]),
		configPath: configPath,
		registry:   NewRegistry(),
		reader:     NewFileReader(),
		lookupEnv:  os.LookupEnv,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cmdline == nil {
		p.cmdline = NewPFlagCommandLine(p.name)
	}

	if p.configFlag != nil {
		p.configFlag.WithDefault(configPath)
		if p.configFlag.Kind() != KindCommandLine {
			p.err = fmt.Errorf("%w: config flag %s cannot reference the configuration file", ErrInvalidOption, p.configFlag)
		} else if err := p.extend(p.configFlag); err != nil {
			p.err = fmt.Errorf("config flag: %w", err)
		}
	}
	return p
}

// Extend registers options and declares their command-line forms.
// Either all options are added or none is.
func (p *Parser) Extend(opts ...*Option) error {
	if p.err != nil {
		return p.err
	}
	return p.extend(opts...)
}

func (p *Parser) extend(opts ...*Option) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.registry.Check(opts...); err != nil {
		return err
	}
	if err := p.cmdline.Declare(opts...); err != nil {
		return err
	}
	return p.registry.Add(opts...)
}

// Parse resolves every option from args (os.Args[1:] when nil), the configuration file and defaults.
// Unrecognized arguments are an error.
func (p *Parser) Parse(args []string) (*Namespace, error) {
	ns, _, err := p.parse(args, ModeStrict)
	return ns, err
}

// ParseKnown is like Parse but returns unrecognized arguments instead of failing.
// Undeclared flags come first in the returned slice, together with the value they appear to take.
func (p *Parser) ParseKnown(args []string) (*Namespace, []string, error) {
	return p.parse(args, ModeKnown)
}

// BootstrapParse is like ParseKnown but never requests help: an undeclared -h or --help
// is returned with the other unrecognized arguments. The registry is not sealed, so a
// program can read early settings and then Extend the parser before the real Parse.
func (p *Parser) BootstrapParse(args []string) (*Namespace, []string, error) {
	return p.parse(args, ModeBootstrap)
}

func (p *Parser) parse(args []string, mode ParseMode) (*Namespace, []string, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	if args == nil {
		args = os.Args[1:]
	}

	if mode != ModeBootstrap {
		p.registry.Seal()
	}

	parsed, err := p.cmdline.Parse(args, mode)
	if err != nil {
		return nil, nil, err
	}

	path := p.configPath
	if p.configFlag != nil {
		if v, ok := parsed.Lookup(p.configFlag.Dest()); ok {
			path = fmt.Sprint(v)
		}
	}

	sections, err := p.loadSections(path)
	if err != nil {
		return nil, nil, err
	}

	resolver := Resolver{
		EnvPrefix: p.envPrefix,
		LookupEnv: p.lookupEnv,
		Logger:    p.logger,
	}
	ns, err := resolver.Resolve(p.registry.Options(), parsed, sections)
	if err != nil {
		return nil, nil, err
	}
	return ns, parsed.Rest, nil
}

// loadSections reads path; a missing file is an empty configuration.
func (p *Parser) loadSections(path string) (Sections, error) {
	if path == "" {
		return Sections{}, nil
	}

	sections, err := p.reader.Read(path)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			p.logger.Debug("config file not found, continuing without it", "path", path)
			return Sections{}, nil
		}
		return nil, err
	}

	p.logger.Debug("config file loaded", "path", path, "sections", len(sections))
	return sections, nil
}

// Usage renders command-line help followed by the configuration-only options.
func (p *Parser) Usage() string {
	var b strings.Builder
	b.WriteString(p.cmdline.Usage())

	var configOnly []*Option
	for _, opt := range p.registry.Options() {
		if opt.Kind() == KindConfig {
			configOnly = append(configOnly, opt)
		}
	}
	if len(configOnly) > 0 {
		b.WriteString("\nConfiguration file:\n")
		for _, opt := range configOnly {
			fmt.Fprintf(&b, "  %-20s %s\n", opt.ref.String(), opt.help)
		}
	}
	return b.String()
}

// ConfigPath returns the configuration file path given at construction.
func (p *Parser) ConfigPath() string {
	return p.configPath
}

// Registry returns the parser's option registry.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// Save writes the values of all options with a configuration reference to a TOML file
// atomically, one table per section. Nil values are omitted.
func (p *Parser) Save(path string, ns *Namespace) error {
	doc := make(map[string]map[string]any)
	for _, opt := range p.registry.Options() {
		ref, ok := opt.ConfigRef()
		if !ok {
			continue
		}
		value, _ := ns.Get(opt.Dest())
		v, ok := tomlValue(value)
		if !ok {
			continue
		}
		if doc[ref.Section] == nil {
			doc[ref.Section] = make(map[string]any)
		}
		doc[ref.Section][ref.Key] = v
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes(), 0644)
}

// writeFileAtomic replaces path with data through a synced temporary file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write '%s': %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync '%s': %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close '%s': %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}
	return nil
}
