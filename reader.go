// FILE: lixenwraith/argconfig/reader.go
package argconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ConfigReader loads a configuration file into sections.
// A missing file must be reported with an error matching ErrConfigNotFound.
type ConfigReader interface {
	Read(path string) (Sections, error)
}

// ReaderFunc adapts a function to ConfigReader.
type ReaderFunc func(path string) (Sections, error)

func (f ReaderFunc) Read(path string) (Sections, error) { return f(path) }

// Format names a configuration file syntax.
type Format string

const (
	FormatAuto Format = ""
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatINI  Format = "ini"
)

// DefaultMaxFileSize bounds configuration file reads.
const DefaultMaxFileSize = 10 << 20

// FileReader reads TOML, YAML, JSON and INI files.
type FileReader struct {
	// Format forces a syntax. FormatAuto detects it from the extension, then from content.
	Format Format
	// MaxFileSize rejects larger files; zero means DefaultMaxFileSize.
	MaxFileSize int64
}

// NewFileReader returns a reader with format detection enabled.
func NewFileReader() *FileReader {
	return &FileReader{MaxFileSize: DefaultMaxFileSize}
}

// Read loads path into sections.
func (r *FileReader) Read(path string) (Sections, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file '%s': %w", ErrConfigLoad, path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%w: config path '%s' is a directory", ErrConfigLoad, path)
	}

	maxSize := r.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if fileInfo.Size() > maxSize {
		return nil, fmt.Errorf("%w: config file '%s' exceeds maximum size %d bytes", ErrConfigLoad, path, maxSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open config file '%s': %w", ErrConfigLoad, path, err)
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file '%s': %w", ErrConfigLoad, path, err)
	}

	format := r.Format
	if format == FormatAuto {
		format = detectFileFormat(path)
		if format == FormatAuto {
			format = detectFormatFromContent(fileData)
		}
	}

	sections, err := parseSections(format, fileData)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrConfigLoad, path, err)
	}
	return sections, nil
}

// parseSections decodes data in the given format.
func parseSections(format Format, data []byte) (Sections, error) {
	switch format {
	case FormatTOML:
		doc := make(map[string]any)
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		return sectionsFromMap(doc), nil

	case FormatJSON:
		doc := make(map[string]any)
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // keep numbers as written
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return sectionsFromMap(doc), nil

	case FormatYAML:
		doc := make(map[string]any)
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return sectionsFromMap(doc), nil

	case FormatINI:
		// Key names are case-insensitive and stored lowercased; section names keep their case.
		file, err := ini.LoadSources(ini.LoadOptions{
			InsensitiveKeys:          true,
			SpaceBeforeInlineComment: true,
		}, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse INI: %w", err)
		}
		sections := make(Sections)
		for _, section := range file.Sections() {
			name := section.Name()
			if _, ok := sections[name]; !ok {
				sections[name] = make(map[string]string)
			}
			for _, key := range section.Keys() {
				sections.set(name, key.Name(), key.Value())
			}
		}
		return sections, nil

	default:
		return nil, fmt.Errorf("unable to determine config format")
	}
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".ini", ".cfg":
		return FormatINI
	default:
		// .conf, .config and anything else are sniffed
		return FormatAuto
	}
}

// detectFormatFromContent tries the strict formats first and falls back to INI.
func detectFormatFromContent(data []byte) Format {
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	return FormatINI
}
