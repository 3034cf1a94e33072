package argconfig

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultSection holds keys visible from every other existing section.
const DefaultSection = "DEFAULT"

// Sections is the loaded configuration: section name -> key -> raw value.
type Sections map[string]map[string]string

// Lookup returns the raw value for section/key.
// A missing section is reported as not found. Inside an existing section,
// keys missing from it are looked up in DefaultSection.
// A key not found as written is retried in lower case, which is how INI keys are stored.
func (s Sections) Lookup(section, key string) (string, bool) {
	if v, ok := s.lookup(section, key); ok {
		return v, true
	}
	if lower := strings.ToLower(key); lower != key {
		return s.lookup(section, lower)
	}
	return "", false
}

func (s Sections) lookup(section, key string) (string, bool) {
	keys, ok := s[section]
	if !ok {
		return "", false
	}
	if v, ok := keys[key]; ok {
		return v, true
	}
	if section != DefaultSection {
		if v, ok := s[DefaultSection][key]; ok {
			return v, true
		}
	}
	return "", false
}

// Has reports whether the section exists.
func (s Sections) Has(section string) bool {
	_, ok := s[section]
	return ok
}

// Names returns the section names in sorted order.
func (s Sections) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// set stores a value, creating the section if needed.
func (s Sections) set(section, key, value string) {
	keys, ok := s[section]
	if !ok {
		keys = make(map[string]string)
		s[section] = keys
	}
	keys[key] = value
}

// sectionsFromMap converts a decoded document into sections.
// Top-level scalars go to DefaultSection; nested tables become dotted section names.
func sectionsFromMap(doc map[string]any) Sections {
	sections := make(Sections)
	for key, value := range doc {
		if table, ok := asTable(value); ok {
			flattenSection(sections, key, table)
			continue
		}
		sections.set(DefaultSection, key, stringify(value))
	}
	return sections
}

func flattenSection(sections Sections, name string, table map[string]any) {
	if _, ok := sections[name]; !ok {
		sections[name] = make(map[string]string)
	}
	for key, value := range table {
		if sub, ok := asTable(value); ok {
			flattenSection(sections, name+"."+key, sub)
			continue
		}
		sections.set(name, key, stringify(value))
	}
}

// asTable normalizes the map shapes produced by the TOML, YAML and JSON decoders.
func asTable(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// stringify renders a decoded scalar as the raw string a sectioned file would hold.
// Arrays join with DefaultSplit.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, DefaultSplit)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
