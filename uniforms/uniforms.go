package uniforms

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// MaxComponents is the largest vector a float uniform can hold (vec4).
const MaxComponents = 4

var errArity = fmt.Errorf("expected 1 to %d comma-separated floats", MaxComponents)

// Parameters maps a uniform name to its float components.
type Parameters map[string][]float32

// ParseError reports a uniform value that is not a list of floats.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed uniform parameters: %v", e.Err)
	}
	return fmt.Sprintf("malformed value %q for uniform %q: %v", e.Value, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Set replaces the components of name.
func (p Parameters) Set(name string, values ...float32) error {
	if len(values) == 0 || len(values) > MaxComponents {
		return &ParseError{Key: name, Value: fmt.Sprint(values), Err: errArity}
	}
	p[name] = append([]float32(nil), values...)
	return nil
}

// Names returns the uniform names in sorted order.
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (p Parameters) Clone() Parameters {
	c := make(Parameters, len(p))
	for name, values := range p {
		c[name] = append([]float32(nil), values...)
	}
	return c
}

// Merge returns base with every overlay entry added or replaced by name.
// Neither argument is modified.
func Merge(base, overlay Parameters) Parameters {
	merged := base.Clone()
	for name, values := range overlay {
		merged[name] = append([]float32(nil), values...)
	}
	return merged
}

// Shadowed returns, sorted, the names of base that resolved holds with
// different values, i.e. the configured values an overlay replaced.
func Shadowed(base, resolved Parameters) []string {
	var names []string
	for _, name := range base.Names() {
		if values, ok := resolved[name]; ok && !slices.Equal(values, base[name]) {
			names = append(names, name)
		}
	}
	return names
}

// Resolve merges base with the properties read from overlay. A nil overlay
// yields a copy of base.
func Resolve(base Parameters, overlay io.Reader) (Parameters, error) {
	if overlay == nil {
		return base.Clone(), nil
	}
	parsed, err := ParseProperties(overlay)
	if err != nil {
		return nil, err
	}
	return Merge(base, parsed), nil
}

// ParseProperties reads "name=f1,f2,..." lines in Java properties syntax.
func ParseProperties(r io.Reader) (Parameters, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read uniform parameters: %w", err)
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(buf)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	params := make(Parameters, props.Len())
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		values, err := ParseValues(value)
		if err != nil {
			return nil, &ParseError{Key: key, Value: value, Err: err}
		}
		params[key] = values
	}
	return params, nil
}

// ParseOverride parses a single "name=f1,f2" assignment as given on the
// command line.
func ParseOverride(s string) (string, []float32, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, &ParseError{Key: name, Value: s, Err: errors.New("expected name=values")}
	}
	values, err := ParseValues(value)
	if err != nil {
		return "", nil, &ParseError{Key: name, Value: value, Err: err}
	}
	return name, values, nil
}

// ParseValues parses a comma-separated list of one to four floats.
func ParseValues(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	if len(fields) > MaxComponents {
		return nil, errArity
	}
	values := make([]float32, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, errArity
		}
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, err
		}
		values = append(values, float32(v))
	}
	return values, nil
}
