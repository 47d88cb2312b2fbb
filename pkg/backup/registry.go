package backup

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/harumemo/pkg/core"
)

// Registry holds the available codecs, keyed by name.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry returns a registry with the given codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// DefaultRegistry returns a registry with the json, yaml and text codecs.
func DefaultRegistry() *Registry {
	return NewRegistry(JSONCodec{}, YAMLCodec{}, TextCodec{})
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) {
	r.codecs[c.Name()] = c
}

// Names returns the registered codec names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the codec registered under name.
func (r *Registry) Get(name string) (Codec, error) {
	c, ok := r.codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backup format %q (available: %s)", core.ErrValidation, name, strings.Join(r.Names(), ", "))
	}
	return c, nil
}

// ForFile picks the codec whose patterns match filename.
func (r *Registry) ForFile(filename string) (Codec, error) {
	for _, name := range r.Names() {
		c := r.codecs[name]
		if Accepts(c, filename) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: no backup format accepts %q", core.ErrValidation, path.Base(filename))
}

// Resolve returns the named codec, or detects one from filename when name is
// empty. An explicit codec must still accept the file's extension.
func (r *Registry) Resolve(name, filename string) (Codec, error) {
	if name == "" {
		return r.ForFile(filename)
	}
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if filename != "" && !Accepts(c, filename) {
		return nil, fmt.Errorf("%w: wrong file extension for %s backup: %q", core.ErrValidation, c.Name(), path.Base(filename))
	}
	return c, nil
}

// Accepts reports whether any of the codec's patterns matches the base name
// of filename, case-insensitively.
func Accepts(c Codec, filename string) bool {
	base := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	for _, pattern := range c.Patterns() {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
