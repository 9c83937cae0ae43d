package styles

import (
	"fmt"
	"sort"
)

// Registry maps style names to styles. It is built at load time and only
// read afterwards.
type Registry struct {
	styles map[string]Style
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{styles: make(map[string]Style)}
}

// FromPreset creates a registry seeded with the named preset.
func FromPreset(name string) (*Registry, error) {
	if name == "" {
		name = "default"
	}
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme preset %q", name)
	}
	r := NewRegistry()
	for k, v := range p.Styles {
		r.styles[k] = v
	}
	return r, nil
}

// Set registers or replaces a style after validating its colours.
func (r *Registry) Set(name string, s Style) error {
	if name == "" {
		return fmt.Errorf("style name is required")
	}
	for field, c := range map[string]string{"fg": s.Fg, "bg": s.Bg} {
		if !ValidColor(c) {
			return fmt.Errorf("style %q: invalid %s colour %q", name, field, c)
		}
	}
	r.styles[name] = s
	return nil
}

// Get returns the named style.
func (r *Registry) Get(name string) (Style, bool) {
	s, ok := r.styles[name]
	return s, ok
}

// Has reports whether a style with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.styles[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.styles))
	for k := range r.styles {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered styles.
func (r *Registry) Len() int {
	return len(r.styles)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for k, v := range r.styles {
		c.styles[k] = v
	}
	return c
}
