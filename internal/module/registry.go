package module

import (
	"sort"
	"strings"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = map[string]*Module{}
)

// Register adds a module to the global registry. Module packages call this
// from init(). Registering the same name twice panics: it is always a
// programming error.
func Register(m *Module) {
	mu.Lock()
	defer mu.Unlock()

	name := strings.ToLower(m.Name)
	if _, dup := registry[name]; dup {
		panic("module: duplicate registration of " + name)
	}
	registry[name] = m
}

// Get returns the module registered under name (case-insensitive).
func Get(name string) (*Module, bool) {
	mu.RLock()
	defer mu.RUnlock()

	m, ok := registry[strings.ToLower(name)]
	return m, ok
}

// List returns all registered modules sorted by name.
func List() []*Module {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]*Module, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
