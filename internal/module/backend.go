package module

import (
	"fmt"

	"github.com/gleanerd/gleaner/internal/capability"
)

// Backend is a named, configured instance of a module. Several backends can
// share one module (two accounts on the same site, two Torznab indexers).
type Backend struct {
	Name   string
	Module *Module
	Config Config

	// impl is the value returned by the module factory. Capability
	// accessors type-assert against it.
	impl any
}

// OpenBackend validates cfg against the module schema, builds the module's
// backend implementation and wraps it.
func OpenBackend(name, moduleName string, cfg Config) (*Backend, error) {
	m, ok := Get(moduleName)
	if !ok {
		return nil, fmt.Errorf("backend %s: unknown module %q", name, moduleName)
	}

	effective, err := m.ValidateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}

	impl, err := m.New(name, effective)
	if err != nil {
		return nil, fmt.Errorf("backend %s: init module %s: %w", name, m.Name, err)
	}

	return &Backend{Name: name, Module: m, Config: effective, impl: impl}, nil
}

// Has reports whether the backend's module advertises the capability.
func (b *Backend) Has(name capability.Name) bool {
	return capability.Has(b.Module.Capabilities, name)
}

// AsBank returns the backend's bank capability, or ErrNotSupported.
func (b *Backend) AsBank() (capability.CapBank, error) {
	if c, ok := b.impl.(capability.CapBank); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "bank", capability.ErrNotSupported)
}

// AsDocument returns the backend's document capability, or ErrNotSupported.
func (b *Backend) AsDocument() (capability.CapDocument, error) {
	if c, ok := b.impl.(capability.CapDocument); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "document", capability.ErrNotSupported)
}

// AsRecipe returns the backend's recipe capability, or ErrNotSupported.
func (b *Backend) AsRecipe() (capability.CapRecipe, error) {
	if c, ok := b.impl.(capability.CapRecipe); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "recipe", capability.ErrNotSupported)
}

// AsJob returns the backend's job capability, or ErrNotSupported.
func (b *Backend) AsJob() (capability.CapJob, error) {
	if c, ok := b.impl.(capability.CapJob); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "job", capability.ErrNotSupported)
}

// AsWeather returns the backend's weather capability, or ErrNotSupported.
func (b *Backend) AsWeather() (capability.CapWeather, error) {
	if c, ok := b.impl.(capability.CapWeather); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "weather", capability.ErrNotSupported)
}

// AsPaste returns the backend's paste capability, or ErrNotSupported.
func (b *Backend) AsPaste() (capability.CapPaste, error) {
	if c, ok := b.impl.(capability.CapPaste); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "paste", capability.ErrNotSupported)
}

// AsTorrent returns the backend's torrent capability, or ErrNotSupported.
func (b *Backend) AsTorrent() (capability.CapTorrent, error) {
	if c, ok := b.impl.(capability.CapTorrent); ok {
		return c, nil
	}
	return nil, capability.WrapErr(b.Name, "torrent", capability.ErrNotSupported)
}
