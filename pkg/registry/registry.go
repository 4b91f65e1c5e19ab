// Copyright 2025 Certen Protocol
//
// Side-Effect Kind Catalog and Dispatch

package registry

import (
	"fmt"
	"sync"

	"github.com/certen/xcircuit/pkg/sidefx"
)

// Registry is the per-target catalog of recognized side-effect kinds. It
// is safe for concurrent reads; registration is expected only at process
// startup but is still mutex-guarded for tests that build bespoke
// registries per case.
type Registry struct {
	mu    sync.RWMutex
	kinds map[sidefx.Selector]*Kind
}

// NewRegistry returns an empty registry. Use NewDefaultRegistry to get one
// pre-populated with the well-known kinds.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[sidefx.Selector]*Kind)}
}

// RegisterKind adds a side-effect kind to the registry.
func (r *Registry) RegisterKind(k *Kind) error {
	if k == nil {
		return fmt.Errorf("kind cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[k.Selector]; exists {
		return fmt.Errorf("%w: %s", ErrKindAlreadyRegistered, k.Name)
	}
	r.kinds[k.Selector] = k
	return nil
}

// GetKind retrieves a side-effect kind by selector.
func (r *Registry) GetKind(selector sidefx.Selector) (*Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, exists := r.kinds[selector]
	if !exists {
		return nil, fmt.Errorf("%w: %x", ErrUnsupportedSideEffect, selector)
	}
	return k, nil
}

// HasKind reports whether a selector is recognized.
func (r *Registry) HasKind(selector sidefx.Selector) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.kinds[selector]
	return exists
}

// ListKinds returns every registered kind name, for diagnostics.
func (r *Registry) ListKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for _, k := range r.kinds {
		names = append(names, k.Name)
	}
	return names
}

// ValidateArgs decodes sfx's encoded_args against its kind's declared
// schema, failing if the selector is unsupported for target or the
// arguments don't match arity/type.
func (r *Registry) ValidateArgs(allowed func(sidefx.Selector) bool, cfg ABIConfig, sfx *sidefx.SFX, state *LocalState) error {
	k, err := r.GetKind(sfx.Action)
	if err != nil {
		return err
	}
	if allowed != nil && !allowed(sfx.Action) {
		return fmt.Errorf("%w: %s not allowed for this target", ErrUnsupportedSideEffect, k.Name)
	}
	return k.ValidateArgs(cfg, sfx, state)
}

// CheckIfInsuranceRequired applies the side effect's insurance rule.
func (r *Registry) CheckIfInsuranceRequired(sfx *sidefx.SFX) (*InsuranceRequirement, error) {
	k, err := r.GetKind(sfx.Action)
	if err != nil {
		return nil, err
	}
	return k.InsuranceRule(sfx)
}

// ValidateConfirmation checks a confirmed side effect's output against its
// kind's confirmation schema.
func (r *Registry) ValidateConfirmation(fsx *sidefx.FSX) error {
	k, err := r.GetKind(fsx.Input.Action)
	if err != nil {
		return err
	}
	return k.ValidateConfirmation(fsx.Confirmed)
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// GetGlobalRegistry returns the process-wide registry, initialized with
// the well-known kinds on first use.
func GetGlobalRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = NewDefaultRegistry()
	})
	return globalRegistry
}

// SetGlobalRegistry replaces the global registry; intended for tests.
func SetGlobalRegistry(r *Registry) {
	globalRegistry = r
}
