package secenv

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-secenv/core"
)

// FactoryPack groups related module and context factories so extensions can
// ship their provisioning surface as one unit.
type FactoryPack struct {
	Name             string
	ModuleFactories  []core.ModuleFactory
	ContextFactories []core.ContextFactory
}

// PackRegistry collects factory packs before they are applied to a factory
// registry. Registration order is not significant; Apply installs packs in
// name order so the result is deterministic.
type PackRegistry struct {
	mu    sync.RWMutex
	packs map[string]FactoryPack
}

func NewPackRegistry() *PackRegistry {
	return &PackRegistry{
		packs: map[string]FactoryPack{},
	}
}

func (r *PackRegistry) RegisterPack(pack FactoryPack) error {
	if r == nil {
		return fmt.Errorf("secenv: pack registry is nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("secenv: factory pack name is required")
	}
	if len(pack.ModuleFactories) == 0 && len(pack.ContextFactories) == 0 {
		return fmt.Errorf("secenv: factory pack %q has no factories", name)
	}

	normalized := FactoryPack{
		Name:             name,
		ModuleFactories:  append([]core.ModuleFactory(nil), pack.ModuleFactories...),
		ContextFactories: append([]core.ContextFactory(nil), pack.ContextFactories...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.packs[name]; exists {
		return fmt.Errorf("secenv: factory pack %q is already registered", name)
	}
	r.packs[name] = normalized
	return nil
}

func (r *PackRegistry) PackNames() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.packs))
	for name := range r.packs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply installs every registered pack's factories into the registry.
func (r *PackRegistry) Apply(registry *core.FactoryRegistry) error {
	if r == nil {
		return fmt.Errorf("secenv: pack registry is nil")
	}
	if registry == nil {
		return fmt.Errorf("secenv: factory registry is required")
	}

	r.mu.RLock()
	packs := make([]FactoryPack, 0, len(r.packs))
	for _, pack := range r.packs {
		packs = append(packs, pack)
	}
	r.mu.RUnlock()

	sort.Slice(packs, func(i, j int) bool { return packs[i].Name < packs[j].Name })
	for _, pack := range packs {
		for _, factory := range pack.ModuleFactories {
			if err := registry.RegisterModuleFactory(factory); err != nil {
				return fmt.Errorf("secenv: apply pack %q: %w", pack.Name, err)
			}
		}
		for _, factory := range pack.ContextFactories {
			if err := registry.RegisterContextFactory(factory); err != nil {
				return fmt.Errorf("secenv: apply pack %q: %w", pack.Name, err)
			}
		}
	}
	return nil
}
