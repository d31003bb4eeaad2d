package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FactoryRegistry maps declared identifiers to module and context factories.
// It is populated once at startup; resolution is by exact identifier match.
// The first registration for an identifier wins.
type FactoryRegistry struct {
	mu               sync.RWMutex
	moduleFactories  map[string]ModuleFactory
	contextFactories map[string]ContextFactory
}

func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{
		moduleFactories:  make(map[string]ModuleFactory),
		contextFactories: make(map[string]ContextFactory),
	}
}

func (r *FactoryRegistry) RegisterModuleFactory(factory ModuleFactory) error {
	if factory == nil {
		return fmt.Errorf("core: module factory is nil")
	}
	id := strings.TrimSpace(factory.ID())
	if id == "" {
		return fmt.Errorf("core: module factory id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.moduleFactories[id]; exists {
		return fmt.Errorf("core: module factory already registered: %s", id)
	}
	r.moduleFactories[id] = factory
	return nil
}

func (r *FactoryRegistry) RegisterContextFactory(factory ContextFactory) error {
	if factory == nil {
		return fmt.Errorf("core: context factory is nil")
	}
	id := strings.TrimSpace(factory.ID())
	if id == "" {
		return fmt.Errorf("core: context factory id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contextFactories[id]; exists {
		return fmt.Errorf("core: context factory already registered: %s", id)
	}
	r.contextFactories[id] = factory
	return nil
}

func (r *FactoryRegistry) ResolveModuleFactory(factoryID string) (ModuleFactory, error) {
	id := strings.TrimSpace(factoryID)
	r.mu.RLock()
	factory, ok := r.moduleFactories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, factoryNotFoundError("module", id)
	}
	return factory, nil
}

func (r *FactoryRegistry) ResolveContextFactory(factoryID string) (ContextFactory, error) {
	id := strings.TrimSpace(factoryID)
	r.mu.RLock()
	factory, ok := r.contextFactories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, factoryNotFoundError("context", id)
	}
	return factory, nil
}

func (r *FactoryRegistry) ModuleFactoryIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.moduleFactories))
	for id := range r.moduleFactories {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (r *FactoryRegistry) ContextFactoryIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.contextFactories))
	for id := range r.contextFactories {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
