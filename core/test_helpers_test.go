package core

import (
	"context"
	"fmt"
	"time"
)

type stubModule struct {
	name         string
	installErr   error
	uninstallErr error
	calls        *callRecorder
	nextRenewal  time.Time
}

func (m *stubModule) Name() string { return m.name }

func (m *stubModule) Install(context.Context) error {
	m.calls.record("install:" + m.name)
	return m.installErr
}

func (m *stubModule) Uninstall(context.Context) error {
	m.calls.record("uninstall:" + m.name)
	return m.uninstallErr
}

func (m *stubModule) NextRenewal() time.Time { return m.nextRenewal }

type stubModuleFactory struct {
	id        string
	provision ModuleProvision
	createErr error
	created   int
}

func (f *stubModuleFactory) ID() string { return f.id }

func (f *stubModuleFactory) CreateModule(Config) (ModuleProvision, error) {
	f.created++
	if f.createErr != nil {
		return ModuleProvision{}, f.createErr
	}
	return f.provision, nil
}

type stubSecurityContext struct {
	name string
	ran  int
}

func (c *stubSecurityContext) Name() string { return c.name }

func (c *stubSecurityContext) RunSecured(ctx context.Context, action SecuredAction) error {
	c.ran++
	if action == nil {
		return nil
	}
	return action(ctx)
}

type stubContextFactory struct {
	id         string
	compatible bool
	createErr  error
	context    SecurityContext
	created    int
}

func (f *stubContextFactory) ID() string { return f.id }

func (f *stubContextFactory) IsCompatible(Config) bool { return f.compatible }

func (f *stubContextFactory) CreateContext(Config) (SecurityContext, error) {
	f.created++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.context != nil {
		return f.context, nil
	}
	return &stubSecurityContext{name: f.id}, nil
}

type callRecorder struct {
	calls []string
}

func (r *callRecorder) record(call string) {
	if r == nil {
		return
	}
	r.calls = append(r.calls, call)
}

type captureEnqueuer struct {
	messages   []*JobExecutionMessage
	enqueueErr error
}

func (e *captureEnqueuer) Enqueue(_ context.Context, msg *JobExecutionMessage) error {
	if e.enqueueErr != nil {
		return e.enqueueErr
	}
	e.messages = append(e.messages, msg)
	return nil
}

func newTestRegistry(moduleFactories []ModuleFactory, contextFactories []ContextFactory) (*FactoryRegistry, error) {
	registry := NewFactoryRegistry()
	for _, factory := range moduleFactories {
		if err := registry.RegisterModuleFactory(factory); err != nil {
			return nil, fmt.Errorf("register module factory: %w", err)
		}
	}
	for _, factory := range contextFactories {
		if err := registry.RegisterContextFactory(factory); err != nil {
			return nil, fmt.Errorf("register context factory: %w", err)
		}
	}
	return registry, nil
}
