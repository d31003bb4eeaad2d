// Package secenv provisions a process-wide security environment: it
// installs the configured security modules in declared order and selects
// the first compatible security context, falling back to a pass-through
// context when nothing else applies.
package secenv

import (
	"context"

	"github.com/goliatone/go-secenv/core"
)

type Config = core.Config

type Option = core.Option

type Environment = core.Environment

type SecurityModule = core.SecurityModule
type ModuleFactory = core.ModuleFactory
type ModuleProvision = core.ModuleProvision
type SecurityContext = core.SecurityContext
type ContextFactory = core.ContextFactory
type SecuredAction = core.SecuredAction
type RenewableModule = core.RenewableModule
type SecretProvider = core.SecretProvider
type FactoryRegistry = core.FactoryRegistry
type RenewalPlanner = core.RenewalPlanner

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithRegistry        = core.WithRegistry
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithSeedContext     = core.WithSeedContext
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewFactoryRegistry() *FactoryRegistry {
	return core.NewFactoryRegistry()
}

func NewEnvironment(cfg Config, opts ...Option) (*Environment, error) {
	return core.NewEnvironment(cfg, opts...)
}

// Setup builds an environment and provisions it in one step.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Environment, error) {
	env, err := core.NewEnvironment(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := env.Install(ctx); err != nil {
		return nil, err
	}
	return env, nil
}
