package core

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Environment owns the provisioning state for one process: the active
// security context (never nil, seeded with the no-op context) and the
// modules installed by the last successful Install. It is built once during
// bootstrap and injected wherever the active identity is needed.
//
// Install and Uninstall are meant for single-threaded bootstrap/shutdown use
// and carry no internal synchronization; calling Install again without an
// intervening Uninstall overwrites the installed-module list.
type Environment struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	registry        *FactoryRegistry
	configProvider  ConfigProvider
	optionsResolver OptionsResolver

	activeContext    SecurityContext
	installedModules []SecurityModule
	provisioned      bool
}

// ActiveContext returns the active security context. It is never nil: before
// Install, and after Uninstall, it is the no-op context.
func (e *Environment) ActiveContext() SecurityContext {
	if e == nil || e.activeContext == nil {
		return NewNoopContext()
	}
	return e.activeContext
}

// InstalledModules returns the successfully installed modules in factory
// declared order. The result is nil when nothing is installed.
func (e *Environment) InstalledModules() []SecurityModule {
	if e == nil || !e.provisioned {
		return nil
	}
	out := make([]SecurityModule, len(e.installedModules))
	copy(out, e.installedModules)
	return out
}

// Provisioned reports whether the last Install completed successfully and
// has not been undone by Uninstall.
func (e *Environment) Provisioned() bool {
	return e != nil && e.provisioned
}

// Config returns the resolved configuration the environment was built with.
func (e *Environment) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

// RunSecured executes action under the active security context.
func (e *Environment) RunSecured(ctx context.Context, action SecuredAction) error {
	return e.ActiveContext().RunSecured(ctx, action)
}

// Install installs the configured security modules in declared order, then
// selects the first compatible security context that constructs successfully.
// A module factory that cannot be resolved, or a module whose Install fails,
// aborts the whole call; modules installed earlier in the same call keep
// their ambient effects and are not rolled back.
func (e *Environment) Install(ctx context.Context) error {
	startedAt := time.Now()
	fields := map[string]any{"session_id": uuid.NewString()}

	modules, err := e.installModules(ctx)
	if err != nil {
		e.observeOperation(ctx, startedAt, "install", err, fields)
		return e.mapError(err)
	}
	e.installedModules = modules
	e.provisioned = true

	if err := e.installContext(ctx); err != nil {
		e.observeOperation(ctx, startedAt, "install", err, fields)
		return e.mapError(err)
	}

	fields["modules_installed"] = len(modules)
	fields["context"] = e.ActiveContext().Name()
	e.observeOperation(ctx, startedAt, "install", nil, fields)
	return nil
}

// Uninstall unwinds the installed modules in reverse install order and
// resets the environment to its initial state. Modules that do not support
// uninstall are skipped silently; uninstall failures are logged and the
// teardown continues. Calling Uninstall with nothing installed is a no-op,
// and repeated calls are idempotent.
func (e *Environment) Uninstall(ctx context.Context) error {
	startedAt := time.Now()
	uninstalled := 0
	if e.provisioned {
		for i := len(e.installedModules) - 1; i >= 0; i-- {
			module := e.installedModules[i]
			if err := module.Uninstall(ctx); err != nil {
				if errors.Is(err, ErrUninstallNotSupported) {
					continue
				}
				e.logWarn(ctx, "unable to uninstall security module", map[string]any{
					"module": module.Name(),
					"error":  err.Error(),
				})
				continue
			}
			uninstalled++
		}
		e.installedModules = nil
		e.provisioned = false
	}
	e.activeContext = NewNoopContext()
	e.observeOperation(ctx, startedAt, "uninstall", nil, map[string]any{
		"modules_uninstalled": uninstalled,
	})
	return nil
}

type moduleAttemptOutcome string

const (
	moduleAttemptInstalled moduleAttemptOutcome = "installed"
	moduleAttemptSkipped   moduleAttemptOutcome = "skipped"
	moduleAttemptFailed    moduleAttemptOutcome = "failed"
)

// moduleAttempt is the typed per-identifier outcome of the install loop.
// Skip-paths never travel through error values.
type moduleAttempt struct {
	factoryID string
	outcome   moduleAttemptOutcome
	module    SecurityModule
	reason    string
	err       error
}

func (e *Environment) installModules(ctx context.Context) ([]SecurityModule, error) {
	installed := make([]SecurityModule, 0, len(e.config.ModuleFactories))
	for _, factoryID := range e.config.ModuleFactoryIDs() {
		attempt := e.attemptModuleInstall(ctx, factoryID)
		switch attempt.outcome {
		case moduleAttemptSkipped:
			e.logDebug(ctx, "security module does not apply, skipping", map[string]any{
				"factory_id": attempt.factoryID,
				"reason":     attempt.reason,
			})
		case moduleAttemptInstalled:
			installed = append(installed, attempt.module)
			e.logInfo(ctx, "security module installed", map[string]any{
				"factory_id": attempt.factoryID,
				"module":     attempt.module.Name(),
			})
		case moduleAttemptFailed:
			e.logError(ctx, "security module installation failed", map[string]any{
				"factory_id": attempt.factoryID,
				"error":      attempt.err.Error(),
			})
			return nil, attempt.err
		}
	}
	return installed, nil
}

func (e *Environment) attemptModuleInstall(ctx context.Context, factoryID string) moduleAttempt {
	attempt := moduleAttempt{factoryID: factoryID}

	factory, err := e.registry.ResolveModuleFactory(factoryID)
	if err != nil {
		attempt.outcome = moduleAttemptFailed
		attempt.err = err
		return attempt
	}

	provision, err := factory.CreateModule(e.config)
	if err != nil {
		attempt.outcome = moduleAttemptFailed
		attempt.err = goerrors.Wrap(err, goerrors.CategoryOperation,
			"core: security module construction failed: "+factoryID).
			WithTextCode(EnvErrorModuleInstallFailed)
		return attempt
	}
	if provision.Outcome == ModuleNotApplicable {
		attempt.outcome = moduleAttemptSkipped
		attempt.reason = provision.Reason
		return attempt
	}
	if provision.Module == nil {
		attempt.outcome = moduleAttemptFailed
		attempt.err = newEnvironmentError(
			"core: factory reported a provisioned module without a module value: "+factoryID,
			goerrors.CategoryInternal,
			EnvErrorInternal,
		)
		return attempt
	}

	if err := provision.Module.Install(ctx); err != nil {
		attempt.outcome = moduleAttemptFailed
		attempt.err = goerrors.Wrap(err, goerrors.CategoryOperation,
			"core: security module install failed: "+factoryID).
			WithTextCode(EnvErrorModuleInstallFailed)
		return attempt
	}

	attempt.outcome = moduleAttemptInstalled
	attempt.module = provision.Module
	return attempt
}

type contextAttemptOutcome string

const (
	contextAttemptSelected     contextAttemptOutcome = "selected"
	contextAttemptUnresolved   contextAttemptOutcome = "unresolved"
	contextAttemptIncompatible contextAttemptOutcome = "incompatible"
	contextAttemptFailed       contextAttemptOutcome = "failed"
)

type contextAttempt struct {
	factoryID string
	outcome   contextAttemptOutcome
	context   SecurityContext
	err       error
}

func (e *Environment) installContext(ctx context.Context) error {
	for _, factoryID := range e.config.ContextFactoryIDs() {
		attempt := e.attemptContextInstall(factoryID)
		switch attempt.outcome {
		case contextAttemptUnresolved:
			e.logWarn(ctx, "unable to resolve security context factory", map[string]any{
				"factory_id": attempt.factoryID,
				"error":      attempt.err.Error(),
			})
		case contextAttemptIncompatible:
			e.logDebug(ctx, "security context factory is not compatible with the configuration", map[string]any{
				"factory_id": attempt.factoryID,
			})
		case contextAttemptFailed:
			e.logError(ctx, "cannot initialize security context", map[string]any{
				"factory_id": attempt.factoryID,
				"error":      attempt.err.Error(),
			})
		case contextAttemptSelected:
			// First compatible context that constructs wins; remaining
			// candidates are not evaluated.
			e.activeContext = attempt.context
			e.logInfo(ctx, "security context selected", map[string]any{
				"factory_id": attempt.factoryID,
				"context":    attempt.context.Name(),
			})
			return nil
		}
	}
	// The active context is seeded with the no-op context and never cleared,
	// so this guard fires only if the environment was built without a seed.
	if e.activeContext == nil {
		return newEnvironmentError(
			"core: no valid security context installed",
			goerrors.CategoryOperation,
			EnvErrorContextUnavailable,
		)
	}
	return nil
}

func (e *Environment) attemptContextInstall(factoryID string) contextAttempt {
	attempt := contextAttempt{factoryID: factoryID}

	factory, err := e.registry.ResolveContextFactory(factoryID)
	if err != nil {
		attempt.outcome = contextAttemptUnresolved
		attempt.err = err
		return attempt
	}
	if !factory.IsCompatible(e.config) {
		attempt.outcome = contextAttemptIncompatible
		return attempt
	}

	securityContext, err := factory.CreateContext(e.config)
	if err != nil {
		attempt.outcome = contextAttemptFailed
		attempt.err = goerrors.Wrap(err, goerrors.CategoryOperation,
			"core: security context construction failed: "+factoryID).
			WithTextCode(EnvErrorContextUnavailable)
		return attempt
	}
	if securityContext == nil {
		attempt.outcome = contextAttemptFailed
		attempt.err = newEnvironmentError(
			"core: context factory returned a nil security context: "+factoryID,
			goerrors.CategoryInternal,
			EnvErrorInternal,
		)
		return attempt
	}

	attempt.outcome = contextAttemptSelected
	attempt.context = securityContext
	return attempt
}

func (e *Environment) mapError(err error) error {
	if err == nil {
		return nil
	}
	if e == nil || e.errorMapper == nil {
		return environmentErrorMapper(err)
	}
	mapped := e.errorMapper(err)
	if mapped == nil {
		return nil
	}
	return mapped
}
