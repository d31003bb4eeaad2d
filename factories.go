package secenv

import (
	"fmt"

	"github.com/goliatone/go-secenv/contexts"
	"github.com/goliatone/go-secenv/core"
	"github.com/goliatone/go-secenv/modules"
	"github.com/goliatone/go-secenv/secrets"
)

// AppKeySecretProvider builds the default sealed-credential provider from
// process-local key material.
func AppKeySecretProvider(key string, opts ...secrets.Option) (core.SecretProvider, error) {
	return secrets.NewAppKeySecretProviderFromString(key, opts...)
}

func AuthConfModuleFactory() core.ModuleFactory {
	return modules.NewAuthConfFactory()
}

func KeytabModuleFactory() core.ModuleFactory {
	return modules.NewKeytabFactory()
}

func SecretsModuleFactory(provider core.SecretProvider) core.ModuleFactory {
	return modules.NewSecretsFactory(provider)
}

func PrincipalContextFactory() core.ContextFactory {
	return contexts.NewPrincipalContextFactory()
}

func NoopContextFactory() core.ContextFactory {
	return contexts.NewNoopContextFactory()
}

// RegisterBuiltinFactories installs every built-in module and context
// factory into the registry. The secret provider may be nil when no sealed
// credentials are configured; the secrets factory then skips itself unless
// an envelope shows up in the configuration.
func RegisterBuiltinFactories(registry *core.FactoryRegistry, provider core.SecretProvider) error {
	if registry == nil {
		return fmt.Errorf("secenv: factory registry is required")
	}
	moduleFactories := []core.ModuleFactory{
		AuthConfModuleFactory(),
		KeytabModuleFactory(),
		SecretsModuleFactory(provider),
	}
	for _, factory := range moduleFactories {
		if err := registry.RegisterModuleFactory(factory); err != nil {
			return err
		}
	}
	contextFactories := []core.ContextFactory{
		PrincipalContextFactory(),
		NoopContextFactory(),
	}
	for _, factory := range contextFactories {
		if err := registry.RegisterContextFactory(factory); err != nil {
			return err
		}
	}
	return nil
}
