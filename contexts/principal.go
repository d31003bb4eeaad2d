package contexts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-secenv/core"
	"github.com/goliatone/go-secenv/modules"
)

const (
	PrincipalContextFactoryID = "secenv.context.principal"

	SettingPrincipal = "principal"
)

type principalContextKey struct{}

// WithPrincipal returns a context carrying the given principal identity.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext reports the principal bound to the context, if any.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(string)
	if !ok || principal == "" {
		return "", false
	}
	return principal, true
}

// PrincipalContext runs secured actions with the configured principal bound
// to the action's context, so downstream code can attribute work to the
// provisioned identity.
type PrincipalContext struct {
	principal string
}

func NewPrincipalContext(principal string) (*PrincipalContext, error) {
	if principal == "" {
		return nil, fmt.Errorf("contexts: principal is required")
	}
	return &PrincipalContext{principal: principal}, nil
}

func (c *PrincipalContext) Name() string { return "principal" }

func (c *PrincipalContext) Principal() string { return c.principal }

func (c *PrincipalContext) RunSecured(ctx context.Context, action core.SecuredAction) error {
	if action == nil {
		return fmt.Errorf("contexts: secured action is required")
	}
	return action(WithPrincipal(ctx, c.principal))
}

// PrincipalContextFactory selects the principal context when the
// configuration names an identity, either directly or through the keytab
// settings.
type PrincipalContextFactory struct{}

func NewPrincipalContextFactory() PrincipalContextFactory { return PrincipalContextFactory{} }

func (PrincipalContextFactory) ID() string { return PrincipalContextFactoryID }

func (PrincipalContextFactory) IsCompatible(cfg core.Config) bool {
	return configuredPrincipal(cfg) != ""
}

func (PrincipalContextFactory) CreateContext(cfg core.Config) (core.SecurityContext, error) {
	principal := configuredPrincipal(cfg)
	if principal == "" {
		return nil, fmt.Errorf("contexts: no principal configured")
	}
	return NewPrincipalContext(principal)
}

func configuredPrincipal(cfg core.Config) string {
	if principal := cfg.SettingString(SettingPrincipal, ""); principal != "" {
		return principal
	}
	return cfg.SettingString(modules.SettingKeytabPrincipal, "")
}

var (
	_ core.SecurityContext = (*PrincipalContext)(nil)
	_ core.ContextFactory  = PrincipalContextFactory{}
)
