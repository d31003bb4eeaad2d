package secenv

import (
	"context"
	"fmt"
	"time"

	secenvcommand "github.com/goliatone/go-secenv/command"
	"github.com/goliatone/go-secenv/core"
)

type Commands struct {
	Install      *secenvcommand.InstallCommand
	Uninstall    *secenvcommand.UninstallCommand
	PlanRenewals *secenvcommand.PlanRenewalsCommand
}

// Facade bundles the command handlers for an environment so callers can
// register them against a dispatcher in one place.
type Facade struct {
	env      *core.Environment
	commands Commands
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	planner *core.RenewalPlanner
}

func WithRenewalPlanner(planner *core.RenewalPlanner) FacadeOption {
	return func(options *facadeOptions) {
		options.planner = planner
	}
}

func NewFacade(env *core.Environment, opts ...FacadeOption) (*Facade, error) {
	if env == nil {
		return nil, fmt.Errorf("secenv: environment is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{env: env}
	facade.commands = Commands{
		Install:   secenvcommand.NewInstallCommand(env),
		Uninstall: secenvcommand.NewUninstallCommand(env),
	}
	if cfg.planner != nil {
		facade.commands.PlanRenewals = secenvcommand.NewPlanRenewalsCommand(&environmentRenewals{
			env:     env,
			planner: cfg.planner,
		})
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Environment() *core.Environment {
	if f == nil {
		return nil
	}
	return f.env
}

// environmentRenewals binds a planner to its environment so it satisfies
// the renewal service contract the command layer expects.
type environmentRenewals struct {
	env     *core.Environment
	planner *core.RenewalPlanner
}

func (r *environmentRenewals) PlanRenewals(ctx context.Context, window time.Duration) (int, error) {
	if r == nil || r.planner == nil {
		return 0, fmt.Errorf("secenv: renewal planner is not configured")
	}
	return r.planner.PlanRenewals(ctx, r.env, window)
}

var _ secenvcommand.RenewalService = (*environmentRenewals)(nil)
