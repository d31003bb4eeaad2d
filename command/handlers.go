package command

import (
	"context"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-secenv/core"
)

type ProvisioningService interface {
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
	ActiveContext() core.SecurityContext
	InstalledModules() []core.SecurityModule
	Provisioned() bool
}

type RenewalService interface {
	PlanRenewals(ctx context.Context, window time.Duration) (int, error)
}

// InstallReport summarizes a completed provisioning pass.
type InstallReport struct {
	ContextName string
	Modules     []string
	Provisioned bool
}

type RenewalReport struct {
	Enqueued int
}

type InstallCommand struct {
	service ProvisioningService
}

func NewInstallCommand(service ProvisioningService) *InstallCommand {
	return &InstallCommand{service: service}
}

func (c *InstallCommand) Execute(ctx context.Context, _ InstallMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	if err := c.service.Install(ctx); err != nil {
		return err
	}
	storeResult(ctx, buildInstallReport(c.service))
	return nil
}

type UninstallCommand struct {
	service ProvisioningService
}

func NewUninstallCommand(service ProvisioningService) *UninstallCommand {
	return &UninstallCommand{service: service}
}

func (c *UninstallCommand) Execute(ctx context.Context, _ UninstallMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	return c.service.Uninstall(ctx)
}

type PlanRenewalsCommand struct {
	service RenewalService
}

func NewPlanRenewalsCommand(service RenewalService) *PlanRenewalsCommand {
	return &PlanRenewalsCommand{service: service}
}

func (c *PlanRenewalsCommand) Execute(ctx context.Context, msg PlanRenewalsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: renewal service is required")
	}
	if msg.Window < 0 {
		return commandInvalidInputError("command: renewal window must not be negative")
	}
	enqueued, err := c.service.PlanRenewals(ctx, msg.Window)
	if err != nil {
		return err
	}
	storeResult(ctx, RenewalReport{Enqueued: enqueued})
	return nil
}

func buildInstallReport(service ProvisioningService) InstallReport {
	report := InstallReport{
		Provisioned: service.Provisioned(),
	}
	if active := service.ActiveContext(); active != nil {
		report.ContextName = active.Name()
	}
	for _, module := range service.InstalledModules() {
		report.Modules = append(report.Modules, module.Name())
	}
	return report
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
