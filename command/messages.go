// Package command exposes the provisioning operations as dispatchable
// command messages and handlers.
package command

import "time"

const (
	TypeInstall      = "secenv.command.install"
	TypeUninstall    = "secenv.command.uninstall"
	TypePlanRenewals = "secenv.command.renewals.plan"
)

type InstallMessage struct{}

func (InstallMessage) Type() string { return TypeInstall }

func (InstallMessage) Validate() error { return nil }

type UninstallMessage struct{}

func (UninstallMessage) Type() string { return TypeUninstall }

func (UninstallMessage) Validate() error { return nil }

type PlanRenewalsMessage struct {
	Window time.Duration
}

func (PlanRenewalsMessage) Type() string { return TypePlanRenewals }

func (m PlanRenewalsMessage) Validate() error {
	if m.Window < 0 {
		return commandInvalidInputError("command: renewal window must not be negative")
	}
	return nil
}
