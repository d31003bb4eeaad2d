package modules

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-secenv/core"
)

const (
	KeytabFactoryID = "secenv.module.keytab"

	SettingKeytabPath          = "keytab.path"
	SettingKeytabPrincipal     = "keytab.principal"
	SettingKeytabRenewInterval = "keytab.renew_interval"

	EnvKeytabPath = "SECENV_KEYTAB"
	EnvPrincipal  = "SECENV_PRINCIPAL"
)

// KeytabModule stages a private copy of the configured keytab credential
// material and exports its location and principal for the process. When the
// configuration declares a renewal interval the module reports a renewal
// deadline so the planner can schedule re-provisioning.
type KeytabModule struct {
	sourcePath    string
	principal     string
	renewInterval time.Duration

	dir              string
	stagedPath       string
	prevKeytab       string
	prevKeytabSet    bool
	prevPrincipal    string
	prevPrincipalSet bool
	installedAt      time.Time
}

func NewKeytabModule(sourcePath string, principal string, renewInterval time.Duration) *KeytabModule {
	return &KeytabModule{
		sourcePath:    sourcePath,
		principal:     principal,
		renewInterval: renewInterval,
	}
}

func (m *KeytabModule) Name() string { return "keytab" }

func (m *KeytabModule) Install(context.Context) error {
	info, err := os.Stat(m.sourcePath)
	if err != nil {
		return fmt.Errorf("modules: keytab %q is not readable: %w", m.sourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("modules: keytab %q is not a regular file", m.sourcePath)
	}

	dir, err := os.MkdirTemp("", "secenv-keytab-")
	if err != nil {
		return fmt.Errorf("modules: create keytab working dir: %w", err)
	}
	staged := filepath.Join(dir, filepath.Base(m.sourcePath))
	if err := copyFile(m.sourcePath, staged); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("modules: stage keytab copy: %w", err)
	}

	m.prevKeytab, m.prevKeytabSet = os.LookupEnv(EnvKeytabPath)
	if err := os.Setenv(EnvKeytabPath, staged); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("modules: export %s: %w", EnvKeytabPath, err)
	}
	m.prevPrincipal, m.prevPrincipalSet = os.LookupEnv(EnvPrincipal)
	if err := os.Setenv(EnvPrincipal, m.principal); err != nil {
		_ = restoreEnv(EnvKeytabPath, m.prevKeytab, m.prevKeytabSet)
		_ = os.RemoveAll(dir)
		return fmt.Errorf("modules: export %s: %w", EnvPrincipal, err)
	}

	m.dir = dir
	m.stagedPath = staged
	m.installedAt = time.Now()
	return nil
}

func (m *KeytabModule) Uninstall(context.Context) error {
	if m.dir == "" {
		return nil
	}
	if err := restoreEnv(EnvPrincipal, m.prevPrincipal, m.prevPrincipalSet); err != nil {
		return fmt.Errorf("modules: restore %s: %w", EnvPrincipal, err)
	}
	if err := restoreEnv(EnvKeytabPath, m.prevKeytab, m.prevKeytabSet); err != nil {
		return fmt.Errorf("modules: restore %s: %w", EnvKeytabPath, err)
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("modules: remove keytab working dir: %w", err)
	}
	m.dir = ""
	m.stagedPath = ""
	return nil
}

// NextRenewal reports when the staged material should be re-provisioned.
// Zero when no renewal interval is configured or the module is not
// installed.
func (m *KeytabModule) NextRenewal() time.Time {
	if m.renewInterval <= 0 || m.installedAt.IsZero() {
		return time.Time{}
	}
	return m.installedAt.Add(m.renewInterval)
}

// StagedPath returns the private keytab copy; empty until Install succeeds.
func (m *KeytabModule) StagedPath() string { return m.stagedPath }

func (m *KeytabModule) Principal() string { return m.principal }

type KeytabFactory struct{}

func NewKeytabFactory() KeytabFactory { return KeytabFactory{} }

func (KeytabFactory) ID() string { return KeytabFactoryID }

// CreateModule skips when no keytab is configured: the module simply does
// not apply to keytab-less deployments.
func (KeytabFactory) CreateModule(cfg core.Config) (core.ModuleProvision, error) {
	path := cfg.SettingString(SettingKeytabPath, "")
	if path == "" {
		return core.SkipModule("no keytab configured"), nil
	}
	principal := cfg.SettingString(SettingKeytabPrincipal, "")
	if principal == "" {
		return core.ModuleProvision{}, fmt.Errorf("modules: %s requires %s", SettingKeytabPath, SettingKeytabPrincipal)
	}

	renewInterval, err := renewIntervalSetting(cfg)
	if err != nil {
		return core.ModuleProvision{}, err
	}

	return core.ProvisionModule(NewKeytabModule(path, principal, renewInterval)), nil
}

// renewIntervalSetting accepts either a duration string ("30m") or a numeric
// value in seconds; anything else in the settings map is an error rather than
// a silent no-renewal fallback.
func renewIntervalSetting(cfg core.Config) (time.Duration, error) {
	raw, ok := cfg.Setting(SettingKeytabRenewInterval)
	if !ok {
		return 0, nil
	}
	switch value := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, nil
		}
		parsed, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("modules: parse %s: %w", SettingKeytabRenewInterval, err)
		}
		return parsed, nil
	case time.Duration:
		return value, nil
	case int:
		return time.Duration(value) * time.Second, nil
	case int64:
		return time.Duration(value) * time.Second, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("modules: %s must be a duration string or seconds, got %T", SettingKeytabRenewInterval, raw)
	}
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

var (
	_ core.SecurityModule  = (*KeytabModule)(nil)
	_ core.RenewableModule = (*KeytabModule)(nil)
	_ core.ModuleFactory   = KeytabFactory{}
)
