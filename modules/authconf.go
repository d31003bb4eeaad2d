package modules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-secenv/core"
	"github.com/google/uuid"
)

const (
	AuthConfFactoryID = "secenv.module.authconf"

	SettingAuthConfContents = "auth_conf.contents"
	SettingAuthConfEnvVar   = "auth_conf.env_var"

	defaultAuthConfEnvVar = "SECENV_AUTH_CONF"
)

// AuthConfModule stages an authentication configuration file in a private
// working directory and points an environment variable at it so that
// downstream libraries pick it up. Uninstall removes the directory and
// restores the previous variable.
type AuthConfModule struct {
	contents string
	envVar   string

	dir       string
	path      string
	prevValue string
	prevSet   bool
}

func NewAuthConfModule(contents string, envVar string) *AuthConfModule {
	trimmed := strings.TrimSpace(envVar)
	if trimmed == "" {
		trimmed = defaultAuthConfEnvVar
	}
	return &AuthConfModule{
		contents: contents,
		envVar:   trimmed,
	}
}

func (m *AuthConfModule) Name() string { return "authconf" }

func (m *AuthConfModule) Install(context.Context) error {
	dir, err := os.MkdirTemp("", "secenv-authconf-")
	if err != nil {
		return fmt.Errorf("modules: create auth conf working dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("auth-%s.conf", uuid.NewString()[:8]))
	if err := os.WriteFile(path, []byte(m.contents), 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("modules: write auth conf file: %w", err)
	}

	m.prevValue, m.prevSet = os.LookupEnv(m.envVar)
	if err := os.Setenv(m.envVar, path); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("modules: export %s: %w", m.envVar, err)
	}

	m.dir = dir
	m.path = path
	return nil
}

func (m *AuthConfModule) Uninstall(context.Context) error {
	if m.dir == "" {
		return nil
	}
	if err := restoreEnv(m.envVar, m.prevValue, m.prevSet); err != nil {
		return fmt.Errorf("modules: restore %s: %w", m.envVar, err)
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("modules: remove auth conf working dir: %w", err)
	}
	m.dir = ""
	m.path = ""
	return nil
}

// Path returns the staged file location; empty until Install succeeds.
func (m *AuthConfModule) Path() string { return m.path }

type AuthConfFactory struct{}

func NewAuthConfFactory() AuthConfFactory { return AuthConfFactory{} }

func (AuthConfFactory) ID() string { return AuthConfFactoryID }

// CreateModule always provisions: an empty configuration still yields a
// staged file, which downstream consumers treat as "no extra auth entries".
func (AuthConfFactory) CreateModule(cfg core.Config) (core.ModuleProvision, error) {
	contents := cfg.SettingString(SettingAuthConfContents, "")
	envVar := cfg.SettingString(SettingAuthConfEnvVar, defaultAuthConfEnvVar)
	return core.ProvisionModule(NewAuthConfModule(contents, envVar)), nil
}

func restoreEnv(key string, prevValue string, prevSet bool) error {
	if prevSet {
		return os.Setenv(key, prevValue)
	}
	return os.Unsetenv(key)
}

var (
	_ core.SecurityModule = (*AuthConfModule)(nil)
	_ core.ModuleFactory  = AuthConfFactory{}
)
