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
	SecretsFactoryID = "secenv.module.secrets"

	SettingSecretsEnvelope = "secrets.envelope"
	SettingSecretsEnvVar   = "secrets.env_var"

	defaultSecretsEnvVar = "SECENV_CREDENTIAL_FILE"
)

// SealedCredentialModule unseals a credential envelope through the
// configured secret provider and stages the plaintext in a private file for
// the process lifetime. The plaintext never touches the configuration.
type SealedCredentialModule struct {
	provider core.SecretProvider
	envelope string
	envVar   string

	dir       string
	path      string
	prevValue string
	prevSet   bool
}

func NewSealedCredentialModule(provider core.SecretProvider, envelope string, envVar string) *SealedCredentialModule {
	trimmed := strings.TrimSpace(envVar)
	if trimmed == "" {
		trimmed = defaultSecretsEnvVar
	}
	return &SealedCredentialModule{
		provider: provider,
		envelope: envelope,
		envVar:   trimmed,
	}
}

func (m *SealedCredentialModule) Name() string { return "secrets" }

func (m *SealedCredentialModule) Install(ctx context.Context) error {
	if m.provider == nil {
		return fmt.Errorf("modules: secret provider is required")
	}
	plaintext, err := m.provider.Decrypt(ctx, []byte(m.envelope))
	if err != nil {
		return fmt.Errorf("modules: unseal credential envelope: %w", err)
	}

	dir, err := os.MkdirTemp("", "secenv-secrets-")
	if err != nil {
		return fmt.Errorf("modules: create credential working dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("credential-%s", uuid.NewString()[:8]))
	if err := os.WriteFile(path, plaintext, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("modules: stage credential material: %w", err)
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

func (m *SealedCredentialModule) Uninstall(context.Context) error {
	if m.dir == "" {
		return nil
	}
	if err := restoreEnv(m.envVar, m.prevValue, m.prevSet); err != nil {
		return fmt.Errorf("modules: restore %s: %w", m.envVar, err)
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("modules: remove credential working dir: %w", err)
	}
	m.dir = ""
	m.path = ""
	return nil
}

// Path returns the staged plaintext location; empty until Install succeeds.
func (m *SealedCredentialModule) Path() string { return m.path }

type SecretsFactory struct {
	provider core.SecretProvider
}

func NewSecretsFactory(provider core.SecretProvider) SecretsFactory {
	return SecretsFactory{provider: provider}
}

func (SecretsFactory) ID() string { return SecretsFactoryID }

func (f SecretsFactory) CreateModule(cfg core.Config) (core.ModuleProvision, error) {
	envelope := cfg.SettingString(SettingSecretsEnvelope, "")
	if envelope == "" {
		return core.SkipModule("no credential envelope configured"), nil
	}
	if f.provider == nil {
		return core.ModuleProvision{}, fmt.Errorf("modules: secrets factory requires a secret provider")
	}
	envVar := cfg.SettingString(SettingSecretsEnvVar, defaultSecretsEnvVar)
	return core.ProvisionModule(NewSealedCredentialModule(f.provider, envelope, envVar)), nil
}

var (
	_ core.SecurityModule = (*SealedCredentialModule)(nil)
	_ core.ModuleFactory  = SecretsFactory{}
)
