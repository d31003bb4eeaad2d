package core

import "testing"

func TestConfig_ValidateRejectsBlankIdentifiers(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cfg.ModuleFactories = []string{"mod.a", "  "}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected blank module factory id to fail validation")
	}

	cfg = DefaultConfig()
	cfg.ContextFactories = []string{""}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected blank context factory id to fail validation")
	}

	cfg = Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing service name to fail validation")
	}
}

func TestConfig_AccessorsCopy(t *testing.T) {
	cfg := Config{
		ServiceName:      "secenv",
		ModuleFactories:  []string{"mod.a", "mod.b"},
		ContextFactories: []string{"ctx.x"},
	}

	ids := cfg.ModuleFactoryIDs()
	ids[0] = "mutated"
	if cfg.ModuleFactories[0] != "mod.a" {
		t.Fatalf("module factory accessor must return a copy")
	}

	contexts := cfg.ContextFactoryIDs()
	contexts[0] = "mutated"
	if cfg.ContextFactories[0] != "ctx.x" {
		t.Fatalf("context factory accessor must return a copy")
	}
}

func TestConfig_SettingString(t *testing.T) {
	cfg := Config{
		ServiceName: "secenv",
		Settings: map[string]any{
			"keytab.path": "/etc/secenv/service.keytab",
			"retries":     3,
			"blank":       "   ",
		},
	}

	if got := cfg.SettingString("keytab.path", ""); got != "/etc/secenv/service.keytab" {
		t.Fatalf("unexpected setting value: %q", got)
	}
	if got := cfg.SettingString("missing", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for missing key, got %q", got)
	}
	if got := cfg.SettingString("retries", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for non-string value, got %q", got)
	}
	if got := cfg.SettingString("blank", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestConfig_SettingResolvesNestedPaths(t *testing.T) {
	cfg := Config{
		ServiceName: "secenv",
		Settings: map[string]any{
			"keytab": map[string]any{
				"path":      "/etc/secenv/service.keytab",
				"principal": "service/host@REALM",
			},
		},
	}

	if got := cfg.SettingString("keytab.path", ""); got != "/etc/secenv/service.keytab" {
		t.Fatalf("expected nested lookup, got %q", got)
	}
	if got := cfg.SettingString("keytab.principal", ""); got != "service/host@REALM" {
		t.Fatalf("expected nested lookup, got %q", got)
	}
	if _, ok := cfg.Setting("keytab.missing"); ok {
		t.Fatalf("expected missing nested key to report absent")
	}
}
