package core

import (
	"fmt"
	"strings"
)

// Config declares the ordered module factories to install, the ordered
// context factory candidates (first compatible success wins), and opaque
// settings that are passed unmodified to every factory. The environment
// treats it as read-only; accessors return copies.
type Config struct {
	ServiceName      string         `koanf:"service_name" mapstructure:"service_name"`
	ModuleFactories  []string       `koanf:"module_factories" mapstructure:"module_factories"`
	ContextFactories []string       `koanf:"context_factories" mapstructure:"context_factories"`
	Settings         map[string]any `koanf:"settings" mapstructure:"settings"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "secenv",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	for _, id := range c.ModuleFactories {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("core: module factory id must not be blank")
		}
	}
	for _, id := range c.ContextFactories {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("core: context factory id must not be blank")
		}
	}
	return nil
}

// ModuleFactoryIDs returns the module factory identifiers in declared order.
// Identifiers are not required to be unique; order is significant.
func (c Config) ModuleFactoryIDs() []string {
	out := make([]string, len(c.ModuleFactories))
	copy(out, c.ModuleFactories)
	return out
}

// ContextFactoryIDs returns the context factory identifiers in priority order.
func (c Config) ContextFactoryIDs() []string {
	out := make([]string, len(c.ContextFactories))
	copy(out, c.ContextFactories)
	return out
}

// Setting returns the raw settings value for key. Dotted keys resolve
// against the literal key first, then as a nested path, so settings survive
// config layers that expand dots into nested maps.
func (c Config) Setting(key string) (any, bool) {
	if len(c.Settings) == 0 {
		return nil, false
	}
	trimmed := strings.TrimSpace(key)
	if value, ok := c.Settings[trimmed]; ok {
		return value, true
	}
	if !strings.Contains(trimmed, ".") {
		return nil, false
	}

	var current any = c.Settings
	for _, segment := range strings.Split(trimmed, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SettingString returns the settings value for key as a trimmed string, or
// fallback when the key is missing or not a string.
func (c Config) SettingString(key string, fallback string) string {
	value, ok := c.Setting(key)
	if !ok {
		return fallback
	}
	str, ok := value.(string)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
