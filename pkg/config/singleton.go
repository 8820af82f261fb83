package config

import (
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex
)

// SetConfig publishes cfg as the process configuration. The CLI calls it
// once at startup, after environment and command-line overrides have been
// applied and the result validated.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// GetConfig returns the process configuration, or nil before SetConfig.
// The route table is built once from this value and never changes, so
// callers must treat the returned Config as read-only.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// MustGetConfig returns the process configuration.
// It panics if no configuration has been published.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call SetConfig first")
	}
	return cfg
}

// resetForTesting clears the published configuration.
func resetForTesting() {
	SetConfig(nil)
}
