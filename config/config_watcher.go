package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/covechat/cove/logger"
)

var (
	currentMu sync.RWMutex
	current   *Config
)

func setCurrent(c *Config) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = c
}

// Current returns the last successfully loaded config. Nil before Load.
func Current() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// Watch re-reads the config file whenever it changes on disk and hands each
// parsed result to onChange. Callers decide which settings can take effect
// without a restart; listen address and database URL cannot. A config loaded
// purely from env and defaults has no file to watch, so Watch is a no-op.
func Watch(onChange func(*Config)) {
	loadedMu.RLock()
	v := loaded
	loadedMu.RUnlock()
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var c Config
		if err := v.Unmarshal(&c); err != nil {
			logger.Warnf("[config] reload failed, keeping previous config: %v", err)
			return
		}
		setCurrent(&c)
		onChange(&c)
	})
	v.WatchConfig()
}
