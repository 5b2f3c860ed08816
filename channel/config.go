// File: channel/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channel

import "github.com/momentics/hioload-ring/control"

// Config tunes the retry and backlog policy of channel writers and readers.
type Config struct {
	// SpinAttempts bounds how many times a helper retries a transient
	// failure (lock contention, short space) before giving up or spilling.
	SpinAttempts int
	// MaxBacklog bounds the writer's spill queue, in records. 0 disables
	// spilling entirely.
	MaxBacklog int
}

// DefaultConfig returns the default channel policy.
func DefaultConfig() Config {
	return Config{
		SpinAttempts: 64,
		MaxBacklog:   1024,
	}
}

// ConfigFromStore builds a Config from a control.ConfigStore snapshot,
// falling back to defaults for absent keys.
func ConfigFromStore(cs *control.ConfigStore) Config {
	def := DefaultConfig()
	if cs == nil {
		return def
	}
	return Config{
		SpinAttempts: cs.GetInt("channel.spin_attempts", def.SpinAttempts),
		MaxBacklog:   cs.GetInt("channel.max_backlog", def.MaxBacklog),
	}
}
