// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// config_test.go — Config store snapshot, typed access and reload hooks.
package control

import (
	"sync"
	"testing"
)

func TestConfigStore_SnapshotAndTypedGet(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{
		"channel.spin_attempts": 128,
		"channel.label":         "demo",
	})

	if got := cs.GetInt("channel.spin_attempts", 64); got != 128 {
		t.Fatalf("GetInt: %d", got)
	}
	if got := cs.GetInt("channel.missing", 64); got != 64 {
		t.Fatalf("GetInt default: %d", got)
	}
	if got := cs.GetInt("channel.label", 7); got != 7 {
		t.Fatalf("GetInt mistyped: %d", got)
	}

	snap := cs.GetSnapshot()
	snap["channel.spin_attempts"] = 1
	if cs.GetInt("channel.spin_attempts", 0) != 128 {
		t.Fatal("snapshot mutation leaked into store")
	}
}

func TestConfigStore_ReloadListener(t *testing.T) {
	cs := NewConfigStore()

	var wg sync.WaitGroup
	wg.Add(1)
	cs.OnReload(func() { wg.Done() })

	cs.SetConfig(map[string]any{"k": 1})
	wg.Wait() // listener dispatched asynchronously
}
