// Package config provides configuration for the highlight overlay.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← HLSYNC_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, chosen by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Default()
//	└─────────────────────────────┘
//
// # Basic Usage
//
//	cfg, err := config.Load("hlsync.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sess, err := highlight.New(caps, highlight.WithConfig(cfg))
//
// A missing file is not an error; Load returns the defaults with any
// environment overrides applied.
//
// # File Format
//
//	[overlay]
//	chunkSize = 512
//	overflowChunks = 10
//	cacheCapacity = 500
//	precompute = true
//
//	[logging]
//	level = "warn"
//
//	[theme]
//	path = "~/.config/hlsync/theme.toml"
package config
