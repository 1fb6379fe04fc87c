package main

import (
	"os"
	"strconv"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	Count     int
	Readers   int
	Allocator string // heap or tracker
	LogLevel  string
	Out       string
}

func Default() Config {
	return Config{
		Count:     1 << 20,
		Readers:   4,
		Allocator: "tracker",
		LogLevel:  "info",
	}
}

// FromEnv overlays STELE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("STELE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Count = n
		}
	}
	if v := os.Getenv("STELE_READERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Readers = n
		}
	}
	if v := os.Getenv("STELE_ALLOCATOR"); v != "" {
		cfg.Allocator = v
	}
	if v := os.Getenv("STELE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STELE_OUT"); v != "" {
		cfg.Out = v
	}
}
