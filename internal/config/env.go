// Package config provides configuration helpers for go-nomad commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default service configuration.
const (
	DefaultAgentPort      = 8080
	DefaultToolServerPort = 8000
	DefaultToolServerURL  = "http://localhost:8000"
)

// Env returns the value of an environment variable, or the fallback if unset.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns an integer environment variable, or the fallback if unset
// or unparseable.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// EnvRequired returns the value of an environment variable.
// Exits with a usage message if not set.
func EnvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "Error: %s environment variable is required\n", key)
		fmt.Fprintf(os.Stderr, "Usage: %s=... go run ./cmd/...\n", key)
		os.Exit(1)
	}
	return v
}

// OpenAIKey returns the OpenAI API key from OPENAI_API_KEY.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// ElevenLabsKey returns the ElevenLabs API key from ELEVENLABS_API_KEY.
func ElevenLabsKey() string {
	return os.Getenv("ELEVENLABS_API_KEY")
}

// ToolServerURL returns the catalog tool server base URL.
func ToolServerURL() string {
	return Env("TOOL_SERVER_URL", DefaultToolServerURL)
}

// VendorWallet returns the vendor Solana public key from VENDOR_WALLET.
func VendorWallet() string {
	return os.Getenv("VENDOR_WALLET")
}
