// Package config resolves texloader's run settings and provides the logger
// shared by the installer components.
//
// # Sources
//
// Settings are resolved with viper, highest precedence first:
//  1. Command-line flags that were explicitly set
//  2. TEXLOADER_* environment variables (TEXLOADER_TARGET, TEXLOADER_BIN_DIR, ...)
//  3. An optional config file given with --config (YAML, TOML or JSON)
//  4. Built-in defaults
//
// The result is validated once into an immutable Settings value; nothing
// downstream reads viper directly.
//
// # Logging
//
// Components accept the small Logger interface and default to a no-op
// implementation. NewLogger returns a charmbracelet/log logger that writes to
// stderr-style writers and satisfies the interface.
package config
