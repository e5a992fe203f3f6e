// Package config holds Writer's runtime settings.
//
// Settings are resolved in order: built-in defaults, then an optional YAML
// file (with ${VAR} expansion from the environment), then command-line flags
// applied by the caller. The result is validated before use.
package config
