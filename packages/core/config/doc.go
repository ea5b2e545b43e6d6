// Package config handles configuration loading and management for graphassert.
//
// It provides functionality for:
//   - Loading configuration from .graphassert.json, graphassert.json or .graphassertrc
//   - Default configuration values
//   - Merging configs so command-line flags take precedence over files
package config
