// Package config loads the sync agent's YAML configuration with environment
// variable expansion, defaults, and validation.
package config
