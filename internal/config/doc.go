// Package config loads and validates the presence runner configuration.
//
// Configuration is YAML with ${VAR} environment substitution. Missing
// optional fields get defaults (see defaults.go) before validation.
package config
