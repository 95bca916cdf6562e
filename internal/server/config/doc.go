// Package config provides the redisharp-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (addresses, intervals, snapshot directory)
//   - sanitize.go: masking secrets before the config is logged
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// REDISHARP_* environment variables and command-line flags.
package config
