// Package confloader loads configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Command-line flags (WithFlags)
//  2. Environment variables (REDISHARP_ prefix), including .env files
//  3. The YAML configuration file
//  4. Defaults already present in the target struct
//
// Watcher follows the configuration file with fsnotify so that selected
// keys, such as log.level, can be applied without a restart.
package confloader
