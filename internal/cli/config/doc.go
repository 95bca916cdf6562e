// Package config holds the redisharp-cli settings file.
//
// The file lives at ~/.redisharp/cli.yaml and sets the default server,
// output format and history location. Every field can be overridden on
// the command line.
package config
