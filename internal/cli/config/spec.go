package config

import (
	"net"
	"strconv"
)

// Defaults for a fresh install.
const (
	DefaultHost   = "localhost"
	DefaultPort   = 6379
	DefaultOutput = "text"
)

// CLIConfig is the configuration for redisharp-cli, read from
// ~/.redisharp/cli.yaml. Command-line arguments override every field.
type CLIConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Output  string `yaml:"output"`  // text, json, yaml
	History string `yaml:"history"` // empty uses ~/.redisharp_history
	NoColor bool   `yaml:"no_color"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Output: DefaultOutput,
	}
}

// Addr returns host:port.
func (c *CLIConfig) Addr() string {
	return joinHostPort(c.Host, c.Port)
}

func joinHostPort(host string, port int) string {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
