package config

import "strings"

// Sanitize returns a copy of cfg safe to log: secrets keep only their
// first and last two characters.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg
	out.Server.HTTP.AdminToken = mask(out.Server.HTTP.AdminToken)
	return &out
}

func mask(secret string) string {
	switch n := len(secret); {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	default:
		return secret[:2] + strings.Repeat("*", n-4) + secret[n-2:]
	}
}
