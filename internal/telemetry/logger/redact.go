package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// Attribute keys whose string values are replaced entirely.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

// Attribute keys that carry stored data; long values are shortened.
var payloadKeys = map[string]bool{
	"value": true,
	"args":  true,
	"reply": true,
}

// MaxPayloadLen is the longest payload logged verbatim.
const MaxPayloadLen = 64

const redactedValue = "***REDACTED***"

// redactSensitive is the slog ReplaceAttr hook.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if payloadKeys[a.Key] {
			return slog.String(a.Key, Truncate(strVal))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// Truncate shortens s to MaxPayloadLen bytes, noting how much was cut.
func Truncate(s string) string {
	if len(s) <= MaxPayloadLen {
		return s
	}
	cut := MaxPayloadLen
	// Back off to a rune boundary.
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "...(" + strconv.Itoa(len(s)) + " bytes)"
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
