package logger

import (
	"log/slog"
	"strings"
)

// jwtPrefix starts every JWT: base64url of `{"`.
const jwtPrefix = "eyJ"

const bearerPrefix = "Bearer "

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"access",
	"refresh",
	"credential",
	"authorization",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks token-shaped values and redacts credential keys.
// Value detection wins over key detection so that a masked JWT still
// leaves a hint for correlating log lines.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if IsSensitiveValue(strVal) {
			return slog.String(a.Key, RedactString(strVal))
		}
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
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

// maskValue partially masks a value: prefix + first 3 + "..." + last 3.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactString masks a JWT or bearer header value. Anything else is
// returned unchanged.
func RedactString(value string) string {
	switch {
	case strings.HasPrefix(value, bearerPrefix):
		rest := value[len(bearerPrefix):]
		if isJWT(rest) {
			return bearerPrefix + maskValue(rest, jwtPrefix)
		}
		return bearerPrefix + "***"
	case isJWT(value):
		return maskValue(value, jwtPrefix)
	default:
		return value
	}
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

// IsSensitiveValue reports whether value looks like a JWT or a bearer header.
func IsSensitiveValue(value string) bool {
	return strings.HasPrefix(value, bearerPrefix) || isJWT(value)
}

func isJWT(value string) bool {
	return strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2
}
