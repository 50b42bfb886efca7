package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for display
// and logging.
func Sanitize(cfg *ClientConfig) *ClientConfig {
	sanitized := *cfg
	sanitized.Realtime.Channels = append([]string(nil), cfg.Realtime.Channels...)

	if sanitized.Storage.Passphrase != "" {
		sanitized.Storage.Passphrase = maskSecret(sanitized.Storage.Passphrase)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
