// Package config defines the client configuration: where the WasteWise
// backend lives, how the session is persisted, how the realtime channel
// reconnects, and how the CLI logs.
//
// Values are merged by confloader in this order, later wins:
//
//	defaults < ~/.wastewise/config.yaml < WASTEWISE_* env < flags
package config
