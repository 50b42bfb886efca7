// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (LoadMap)
//  2. A YAML file
//  3. Environment variables with the WASTEWISE_ prefix
//  4. Command-line flags (LoadMap)
//
// In environment names a double underscore separates nesting levels and a
// single underscore stays part of the key:
//
//	WASTEWISE_API_URL              -> api_url
//	WASTEWISE_REALTIME__CHANNELS   -> realtime.channels
//	WASTEWISE_LOG__LEVEL           -> log.level
//
// Watcher reports changes to the config file so long-running commands can
// reload what is safe to change at runtime.
package confloader
