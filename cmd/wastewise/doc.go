// Package main provides the entry point for the wastewise client.
//
// The client signs in to the WasteWise backend, keeps the session on disk
// and exposes the platform from the command line:
//
//   - Authentication (login, logout, register, token refresh and verify)
//   - Bins, zones, sensors, alerts, routes, vehicles and analytics
//   - Live realtime events (watch) and sensor commands
//   - An interactive shell that keeps the realtime channel open
//
// Usage:
//
//	wastewise login --email ops@example.com --password ...
//	wastewise -o json bins list --status active
//	wastewise watch --event alert_notification
//	wastewise shell
package main
