// Package domain defines the core domain models for the WasteWise client.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Credentials, SessionState, PersistedSession: the authenticated session
//   - User and the auth request payloads
//   - Resource records returned by the REST API (bins, alerts, routes, ...)
//   - Realtime event names, channel names and the wire envelope
//   - Errors: Domain-specific error definitions
package domain
