// Package realtime keeps one authenticated WebSocket connection to the
// WasteWise event gateway.
//
// A Channel moves through Disconnected, Connecting, Connected and
// Reconnecting. After every successful connect it subscribes to its channel
// set. When the server drops the connection it reconnects with linear
// backoff (delay * attempt) up to a fixed number of attempts. Disconnect is
// terminal: it cancels any pending reconnect and forgets every listener.
//
// Inbound frames are JSON envelopes {event, data, timestamp}. Each known
// event is fanned out to its listeners in registration order on the read
// goroutine. A listener that panics or returns an error is logged and
// skipped; the others still run.
package realtime
