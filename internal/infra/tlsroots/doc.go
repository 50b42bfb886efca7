// Package tlsroots builds the TLS configuration used to reach a WasteWise
// deployment: system roots plus an optional private CA bundle and an
// optional client certificate.
package tlsroots
