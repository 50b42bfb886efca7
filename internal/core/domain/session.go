// Package domain defines the core domain models for the WasteWise client.
package domain

import "strings"

// PersistKey is the storage key of the persisted session record.
const PersistKey = "auth-storage"

// Credentials is the access/refresh token pair issued by the backend.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// HasAccess reports whether an access token is present.
func (c *Credentials) HasAccess() bool {
	return c != nil && strings.TrimSpace(c.Access) != ""
}

// HasRefresh reports whether a refresh token is present.
func (c *Credentials) HasRefresh() bool {
	return c != nil && strings.TrimSpace(c.Refresh) != ""
}

// Clone returns a copy of the credentials, or nil.
func (c *Credentials) Clone() *Credentials {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// SessionState is the authentication state read by every UI surface.
//
// Invariant: IsAuthenticated implies Credentials carries an access token.
type SessionState struct {
	User            *User
	Credentials     *Credentials
	IsAuthenticated bool
	IsLoading       bool
}

// Clone returns a deep copy so callers can never mutate the owner's state.
func (s SessionState) Clone() SessionState {
	out := SessionState{
		Credentials:     s.Credentials.Clone(),
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// Valid reports whether the state satisfies the authentication invariant.
func (s SessionState) Valid() bool {
	return !s.IsAuthenticated || s.Credentials.HasAccess()
}

// Persisted returns the durable projection of the state. The loading
// flag is deliberately not part of it.
func (s SessionState) Persisted() PersistedSession {
	c := s.Clone()
	return PersistedSession{
		User:            c.User,
		Tokens:          c.Credentials,
		IsAuthenticated: c.IsAuthenticated,
	}
}

// PersistedSession is the record stored under PersistKey.
type PersistedSession struct {
	User            *User        `json:"user"`
	Tokens          *Credentials `json:"tokens"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// State rebuilds a session state from the persisted record. IsLoading is
// always false for a rehydrated state.
func (p PersistedSession) State() SessionState {
	return SessionState{
		User:            p.User,
		Credentials:     p.Tokens,
		IsAuthenticated: p.IsAuthenticated,
	}.Clone()
}

// Empty reports whether the record carries nothing worth restoring.
func (p PersistedSession) Empty() bool {
	return p.User == nil && p.Tokens == nil && !p.IsAuthenticated
}
