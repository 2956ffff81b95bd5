// Package session gates access to authenticated functionality. A Client
// owns the identity session against the OIDC provider; the Guard reacts to
// its transitions, preserving the requested destination across the
// interactive sign-in round trip.
package session

import "time"

// Claims are the profile claims carried by the identity token.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is the current identity session as reported by the provider
// client. Authenticated false with a nil Err simply means signed out.
type Session struct {
	Authenticated bool
	IDToken       string
	RefreshToken  string
	Claims        Claims
	Loading       bool
	Err           error
}
