// Package util holds helpers shared by the listeners of the proxy.
package util

import (
	"crypto/subtle"

	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
)

// Authentication decides whether a player forwarded by a spectrum proxy may join, using the token the proxy
// sent along with the login of the player.
type Authentication interface {
	Authenticate(identityData login.IdentityData, token string) bool
}

// SecretAuthentication accepts players forwarded with a token equal to a secret shared with the proxy.
type SecretAuthentication struct {
	secret string
}

// NewSecretAuthentication returns a SecretAuthentication with the secret passed. An empty secret accepts
// every player.
func NewSecretAuthentication(secret string) SecretAuthentication {
	return SecretAuthentication{secret: secret}
}

// Authenticate ...
func (s SecretAuthentication) Authenticate(_ login.IdentityData, token string) bool {
	if s.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) == 1
}

// AuthenticationFunc is a function implementing Authentication.
type AuthenticationFunc func(identityData login.IdentityData, token string) bool

// Authenticate ...
func (f AuthenticationFunc) Authenticate(identityData login.IdentityData, token string) bool {
	return f(identityData, token)
}
