package core

// Session is the credential state supplied by the external identity provider.
type Session struct {
	Authenticated bool
	// Identity is the principal the credential belongs to.
	Identity string
	// Credential is opaque to noot and forwarded to the actor as a bearer token.
	Credential string
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// NewSession returns an authenticated session for identity.
func NewSession(identity, credential string) Session {
	return Session{Authenticated: true, Identity: identity, Credential: credential}
}

// Same reports whether s and other denote the same principal and authentication status.
func (s Session) Same(other Session) bool {
	return s.Authenticated == other.Authenticated && s.Identity == other.Identity
}
