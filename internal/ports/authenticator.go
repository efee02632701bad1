package ports

// Authentication boundary. The core treats this purely as a gate; once
// a token is issued no further interaction with credentials occurs.
type Authenticator interface {
	// Login returns an opaque bearer token on success, ok=false on a
	// credential mismatch.
	Login(username, password string) (token string, ok bool)

	// Authorized reports whether the token was issued by Login.
	Authorized(token string) bool
}
