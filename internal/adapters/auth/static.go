package auth

import (
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"
)

// StaticAuthenticator is a placeholder credential gate: one configured
// username/password pair, opaque bearer tokens held in memory. It is a
// gate only; a production deployment replaces this wholesale.
type StaticAuthenticator struct {
	username string
	password string

	mu     sync.Mutex
	tokens map[string]struct{}
}

func NewStaticAuthenticator(username, password string) *StaticAuthenticator {
	return &StaticAuthenticator{
		username: username,
		password: password,
		tokens:   map[string]struct{}{},
	}
}

func (a *StaticAuthenticator) Login(username, password string) (string, bool) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", false
	}

	token := uuid.NewString()

	a.mu.Lock()
	a.tokens[token] = struct{}{}
	a.mu.Unlock()

	return token, true
}

func (a *StaticAuthenticator) Authorized(token string) bool {
	if token == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.tokens[token]
	return ok
}
