package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"
)

// SessionExpiry bounds how long an issued facilitator token stays valid.
const SessionExpiry = 12 * time.Hour

// Cluster-themed words for password generation.
var quizWords = []string{
	"pod", "node", "route", "build", "image",
	"deploy", "operator", "cluster", "registry", "ingress",
	"secret", "quota", "label", "taint", "scale",
}

// Auth gates facilitator operations behind a shared password. A successful
// login issues a random bearer token; the raw password is also accepted
// directly so the facilitator can drive the quiz with plain curl.
type Auth struct {
	password string
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]time.Time
}

func New(password string) *Auth {
	return NewWithClock(password, time.Now)
}

// NewWithClock allows deterministic expiry checks in tests.
func NewWithClock(password string, now func() time.Time) *Auth {
	return &Auth{
		password: password,
		now:      now,
		sessions: make(map[string]time.Time),
	}
}

// GeneratePassword creates a random three-word password, logged at startup
// when no password is configured.
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = quizWords[randomInt(len(quizWords))]
	}
	return strings.Join(words, "-")
}

// Login validates the password and returns a session token if valid.
func (a *Auth) Login(password string) (string, bool) {
	if password == "" || password != a.password {
		return "", false
	}
	token := generateToken()
	a.mu.Lock()
	a.sessions[token] = a.now().Add(SessionExpiry)
	a.mu.Unlock()
	return token, true
}

// Logout invalidates a session token.
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// Validate reports whether the credential is an unexpired issued token or
// the configured password itself.
func (a *Auth) Validate(credential string) bool {
	if credential == "" {
		return false
	}
	if credential == a.password {
		return true
	}

	a.mu.RLock()
	expiry, exists := a.sessions[credential]
	a.mu.RUnlock()
	if !exists {
		return false
	}
	if a.now().After(expiry) {
		a.mu.Lock()
		delete(a.sessions, credential)
		a.mu.Unlock()
		return false
	}
	return true
}

// CredentialFromRequest extracts the admin credential from a request,
// preferring the Authorization bearer header over X-Admin-Token.
func CredentialFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	return r.Header.Get("X-Admin-Token")
}

// Middleware rejects requests without a valid facilitator credential.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Validate(CredentialFromRequest(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"unauthorized","error":"unauthorized"}`))
	})
}

func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
