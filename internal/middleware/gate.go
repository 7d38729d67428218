package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"mememates-backend/internal/services"
)

// Gate paths
const (
	LoginPath      = "/login"
	OnboardingPath = "/onboarding"
	DiscoverPath   = "/discover"
)

// publicPathPrefixes require no authentication. The root path is matched
// exactly, everything else by prefix.
var publicPathPrefixes = []string{"/login", "/signup", "/api/auth"}

// protectedNewUserPrefixes are redirected to onboarding until the user has
// completed it.
var protectedNewUserPrefixes = []string{"/discover", "/matches", "/profile"}

// GateAction is the outcome of evaluating the gate.
type GateAction int

const (
	GateAllow GateAction = iota
	GateRedirect
)

// GateDecision is the result of one gate evaluation. Location is only set
// for redirects.
type GateDecision struct {
	Action   GateAction
	Location string
}

// EvaluateGate is the page-route redirect policy: a pure function of the
// requested path, token presence and the new-user flag. It has no side
// effects and yields the same decision for the same inputs every time.
func EvaluateGate(path string, authenticated, isNewUser bool) GateDecision {
	if path == "/" || hasAnyPrefix(path, publicPathPrefixes) {
		return GateDecision{Action: GateAllow}
	}

	if !authenticated {
		return GateDecision{
			Action:   GateRedirect,
			Location: LoginPath + "?callbackUrl=" + url.QueryEscape(path),
		}
	}

	if isNewUser && hasAnyPrefix(path, protectedNewUserPrefixes) {
		return GateDecision{Action: GateRedirect, Location: OnboardingPath}
	}

	if !isNewUser && strings.HasPrefix(path, OnboardingPath) {
		return GateDecision{Action: GateRedirect, Location: DiscoverPath}
	}

	return GateDecision{Action: GateAllow}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// PageGate applies the gate to page routes. Identity is resolved from the
// session cookie; a malformed or unknown session is treated exactly like an
// absent one and never fails the request.
func PageGate(sessions services.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := false
			isNewUser := false

			if cookie, err := r.Cookie(SessionCookie); err == nil {
				if session, err := sessions.Get(r.Context(), cookie.Value); err == nil {
					authenticated = true
					isNewUser = session.IsNewUser
				}
			}

			decision := EvaluateGate(r.URL.Path, authenticated, isNewUser)
			if decision.Action == GateRedirect {
				http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
