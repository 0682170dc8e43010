// Package policy decides, per request, whether it proceeds, is
// redirected, or is rejected, based on the session cookie and the role
// hierarchy. The decision is a pure computation over path + token; it
// is evaluated before any handler runs and never cached across
// requests.
package policy

import (
	"strings"

	"github.com/duynhne/gatehouse/internal/core/domain"
	"github.com/duynhne/gatehouse/internal/token"
)

// Kind enumerates the possible gate outcomes. Every branch of Decide
// terminates in exactly one of these; the gate never errors across the
// request boundary.
type Kind int

const (
	// Allow lets the request through, with the verified payload
	// attached when one exists.
	Allow Kind = iota
	// RedirectLogin sends an unauthenticated page request to the login
	// page.
	RedirectLogin
	// RedirectDashboard sends an authenticated but under-privileged
	// page request to the dashboard.
	RedirectDashboard
	// Reject401 is the API-route analogue of RedirectLogin.
	Reject401
	// Reject403 is the API-route analogue of RedirectDashboard.
	Reject403
)

// Decision is the gate's verdict for a single request.
type Decision struct {
	Kind Kind
	// Payload is non-nil only for Allow on an authenticated request.
	Payload *token.Payload
}

// Engine evaluates the access policy. The public path list is a hard
// allow-list matched exactly; admin and API routes match by prefix.
type Engine struct {
	codec         *token.Codec
	publicPaths   map[string]struct{}
	apiPrefix     string
	adminPrefixes []string
}

// Routes configures the path sets the engine gates on.
type Routes struct {
	// Public paths need no authentication, matched exactly.
	Public []string
	// APIPrefix marks routes that get JSON rejections instead of
	// redirects.
	APIPrefix string
	// AdminPrefixes mark routes requiring the ADMIN role.
	AdminPrefixes []string
}

// DefaultRoutes is the route configuration for this service.
func DefaultRoutes() Routes {
	return Routes{
		// Logout is public so it can deliver its always-200 contract
		// even for missing or invalid tokens.
		Public:        []string{"/", "/login", "/api/auth/login", "/api/auth/register", "/api/auth/logout"},
		APIPrefix:     "/api/",
		AdminPrefixes: []string{"/admin", "/api/admin"},
	}
}

// NewEngine creates an Engine gating the given routes with the given
// codec.
func NewEngine(codec *token.Codec, routes Routes) *Engine {
	public := make(map[string]struct{}, len(routes.Public))
	for _, p := range routes.Public {
		public[p] = struct{}{}
	}
	return &Engine{
		codec:         codec,
		publicPaths:   public,
		apiPrefix:     routes.APIPrefix,
		adminPrefixes: routes.AdminPrefixes,
	}
}

// Decide evaluates the gate for one request. cookieToken is the raw
// session cookie value, empty when absent.
func (e *Engine) Decide(path, cookieToken string) Decision {
	if _, ok := e.publicPaths[path]; ok {
		return Decision{Kind: Allow}
	}

	isAPI := strings.HasPrefix(path, e.apiPrefix)

	if cookieToken == "" {
		if isAPI {
			return Decision{Kind: Reject401}
		}
		return Decision{Kind: RedirectLogin}
	}

	payload, err := e.codec.Verify(cookieToken)
	if err != nil {
		if isAPI {
			return Decision{Kind: Reject401}
		}
		return Decision{Kind: RedirectLogin}
	}

	if e.isAdminPath(path) && payload.Role != domain.RoleAdmin {
		if isAPI {
			return Decision{Kind: Reject403}
		}
		return Decision{Kind: RedirectDashboard}
	}

	return Decision{Kind: Allow, Payload: payload}
}

func (e *Engine) isAdminPath(path string) bool {
	for _, prefix := range e.adminPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// String names the decision kind for logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	case Reject401:
		return "reject_401"
	case Reject403:
		return "reject_403"
	default:
		return "unknown"
	}
}
