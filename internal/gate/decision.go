// Package gate decides where the mobile app shell should navigate based on
// authentication state and the current route. The decision function is pure;
// the stateful Gate around it handles redirect de-duplication.
package gate

import "strings"

// Decision is the outcome of evaluating auth state against the current route.
type Decision string

const (
	// DecisionHold means auth state is still resolving; render a loading
	// indicator and issue no redirect.
	DecisionHold Decision = "hold"
	// DecisionStayOnAuthRoute means an unauthenticated user is already on an
	// auth route; nothing to do.
	DecisionStayOnAuthRoute Decision = "stay_auth"
	// DecisionRedirectToLogin sends an unauthenticated user to the login
	// screen.
	DecisionRedirectToLogin Decision = "redirect_login"
	// DecisionRedirectToHome sends an authenticated user out of the auth
	// flow to the authenticated home.
	DecisionRedirectToHome Decision = "redirect_home"
	// DecisionStayOnAppRoute means an authenticated user is on an app route;
	// nothing to do.
	DecisionStayOnAppRoute Decision = "stay_app"
)

// Navigation targets. Routes are slash-joined segment lists, matching the
// mobile client's router paths.
const (
	LoginRoute = "auth/login"
	HomeRoute  = "client/home"
)

// authRoutePrefixes is the fixed set of routes reachable without a session:
// login, password recovery, and every registration wizard step.
var authRoutePrefixes = []string{
	"auth/login",
	"auth/register",
	"auth/forgot-password",
	"auth/change-password",
}

// AuthState is the observed identity state: whether a user is present and
// whether the first resolution is still in flight.
type AuthState struct {
	UserPresent bool
	Loading     bool
}

// IsAuthRoute reports whether the route is within the auth-route set.
// Matching is prefix-or-equals on whole segments: "auth/register/goals" is an
// auth route, "auth/registerx" is not.
func IsAuthRoute(route string) bool {
	route = Normalize(route)
	for _, prefix := range authRoutePrefixes {
		if route == prefix || strings.HasPrefix(route, prefix+"/") {
			return true
		}
	}
	return false
}

// Normalize trims surrounding slashes so "/auth/login" and "auth/login"
// compare equal.
func Normalize(route string) string {
	return strings.Trim(route, "/")
}

// Decide evaluates the decision table:
//
//	user absent,  auth route → stay
//	user absent,  app route  → redirect to login
//	user present, auth route → redirect to home
//	user present, app route  → stay
//
// While loading, the only decision is to hold.
func Decide(st AuthState, route string) Decision {
	if st.Loading {
		return DecisionHold
	}

	onAuthRoute := IsAuthRoute(route)
	switch {
	case !st.UserPresent && onAuthRoute:
		return DecisionStayOnAuthRoute
	case !st.UserPresent:
		return DecisionRedirectToLogin
	case onAuthRoute:
		return DecisionRedirectToHome
	default:
		return DecisionStayOnAppRoute
	}
}

// Target returns the navigation target for redirect decisions, or "" for
// stay/hold decisions.
func (d Decision) Target() string {
	switch d {
	case DecisionRedirectToLogin:
		return LoginRoute
	case DecisionRedirectToHome:
		return HomeRoute
	default:
		return ""
	}
}

// IsRedirect reports whether the decision carries a navigation command.
func (d Decision) IsRedirect() bool {
	return d == DecisionRedirectToLogin || d == DecisionRedirectToHome
}
