package handler

import (
	"strings"

	dErrors "peakform/pkg/domain-errors"
)

// RouteRequest is the HTTP request body for POST /gate/route.
type RouteRequest struct {
	// Route is the slash-joined segment list of the shell's current
	// location, e.g. "auth/login" or "client/home".
	Route string `json:"route"`
	// InstallID identifies the app installation for clients without a
	// session, so de-duplication state survives across requests.
	InstallID string `json:"install_id"`
}

// Validate normalizes and validates the request.
func (r *RouteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Route = strings.TrimSpace(r.Route)
	if len(r.Route) > 512 {
		return dErrors.New(dErrors.CodeValidation, "route must be at most 512 characters")
	}

	r.InstallID = strings.TrimSpace(r.InstallID)
	if r.InstallID == "" {
		return dErrors.New(dErrors.CodeValidation, "install_id is required")
	}
	if len(r.InstallID) > 64 {
		return dErrors.New(dErrors.CodeValidation, "install_id must be at most 64 characters")
	}

	return nil
}

// RouteResponse is the HTTP response for POST /gate/route.
type RouteResponse struct {
	Decision string `json:"decision"`
	Redirect bool   `json:"redirect"`
	Target   string `json:"target,omitempty"`
	Blocking bool   `json:"blocking"`
}
