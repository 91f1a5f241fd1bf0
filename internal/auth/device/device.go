// Package device derives a human-readable device name from the request
// user-agent, shown in the app's session list.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent formats a user-agent string as "<browser> on <platform>".
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)

	name, _ := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}

	platform := ua.OSInfo().FullName
	if ua.Mobile() && ua.Platform() != "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}

	return name + " on " + platform
}
