// Package device derives human-readable device descriptions from User-Agent
// strings. The descriptions annotate security audit events so operators can
// tell "Chrome on Mac OS X" apart from "curl on Linux" when reviewing login
// activity.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent formats a User-Agent string as "Browser on OS".
// Unknown or empty agents degrade gracefully rather than erroring.
func ParseUserAgent(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	osName := ua.OSInfo().Name
	if osName == "" {
		osName = ua.Platform()
	}
	if osName == "" {
		osName = "Unknown OS"
	}

	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, osName))
}
