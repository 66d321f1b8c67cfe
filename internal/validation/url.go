// Package validation checks the externally-supplied strings the app passes
// around: service base URLs from config and catalog references from the
// content service.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ServiceURLValidator validates configured service base URLs.
type ServiceURLValidator struct {
	// AllowLocalhost permits localhost targets. The content service runs on
	// localhost in development, so this defaults to on.
	AllowLocalhost bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewServiceURLValidator creates a validator with defaults suitable for
// configured endpoints.
func NewServiceURLValidator() *ServiceURLValidator {
	return &ServiceURLValidator{
		AllowLocalhost: true,
		MaxLength:      2048,
	}
}

// ValidateAndNormalize validates a base URL and returns the normalized form
// with any trailing slash removed.
func (v *ServiceURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}

	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	// Default to HTTPS when no protocol is given.
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if !v.AllowLocalhost && isLocalhost(hostnameOf(parsedURL.Host)) {
		return "", fmt.Errorf("localhost URLs are not permitted")
	}

	return strings.TrimRight(parsedURL.String(), "/"), nil
}

func hostnameOf(host string) string {
	if strings.Contains(host, ":") {
		if hostname, _, err := net.SplitHostPort(host); err == nil {
			return hostname
		}
	}
	return host
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}
