// Package ssrf provides the default URL safety validator used to gate
// browser sub-requests.
package ssrf

import (
	"net"
	"net/url"
	"strings"
)

// Validator rejects URLs that could reach internal infrastructure. Checks
// are purely syntactic: no DNS resolution happens here because the check
// runs once per intercepted sub-request.
type Validator struct {
	blockedHosts map[string]struct{}
}

// New returns a Validator with the standard blocked-host set.
func New() *Validator {
	return &Validator{
		blockedHosts: map[string]struct{}{
			"localhost":                {},
			"metadata.google.internal": {},
			"169.254.169.254":          {},
		},
	}
}

// IsSafe reports whether rawURL may be requested.
func (v *Validator) IsSafe(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if _, blocked := v.blockedHosts[host]; blocked {
		return false
	}
	if strings.HasSuffix(host, ".internal") || strings.HasSuffix(host, ".local") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !isPrivateIP(ip)
	}
	return true
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
