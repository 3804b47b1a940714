package urlutil

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Internationalized hostnames are converted to their ASCII (punycode) form
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//   - Fragments are removed
//   - Query parameters are removed
//
// The path is left as-is: robots rules are case-sensitive and trailing-slash-sensitive.
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = canonicalHost(canonical.Scheme, canonical.Hostname(), canonical.Port())

	canonical.Fragment = ""
	canonical.RawFragment = ""

	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// Origin returns the scheme and authority of sourceUrl in canonical form,
// with no path, query, fragment or user info.
func Origin(sourceUrl url.URL) url.URL {
	canonical := Canonicalize(sourceUrl)
	return url.URL{
		Scheme: canonical.Scheme,
		Host:   canonical.Host,
	}
}

// IsDefaultPort reports whether port is the well-known port for scheme.
func IsDefaultPort(scheme, port string) bool {
	switch lowerASCII(scheme) {
	case "http":
		return port == "80"
	case "https":
		return port == "443"
	}
	return false
}

func canonicalHost(scheme, hostname, port string) string {
	host := lowerASCII(hostname)

	isIPv6 := strings.Contains(host, ":")
	if !isIPv6 && host != "" {
		if ascii, err := idna.Lookup.ToASCII(hostname); err == nil && ascii != "" {
			host = ascii
		}
	}

	if IsDefaultPort(scheme, port) {
		port = ""
	}

	switch {
	case port != "":
		return net.JoinHostPort(host, port)
	case isIPv6:
		return "[" + host + "]"
	default:
		return host
	}
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
