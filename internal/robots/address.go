package robots

import (
	"net/url"
	"strings"

	"github.com/rohmanhakim/robotx/pkg/urlutil"
)

// RobotsTxtPath is the well-known location of the exclusion declaration.
const RobotsTxtPath = "/robots.txt"

var supportedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// IsSupportedScheme reports whether scheme is one the protocol applies to.
// Comparison is case-insensitive.
func IsSupportedScheme(scheme string) bool {
	_, ok := supportedSchemes[strings.ToLower(scheme)]
	return ok
}

// DeclarationAddress returns the robots.txt URL governing target.
// URLs differing only in path, query, fragment, user info, letter case of
// scheme/host, or an explicit default port map to the same address.
// ok is false for unsupported schemes and host-less URLs.
func DeclarationAddress(target url.URL) (address url.URL, ok bool) {
	if !IsSupportedScheme(target.Scheme) || target.Hostname() == "" {
		return url.URL{}, false
	}
	address = urlutil.Origin(target)
	address.Path = RobotsTxtPath
	return address, true
}

// CacheKey maps a declaration address to a store key of the form
// "<scheme>/<host>[/<port>]/robots.txt". Colons in IPv6 literals are
// replaced so the key is a valid file path on every platform.
func CacheKey(address url.URL) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(address.Scheme))
	sb.WriteString("/")
	sb.WriteString(strings.ReplaceAll(address.Hostname(), ":", "_"))
	if port := address.Port(); port != "" && !urlutil.IsDefaultPort(address.Scheme, port) {
		sb.WriteString("/")
		sb.WriteString(port)
	}
	sb.WriteString(RobotsTxtPath)
	return sb.String()
}

// requestPath is the part of target that path rules are matched against:
// the escaped path without query or fragment, "/" when empty.
func requestPath(target url.URL) string {
	path := target.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// isDeclarationResource reports whether target points at robots.txt itself.
func isDeclarationResource(target url.URL) bool {
	return requestPath(target) == RobotsTxtPath
}
