package robots

import "strings"

// matchPattern reports whether path matches a path rule pattern.
// '*' matches any run of bytes and a trailing '$' anchors the end of the
// path. Every other byte is literal. Without '$' the pattern only has to
// match a prefix of path.
func matchPattern(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = pattern[:len(pattern)-1]
	}

	if !strings.Contains(pattern, "*") {
		if anchored {
			return path == pattern
		}
		return strings.HasPrefix(path, pattern)
	}

	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(path) {
		switch {
		case pi < len(pattern) && pattern[pi] == '*':
			star, mark = pi, si
			pi++
		case pi < len(pattern) && pattern[pi] == path[si]:
			pi++
			si++
		case pi == len(pattern) && !anchored:
			return true
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

const upperHex = "0123456789ABCDEF"

// escapePath percent-encodes the bytes of a path or pattern that a URL
// path carries escaped: non-ASCII, controls, space and `"<>\^`{|}`.
// Existing %XX sequences are kept with their hex uppercased, and a '%'
// that starts no valid sequence becomes %25. '*' and '$' pass through.
// Applying it twice yields the same string.
func escapePath(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				sb.WriteByte('%')
				sb.WriteByte(upperHexDigit(s[i+1]))
				sb.WriteByte(upperHexDigit(s[i+2]))
				i += 2
				continue
			}
			sb.WriteString("%25")
		case escapedInPath(c):
			sb.WriteByte('%')
			sb.WriteByte(upperHex[c>>4])
			sb.WriteByte(upperHex[c&0x0f])
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func escapedInPath(c byte) bool {
	if c <= ' ' || c >= 0x7f {
		return true
	}
	return strings.IndexByte("\"<>\\^`{|}", c) >= 0
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func upperHexDigit(c byte) byte {
	if 'a' <= c && c <= 'f' {
		return c - 'a' + 'A'
	}
	return c
}
