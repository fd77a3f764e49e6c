package access

import "strings"

const (
	// CodeWildcard grants every access code.
	CodeWildcard = "*"
	// CodeDelimiter separates the levels of hierarchical codes.
	CodeDelimiter = "."
)

// CodeMatches reports whether the granted pattern covers code. "*" covers
// everything and "system.*" covers "system.user.edit".
func CodeMatches(code, granted string) bool {
	if code == granted || granted == CodeWildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(granted, CodeWildcard); ok {
		prefix = strings.TrimSuffix(prefix, CodeDelimiter)
		return strings.HasPrefix(code, prefix+CodeDelimiter)
	}
	return false
}

// HasAnyCode reports whether granted covers at least one of required. An
// empty requirement is always met.
func HasAnyCode(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, req := range required {
		for _, g := range granted {
			if CodeMatches(req, g) {
				return true
			}
		}
	}
	return false
}
