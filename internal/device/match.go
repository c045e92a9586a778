package device

import "strings"

// TokenSet is a list of substrings matched case-insensitively against a value
type TokenSet []string

// Match reports whether s contains any token, ignoring case
func (t TokenSet) Match(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, token := range t {
		if strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// MobileAgents identifies phone and tablet user agents
var MobileAgents = TokenSet{
	"Android",
	"webOS",
	"iPhone",
	"iPad",
	"iPod",
	"BlackBerry",
	"IEMobile",
	"Opera Mini",
}

// HighEndMobileGPUs identifies mobile renderers that handle the landing scene.
// Entries are prefixes of family names, so "Adreno 6" covers the whole 6xx line.
var HighEndMobileGPUs = TokenSet{
	"Apple GPU",
	"Adreno 6",
	"Mali-G7",
	"PowerVR",
}

// IsMobile reports whether the user agent belongs to a phone or tablet
func IsMobile(userAgent string) bool {
	return MobileAgents.Match(userAgent)
}

// IsHighEndMobileGPU reports whether the renderer belongs to a capable mobile GPU family
func IsHighEndMobileGPU(renderer string) bool {
	return HighEndMobileGPUs.Match(renderer)
}
