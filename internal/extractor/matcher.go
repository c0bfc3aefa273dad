package extractor

import "unicode/utf8"

// Matcher holds the keyword set an anchor must hit.
type Matcher struct {
	keywords []string
}

// NewMatcher drops empty keywords, which would otherwise match everything.
func NewMatcher(keywords []string) *Matcher {
	kept := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k != "" {
			kept = append(kept, k)
		}
	}
	return &Matcher{keywords: kept}
}

// Keywords returns the effective keyword list.
func (m *Matcher) Keywords() []string {
	out := make([]string, len(m.keywords))
	copy(out, m.keywords)
	return out
}

// Matches reports whether any keyword occurs in text or href.
func (m *Matcher) Matches(text, href string) bool {
	for _, k := range m.keywords {
		if ContainsFold(text, k) || ContainsFold(href, k) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether substr is within s, ignoring case for ASCII
// letters only. Non-ASCII bytes must match exactly, which for valid UTF-8
// means code point equality.
func ContainsFold(s, substr string) bool {
	n := len(substr)
	if n == 0 {
		return true
	}
	for i := 0; i+n <= len(s); i++ {
		if equalFoldASCII(s[i:i+n], substr) {
			// A match must not start in the middle of a multi-byte rune.
			if i == 0 || utf8.RuneStart(s[i]) {
				return true
			}
		}
	}
	return false
}

func equalFoldASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
