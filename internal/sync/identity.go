package sync

import "strings"

// IdentitySet holds every normalized form of the user's own phone number.
// The gateway and stored profiles disagree on international-prefix
// formatting, so matching works on locale variants and digit suffixes.
type IdentitySet struct {
	raw      string
	variants map[string]struct{}
	suffixes map[string]struct{}
}

// BuildIdentity derives the variant set from a raw phone string.
// countryCode is the international prefix that swaps with a leading zero
// in local formatting (e.g. "972").
func BuildIdentity(rawPhone string, countryCode string) IdentitySet {
	set := IdentitySet{
		raw:      rawPhone,
		variants: make(map[string]struct{}),
		suffixes: make(map[string]struct{}),
	}

	cleaned := digitsOnly(rawPhone)
	if cleaned == "" {
		return set
	}

	set.addVariant(cleaned)
	if countryCode != "" && strings.HasPrefix(cleaned, countryCode) {
		set.addVariant("0" + cleaned[len(countryCode):])
	}
	if strings.HasPrefix(cleaned, "0") && countryCode != "" {
		set.addVariant(countryCode + cleaned[1:])
	}
	return set
}

func (s *IdentitySet) addVariant(v string) {
	if v == "" {
		return
	}
	s.variants[v] = struct{}{}
	if len(v) >= 9 {
		s.suffixes[v[len(v)-9:]] = struct{}{}
	}
	if len(v) >= 10 {
		s.suffixes[v[len(v)-10:]] = struct{}{}
	}
}

// Matches reports whether a participant identifier belongs to this user.
// Exact variant match first, then last-9/last-10 digit suffix comparison.
func (s IdentitySet) Matches(candidate string) bool {
	cleaned := digitsOnly(candidate)
	if cleaned == "" {
		return false
	}

	if _, ok := s.variants[cleaned]; ok {
		return true
	}

	if len(cleaned) >= 9 {
		if _, ok := s.suffixes[cleaned[len(cleaned)-9:]]; ok {
			return true
		}
	}
	if len(cleaned) >= 10 {
		if _, ok := s.suffixes[cleaned[len(cleaned)-10:]]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether no usable phone digits were provided
func (s IdentitySet) Empty() bool {
	return len(s.variants) == 0
}

// digitsOnly strips spaces, "+", "@domain" suffixes and anything else non-numeric
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '@' {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
