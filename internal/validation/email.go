package validation

import "regexp"

var emailRegexp = regexp.MustCompile(`^[\w.+-]+@[\w-]+\.[A-Za-z]{2,}$`)

// ValidEmail reports whether s looks like local-part@domain.tld with a
// suffix of at least two letters
func ValidEmail(s string) bool {
	return emailRegexp.MatchString(s)
}
