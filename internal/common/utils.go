package common

import "strings"

// ContainsAnyFold reports whether s contains any of subs, ignoring case.
// Empty subs never match.
func ContainsAnyFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
