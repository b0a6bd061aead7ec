package logging

import "strings"

// IsRateLimit reports whether an AI provider error looks like throttling.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota")
}
