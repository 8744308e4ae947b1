package provider

import "strings"

// Kind classifies a failed LLM call.
type Kind int

const (
	// KindFatal means the error is permanent and must not be retried.
	KindFatal Kind = iota
	// KindRetryable means the error is transient (rate limit, 5xx, network).
	KindRetryable
)

// transientMarkers are substrings that mark an error as transient. The remote
// endpoint reports rate limits and gateway failures with inconsistent wording,
// so matching is intentionally loose.
var transientMarkers = []string{
	"502",
	"bad gateway",
	"upstream error",
	"connection error",
	"timeout",
	"network",
	"service unavailable",
	"unauthorized",
	"rate",
	"limit",
	"503",
	"429",
}

// Classify decides whether a failed call may be retried.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return KindRetryable
		}
	}
	return KindFatal
}
