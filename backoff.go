package stackmate

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// NextDelay computes the wait before the next retry. The previous delay is
// grown by factor and capped at max, then randomized uniformly in
// [base/2, base] so concurrent callers don't retry in lockstep. The result
// never drops below MinBackoff.
func NextDelay(prev time.Duration, factor float64, max time.Duration) time.Duration {
	base := time.Duration(float64(prev) * factor)
	if base > max {
		base = max
	}
	half := base / 2
	jittered := half + time.Duration(rand.Int63n(int64(half)+1))
	if jittered < MinBackoff {
		return MinBackoff
	}
	return jittered
}

// ParseRetryAfter interprets a Retry-After response header. It accepts the
// integer-seconds form and the HTTP-date form. A date in the past yields 0
// (no wait). The second return is false when the header is absent or
// unparseable, in which case the caller falls back to computed backoff.
func ParseRetryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if target, err := http.ParseTime(header); err == nil {
		delta := time.Until(target)
		if delta < 0 {
			return 0, true
		}
		return delta, true
	}
	return 0, false
}
