package stackmate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRetriesExhausted  = fmt.Errorf("retries exhausted")
	ErrNoTxID            = fmt.Errorf("No txId returned")
	ErrUserCancelled     = fmt.Errorf("transaction cancelled by user")
	ErrMissingContract   = fmt.Errorf("missing contract identity")
	ErrMissingFunction   = fmt.Errorf("missing contract function name")
	ErrMissingSender     = fmt.Errorf("missing sender address")
	ErrUnsupportedResult = fmt.Errorf("run result carries no transaction id")
)

// userCancelMarkers are substrings wallet providers put in rejection errors.
// Matching is best effort; an unmatched rejection still fails the record, it
// just loses the distinct user-cancelled classification.
var userCancelMarkers = []string{
	"user rejected",
	"user denied",
	"user canceled",
	"user cancelled",
	"cancelled by user",
	"request rejected",
}

// IsUserCancelled reports whether err represents the user dismissing the
// wallet prompt rather than a technical failure.
func IsUserCancelled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserCancelled) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range userCancelMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
