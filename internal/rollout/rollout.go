// Package rollout derives the "traffic" context value from a stable hash of
// the user, so traffic rules admit the same users on every evaluation.
package rollout

import (
	"github.com/cespare/xxhash/v2"

	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/rules"
)

// Buckets is the number of traffic buckets; assigned values are 0..Buckets-1.
const Buckets = 100

// Bucket places userID in [0, Buckets) for toggleKey. Different toggles (or
// salts) shuffle users independently. ok is false for an empty userID.
func Bucket(userID, toggleKey, salt string) (bucket int, ok bool) {
	if userID == "" {
		return 0, false
	}
	d := xxhash.New()
	for _, part := range []string{userID, ":", toggleKey, ":", salt} {
		d.WriteString(part)
	}
	return int(d.Sum64() % Buckets), true
}

// AssignTraffic fills ctx["traffic"] with the user's bucket for toggleKey, so a
// "traffic between 0,10" rule admits a stable ~10% of users.
//
// It does nothing when ctx already carries a traffic value or has no user_id,
// and reports whether it assigned one.
func AssignTraffic(ctx engine.Context, toggleKey, salt string) bool {
	if ctx == nil {
		return false
	}
	if _, ok := ctx[string(rules.AttrTraffic)]; ok {
		return false
	}
	raw, ok := ctx[string(rules.AttrUserID)]
	if !ok || raw == nil {
		return false
	}
	userID, ok := engine.FormatValue(raw)
	if !ok {
		return false
	}
	bucket, ok := Bucket(userID, toggleKey, salt)
	if !ok {
		return false
	}
	ctx[string(rules.AttrTraffic)] = bucket
	return true
}
