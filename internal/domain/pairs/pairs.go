// Package pairs tracks which unordered item pairs have been compared, per
// rater and in aggregate, and derives coverage ratios against the n*(n-1)/2
// possible pairs.
package pairs

import (
	"fmt"
	"strings"
)

// keySeparator joins the two titles of a pair key. Titles are sorted first so
// (a,b) and (b,a) map to the same key.
const keySeparator = "|"

// Key returns the order-independent identifier for the pair (a, b).
// Comparing an item with itself is a caller error.
func Key(a, b string) (string, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return "", fmt.Errorf("%w: %q vs %q", ErrEmptyTitle, a, b)
	}
	if a == b {
		return "", fmt.Errorf("%w: %q", ErrSamePair, a)
	}
	if a > b {
		a, b = b, a
	}
	return a + keySeparator + b, nil
}

// Counts maps rater id -> pair key -> number of times that rater compared the
// pair. Entries for titles no longer in the item list are retained but
// excluded from coverage math; they are never pruned here.
type Counts map[string]map[string]int

// Record increments the counter for the pair (a, b) under rater, creating the
// rater's bucket if absent.
func (c Counts) Record(rater, a, b string) error {
	key, err := Key(a, b)
	if err != nil {
		return err
	}
	if rater == "" {
		return ErrEmptyRater
	}
	bucket, ok := c[rater]
	if !ok {
		bucket = make(map[string]int)
		c[rater] = bucket
	}
	bucket[key]++
	return nil
}

// EnsureRater creates an empty bucket for rater if none exists.
func (c Counts) EnsureRater(rater string) {
	if rater == "" {
		return
	}
	if _, ok := c[rater]; !ok {
		c[rater] = make(map[string]int)
	}
}

// Coverage is the covered/total pair accounting for one scope.
type Coverage struct {
	Covered int     `json:"covered"`
	Total   int     `json:"total"`
	Ratio   float64 `json:"ratio"`
}

// Report carries global coverage plus the per-rater breakdown.
type Report struct {
	Global  Coverage            `json:"global"`
	ByRater map[string]Coverage `json:"byRater"`
}

// Compute recomputes coverage from scratch over the current title list.
// A pair key counts only if both of its titles are still present; with fewer
// than two titles the ratio is 0, not NaN. The full recompute is cheap at
// session scale and avoids incremental-cache drift.
func Compute(counts Counts, titles []string) Report {
	live := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if t != "" {
			live[t] = struct{}{}
		}
	}
	n := len(live)
	total := n * (n - 1) / 2

	report := Report{ByRater: make(map[string]Coverage, len(counts))}
	globalSeen := make(map[string]struct{})
	for rater, bucket := range counts {
		raterSeen := 0
		for key, count := range bucket {
			if count <= 0 || !keyAlive(key, live) {
				continue
			}
			raterSeen++
			globalSeen[key] = struct{}{}
		}
		report.ByRater[rater] = Coverage{
			Covered: raterSeen,
			Total:   total,
			Ratio:   ratio(raterSeen, total),
		}
	}
	report.Global = Coverage{
		Covered: len(globalSeen),
		Total:   total,
		Ratio:   ratio(len(globalSeen), total),
	}
	return report
}

// keyAlive reports whether both titles of key are in the live set.
func keyAlive(key string, live map[string]struct{}) bool {
	a, b, ok := strings.Cut(key, keySeparator)
	if !ok {
		return false
	}
	if _, in := live[a]; !in {
		return false
	}
	_, in := live[b]
	return in
}

func ratio(covered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(covered) / float64(total)
}
