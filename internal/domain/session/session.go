// Package session defines the ranking session aggregate and its
// normalization. A session as loaded from disk may be legacy-shaped or
// partially filled; Normalize is the single idempotent entry point that makes
// it well-formed before any computation touches it.
package session

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/halden/reelrank/internal/artifact"
	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/pairs"
	"github.com/halden/reelrank/internal/domain/rating"
)

// Session is the authoritative ranking state: the item pool, per-item skill
// ratings, pair-comparison accounting, and session-wide counters. It is the
// sole unit of persistence and of snapshotting. Extra preserves artifact
// fields this build does not know about (the legacy rFactor among them).
type Session struct {
	Movies          []item.Item              `json:"movies"`
	Ratings         map[string]rating.Rating `json:"ratings"`
	PairCounts      pairs.Counts             `json:"pairCounts"`
	ComparisonCount map[string]int           `json:"comparisonCount"`
	TotalVotes      int                      `json:"totalVotes"`
	PersonCount     int                      `json:"personCount"`
	RatingConfig    rating.Config            `json:"ratingConfig"`
	RankerConfirmed bool                     `json:"rankerConfirmed"`

	// Coverage is derived state, regenerated by Normalize on every load.
	Coverage pairs.Report `json:"coverage"`

	Extra map[string]json.RawMessage `json:"-"`
}

var sessionFields = artifact.KnownFields(
	"movies", "ratings", "pairCounts", "comparisonCount", "totalVotes",
	"personCount", "ratingConfig", "rankerConfirmed", "coverage",
)

type sessionAlias Session

// UnmarshalJSON decodes the state artifact, keeping unknown fields for the
// next save.
func (s *Session) UnmarshalJSON(data []byte) error {
	var a sessionAlias
	extra, err := artifact.UnmarshalKeep(data, &a, sessionFields)
	if err != nil {
		return err
	}
	*s = Session(a)
	s.Extra = extra
	return nil
}

// MarshalJSON encodes the state artifact, restoring preserved unknown fields.
func (s Session) MarshalJSON() ([]byte, error) {
	return artifact.MarshalMerge(sessionAlias(s), s.Extra)
}

// New builds a fresh session over items: prior ratings for every title, empty
// comparison accounting, and one zeroed comparison counter per synthesized
// rater.
func New(items []item.Item, personCount int, cfg rating.Config) *Session {
	s := &Session{
		Movies:       item.Dedupe(items),
		PersonCount:  personCount,
		RatingConfig: cfg,
	}
	return Normalize(s, cfg, personCount)
}

// Normalize makes a loaded session well-formed. It is safe on nil (returning
// an empty session), idempotent, and never drops data:
//
//   - every current item gets a Rating, migrating legacy scalar records;
//   - ratings for removed titles are retained untouched;
//   - the persisted rating config is merged over defaults, persisted fields
//     winning;
//   - rater buckets exist for every known rater, inferred from comparison
//     counters or synthesized from the person count;
//   - coverage is recomputed from scratch.
func Normalize(s *Session, defaults rating.Config, defaultPersons int) *Session {
	if s == nil {
		s = &Session{}
	}
	s.Movies = item.Dedupe(s.Movies)
	if s.Ratings == nil {
		s.Ratings = make(map[string]rating.Rating, len(s.Movies))
	}
	if s.PairCounts == nil {
		s.PairCounts = make(pairs.Counts)
	}
	if s.ComparisonCount == nil {
		s.ComparisonCount = make(map[string]int)
	}
	if s.TotalVotes < 0 {
		s.TotalVotes = 0
	}

	s.RatingConfig = s.RatingConfig.Merge(defaults)

	for title := range s.Ratings {
		s.Ratings[title] = rating.Normalize(s.Ratings[title], s.RatingConfig)
	}
	for _, it := range s.Movies {
		if _, ok := s.Ratings[it.Title]; !ok {
			s.Ratings[it.Title] = rating.New(s.RatingConfig)
		}
	}

	if s.PersonCount < 1 {
		s.PersonCount = defaultPersons
	}
	if s.PersonCount < 1 {
		s.PersonCount = 1
	}
	for _, rater := range s.Raters() {
		s.PairCounts.EnsureRater(rater)
		if _, ok := s.ComparisonCount[rater]; !ok {
			s.ComparisonCount[rater] = 0
		}
	}

	s.Coverage = pairs.Compute(s.PairCounts, item.Titles(s.Movies))
	return s
}

// Raters lists the known rater ids: everyone with a comparison counter or a
// pair bucket, or person1..personN synthesized from the person count when no
// accounting exists yet.
func (s *Session) Raters() []string {
	seen := make(map[string]struct{})
	var raters []string
	add := func(r string) {
		if r == "" {
			return
		}
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		raters = append(raters, r)
	}
	for r := range s.ComparisonCount {
		add(r)
	}
	for r := range s.PairCounts {
		add(r)
	}
	if len(raters) == 0 {
		for i := 0; i < s.PersonCount; i++ {
			add(fmt.Sprintf("person%d", i+1))
		}
	}
	return raters
}

// HasTitle reports whether title is part of the current item pool.
func (s *Session) HasTitle(title string) bool {
	for _, it := range s.Movies {
		if it.Title == title {
			return true
		}
	}
	return false
}
