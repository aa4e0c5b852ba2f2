// Package swipe implements the multi-person like/dislike walk over the item
// list and the match bookkeeping derived from accumulated likes. Each person
// advances a private cursor through a pinned copy of the title order; a title
// liked by every registered person becomes a match.
package swipe

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/halden/reelrank/internal/artifact"
	"github.com/halden/reelrank/internal/domain/item"
)

// Decision is one swipe judgment.
type Decision int

// Decision values.
const (
	No Decision = iota
	Yes
)

// ParseDecision maps a wire decision to a Decision. Accepted spellings are
// case-insensitive; the German forms are kept for old clients of the original
// deployment.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "ja":
		return Yes, nil
	case "no", "n", "nein":
		return No, nil
	default:
		return No, fmt.Errorf("%w: %q", ErrInvalidDecision, s)
	}
}

// Progress is one person's cursor through their pinned title order.
type Progress struct {
	Idx   int      `json:"idx"`
	Done  bool     `json:"done"`
	Order []string `json:"order"`
}

// State is the swipe-phase aggregate. Likes maps title -> person ids that
// liked it; Matches lists titles liked by every registered person. Both only
// grow within a session unless explicitly reset. Extra preserves artifact
// fields this build does not know about.
type State struct {
	Movies   []item.Item          `json:"movies"`
	Progress map[string]*Progress `json:"progress"`
	Persons  []string             `json:"persons"`
	Locked   bool                 `json:"locked"`
	Likes    map[string][]string  `json:"likes"`
	Matches  []string             `json:"matches"`

	Extra map[string]json.RawMessage `json:"-"`
}

var stateFields = artifact.KnownFields(
	"movies", "progress", "persons", "locked", "likes", "matches",
)

type stateAlias State

// UnmarshalJSON decodes the swipe artifact, keeping unknown fields for the
// next save.
func (s *State) UnmarshalJSON(data []byte) error {
	var a stateAlias
	extra, err := artifact.UnmarshalKeep(data, &a, stateFields)
	if err != nil {
		return err
	}
	*s = State(a)
	s.Extra = extra
	s.fill()
	return nil
}

// MarshalJSON encodes the swipe artifact, restoring preserved unknown fields.
func (s State) MarshalJSON() ([]byte, error) {
	c := s
	c.fill()
	return artifact.MarshalMerge(stateAlias(c), s.Extra)
}

// fill replaces nil collections so the artifact always carries [] and {}
// rather than null, matching what existing clients expect.
func (s *State) fill() {
	if s.Movies == nil {
		s.Movies = []item.Item{}
	}
	if s.Progress == nil {
		s.Progress = map[string]*Progress{}
	}
	if s.Persons == nil {
		s.Persons = []string{}
	}
	if s.Likes == nil {
		s.Likes = map[string][]string{}
	}
	if s.Matches == nil {
		s.Matches = []string{}
	}
}

// Empty returns the zero swipe state: no movies, no persons, no progress,
// unlocked, no likes, no matches.
func Empty() *State {
	s := &State{}
	s.fill()
	return s
}

// EnsureProgress creates a fresh progress record for every registered person
// that lacks one or whose order is empty. An existing person's in-flight order
// and cursor are never touched, even if the movie list has since changed:
// their ordering is pinned at first encounter.
func EnsureProgress(s *State) {
	s.fill()
	titles := item.Titles(s.Movies)
	for _, person := range s.Persons {
		p, ok := s.Progress[person]
		if ok && len(p.Order) > 0 {
			continue
		}
		s.Progress[person] = &Progress{
			Idx:   0,
			Done:  false,
			Order: append([]string(nil), titles...),
		}
	}
}

// Decide applies one judgment for person and advances their cursor. An
// unknown person is implicitly registered with a fresh progress record. A
// person already past the end of their order is a no-op. Yes decisions add
// the person to the current title's like set (idempotent); a like set
// reaching the registered person count promotes the title to Matches, which
// this operation never removes from.
func Decide(s *State, person string, decision Decision) error {
	if strings.TrimSpace(person) == "" {
		return ErrEmptyPerson
	}
	s.fill()

	p, ok := s.Progress[person]
	if !ok {
		p = &Progress{Order: item.Titles(s.Movies)}
		s.Progress[person] = p
	}

	if p.Idx < 0 {
		p.Idx = 0
	}
	if p.Idx >= len(p.Order) {
		// Already walked off the end; the decision has nothing to act on.
		p.Done = true
		return nil
	}
	if decision == Yes {
		s.like(p.Order[p.Idx], person)
	}
	p.Idx++
	p.Done = p.Idx >= len(p.Order)
	return nil
}

// like records person's like for title and promotes the title to Matches once
// every registered person has liked it.
func (s *State) like(title, person string) {
	likers := s.Likes[title]
	if !contains(likers, person) {
		likers = append(likers, person)
		s.Likes[title] = likers
	}
	needed := len(s.Persons)
	if needed < 1 {
		needed = 1
	}
	if len(likers) >= needed && !contains(s.Matches, title) {
		s.Matches = append(s.Matches, title)
	}
}

// Confirm replaces movies, persons, and progress wholesale, locks the state,
// and clears likes and matches. It represents finalizing the swipe phase
// before ranking begins.
func Confirm(s *State, movies []item.Item, persons []string, progress map[string]*Progress) {
	s.Movies = movies
	s.Persons = persons
	s.Progress = progress
	s.Locked = true
	s.Likes = map[string][]string{}
	s.Matches = []string{}
	EnsureProgress(s)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
