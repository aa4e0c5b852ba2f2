// Package service provides the core business service that implements the
// dependencies required by the HTTP API: pairwise voting, swipe walking,
// and session lifecycle on top of the file-backed store.
package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/halden/reelrank/internal/adapters/repository"
	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/pairs"
	"github.com/halden/reelrank/internal/domain/rating"
	"github.com/halden/reelrank/internal/domain/session"
	"github.com/halden/reelrank/internal/domain/swipe"
	"github.com/halden/reelrank/pkg/logger"
	"github.com/halden/reelrank/pkg/metrics"
)

// defaultPerson is the rater id assumed when a vote names nobody, matching
// the original clients.
const defaultPerson = "person1"

// RankedItem is one row of the ranking read model.
type RankedItem struct {
	Item   item.Item     `json:"item"`
	Rating rating.Rating `json:"rating"`
	Score  float64       `json:"score"`
}

// Service implements the ranking operations over a session store.
type Service struct {
	store          repository.Store
	ratingDefaults rating.Config
	defaultPersons int
	logger         logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the session store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRatingConfig sets the rating defaults for new sessions.
func WithRatingConfig(cfg rating.Config) Option {
	return func(s *Service) {
		s.ratingDefaults = cfg
	}
}

// WithDefaultPersonCount sets the person count for sessions that carry none.
func WithDefaultPersonCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.defaultPersons = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		ratingDefaults: rating.DefaultConfig(),
		defaultPersons: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewFileStore(
			repository.WithRatingConfig(s.ratingDefaults),
			repository.WithPersonCount(s.defaultPersons),
		)
	}
	return s
}

// Start prepares the store directories and bootstraps the swipe artifact.
func (s *Service) Start(ctx context.Context) error {
	if err := s.store.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap store: %w", err)
	}
	s.logInfo(ctx, "ranking service started")
	return nil
}

// State returns the normalized live session.
func (s *Service) State(ctx context.Context) (*session.Session, error) {
	return s.store.LoadSession(ctx)
}

// Generate replaces the live session with a fresh one over items: prior
// ratings, empty comparison accounting, and the exported title list. Items
// arrive from whatever catalog the embedding service consulted; only
// case-insensitive de-duplication happens here.
func (s *Service) Generate(ctx context.Context, items []item.Item, personCount int) (*session.Session, error) {
	if personCount < 1 {
		personCount = s.defaultPersons
	}
	sess := session.New(items, personCount, s.ratingDefaults)
	sess, err := s.store.ReplaceSession(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.store.WriteMovieList(ctx, sess.Movies); err != nil {
		// The session itself is persisted; a failed CSV export should not
		// fail the generation.
		s.logWarn(ctx, "writing movie list failed", logger.Error(err))
	}
	s.logInfo(ctx, "session generated",
		logger.Int("items", len(sess.Movies)),
		logger.Int("persons", personCount),
	)
	return sess, nil
}

// Vote records one pairwise judgment: the winner's and loser's ratings move,
// the pair is marked compared for the voting person, and the counters
// advance. The whole flow is one locked load-normalize-mutate-save unit.
func (s *Service) Vote(ctx context.Context, winner, loser, person string) (*session.Session, error) {
	if person == "" {
		person = defaultPerson
	}
	sess, err := s.store.UpdateSession(ctx, func(sess *session.Session) error {
		w, ok := sess.Ratings[winner]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTitle, winner)
		}
		l, ok := sess.Ratings[loser]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTitle, loser)
		}
		if err := sess.PairCounts.Record(person, winner, loser); err != nil {
			return err
		}
		sess.Ratings[winner], sess.Ratings[loser] = rating.RecordOutcome(w, l, sess.RatingConfig)
		sess.ComparisonCount[person]++
		sess.TotalVotes++
		return nil
	})
	if err != nil {
		metrics.RecordVoteError()
		return nil, err
	}
	metrics.RecordVote()
	return sess, nil
}

// ResetRatings re-priors every rating and zeroes the comparison accounting
// while keeping the item pool.
func (s *Service) ResetRatings(ctx context.Context, personCount int) (*session.Session, error) {
	return s.store.UpdateSession(ctx, func(sess *session.Session) error {
		if personCount > 0 {
			sess.PersonCount = personCount
		}
		sess.Ratings = make(map[string]rating.Rating, len(sess.Movies))
		for _, it := range sess.Movies {
			sess.Ratings[it.Title] = rating.New(sess.RatingConfig)
		}
		sess.PairCounts = make(pairs.Counts)
		sess.ComparisonCount = make(map[string]int)
		sess.TotalVotes = 0
		sess.RankerConfirmed = false
		return nil
	})
}

// ResetAll wipes the ranking session, the swipe state, and the poster
// assets back to empty.
func (s *Service) ResetAll(ctx context.Context) error {
	s.store.ClearPosters(ctx)
	empty := session.New(nil, s.defaultPersons, s.ratingDefaults)
	if _, err := s.store.ReplaceSession(ctx, empty); err != nil {
		return err
	}
	if _, err := s.store.ReplaceSwipeState(ctx, swipe.Empty()); err != nil {
		return err
	}
	s.logInfo(ctx, "session and swipe state reset")
	return nil
}

// ConfirmRanking sets the session's confirmation flag.
func (s *Service) ConfirmRanking(ctx context.Context, confirmed bool) (*session.Session, error) {
	return s.store.UpdateSession(ctx, func(sess *session.Session) error {
		sess.RankerConfirmed = confirmed
		return nil
	})
}

// Rankings returns the items ordered by conservative score, best first.
func (s *Service) Rankings(ctx context.Context) ([]RankedItem, error) {
	sess, err := s.store.LoadSession(ctx)
	if err != nil {
		return nil, err
	}
	ranked := make([]RankedItem, 0, len(sess.Movies))
	for _, it := range sess.Movies {
		r := sess.Ratings[it.Title]
		ranked = append(ranked, RankedItem{Item: it, Rating: r, Score: rating.Conservative(r)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Rating.Mu != ranked[j].Rating.Mu {
			return ranked[i].Rating.Mu > ranked[j].Rating.Mu
		}
		return ranked[i].Item.Title < ranked[j].Item.Title
	})
	return ranked, nil
}

// Coverage returns the live session's pair coverage report.
func (s *Service) Coverage(ctx context.Context) (pairs.Report, error) {
	sess, err := s.store.LoadSession(ctx)
	if err != nil {
		return pairs.Report{}, err
	}
	return sess.Coverage, nil
}

// SwipeState returns the live swipe state.
func (s *Service) SwipeState(ctx context.Context) (*swipe.State, error) {
	return s.store.LoadSwipeState(ctx)
}

// SetSwipeState replaces the swipe state wholesale.
func (s *Service) SetSwipeState(ctx context.Context, st *swipe.State) (*swipe.State, error) {
	return s.store.ReplaceSwipeState(ctx, st)
}

// SwipeAction applies one decision for person and advances their cursor.
func (s *Service) SwipeAction(ctx context.Context, person, decision string) (*swipe.State, error) {
	parsed, err := swipe.ParseDecision(decision)
	if err != nil {
		return nil, err
	}
	var before int
	st, err := s.store.UpdateSwipeState(ctx, func(st *swipe.State) error {
		before = len(st.Matches)
		return swipe.Decide(st, person, parsed)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordSwipeDecision(decisionLabel(parsed))
	if len(st.Matches) > before {
		metrics.RecordMatchFound()
		s.logInfo(ctx, "swipe match found",
			logger.String("title", st.Matches[len(st.Matches)-1]),
		)
	}
	return st, nil
}

// SwipeConfirm finalizes the swipe phase: movies, persons and progress are
// replaced wholesale, likes and matches cleared, and the state locked.
func (s *Service) SwipeConfirm(ctx context.Context, movies []item.Item, persons []string, progress map[string]*swipe.Progress) (*swipe.State, error) {
	st := swipe.Empty()
	swipe.Confirm(st, movies, persons, progress)
	return s.store.ReplaceSwipeState(ctx, st)
}

// SwipeReset returns the swipe state to empty.
func (s *Service) SwipeReset(ctx context.Context) (*swipe.State, error) {
	return s.store.ReplaceSwipeState(ctx, swipe.Empty())
}

// CreateSnapshot captures the live artifacts under the (sanitized) name.
func (s *Service) CreateSnapshot(ctx context.Context, name string) (repository.SnapshotInfo, error) {
	return s.store.CreateSnapshot(ctx, name)
}

// LoadSnapshot restores the named snapshot over the live session.
func (s *Service) LoadSnapshot(ctx context.Context, name string) (*session.Session, error) {
	return s.store.LoadSnapshot(ctx, name)
}

// ListSnapshots lists known snapshots, newest first.
func (s *Service) ListSnapshots(ctx context.Context) ([]repository.SnapshotInfo, error) {
	return s.store.ListSnapshots(ctx)
}

func decisionLabel(d swipe.Decision) string {
	if d == swipe.Yes {
		return "yes"
	}
	return "no"
}

func (s *Service) logInfo(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Info(ctx, msg, fields...)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Warn(ctx, msg, fields...)
	}
}
