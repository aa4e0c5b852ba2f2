// Package rating implements the Bayesian pairwise skill model used to rank
// items from head-to-head judgments. Each item carries a Gaussian skill
// estimate (mean mu, uncertainty sigma); a recorded outcome moves both
// estimates by an amount proportional to how surprising the result was and
// shrinks both uncertainties.
package rating

import "math"

// Default prior parameters, the conventional mu=25 scale.
const (
	defaultMu    = 25.0
	defaultSigma = defaultMu / 3
	defaultBeta  = defaultMu / 6
	defaultTau   = defaultMu / 300

	// sigmaFloor keeps sigma strictly positive no matter how many games an
	// item has played.
	sigmaFloor = 1e-4
)

// Config holds the parameters governing the skill update. It is fixed at
// session-configuration time and persisted with the session so historical
// ratings stay reproducible even if process-wide defaults change later.
type Config struct {
	// Mu is the prior skill mean for a new item.
	Mu float64 `json:"mu" koanf:"mu"`

	// Sigma is the prior uncertainty for a new item.
	Sigma float64 `json:"sigma" koanf:"sigma"`

	// Beta is the per-comparison performance variance.
	Beta float64 `json:"beta" koanf:"beta"`

	// Tau is the dynamics factor added to sigma before each update so
	// estimates never freeze completely.
	Tau float64 `json:"tau" koanf:"tau"`

	// DrawProbability is persisted for reproducibility; every call site in
	// this service fixes it at 0 since the vote API cannot express a draw.
	DrawProbability float64 `json:"drawProbability" koanf:"draw_probability"`
}

// DefaultConfig returns the standard prior parameters.
func DefaultConfig() Config {
	return Config{
		Mu:              defaultMu,
		Sigma:           defaultSigma,
		Beta:            defaultBeta,
		Tau:             defaultTau,
		DrawProbability: 0,
	}
}

// Merge overlays c on top of defaults: fields already set on c win, zero
// fields fall back to the defaults. Sigma and Beta must end up positive, so
// zero values there always take the default.
func (c Config) Merge(defaults Config) Config {
	out := c
	if out.Mu == 0 {
		out.Mu = defaults.Mu
	}
	if out.Sigma <= 0 {
		out.Sigma = defaults.Sigma
	}
	if out.Beta <= 0 {
		out.Beta = defaults.Beta
	}
	if out.Tau <= 0 {
		out.Tau = defaults.Tau
	}
	return out
}

// Rating is the per-item skill estimate. Legacy carries the old single-scalar
// rating field: it is consumed by Normalize during migration and written back
// as a copy of Mu so older readers of the state artifact keep working.
type Rating struct {
	Mu     float64 `json:"mu"`
	Sigma  float64 `json:"sigma"`
	Games  int     `json:"games"`
	Wins   int     `json:"wins"`
	Legacy float64 `json:"rating,omitempty"`
}

// New returns the configured prior rating.
func New(cfg Config) Rating {
	cfg = cfg.Merge(DefaultConfig())
	return Rating{Mu: cfg.Mu, Sigma: cfg.Sigma, Legacy: cfg.Mu}
}

// Normalize produces a well-formed Rating from a possibly-legacy record.
// A record with no mu but a legacy scalar adopts the scalar as its mean; a
// missing or non-positive sigma falls back to the configured prior; negative
// counters are clamped. Normalizing an already-normalized rating is a no-op
// on every field except Legacy, which is re-synced to Mu.
func Normalize(r Rating, cfg Config) Rating {
	cfg = cfg.Merge(DefaultConfig())
	if r.Mu == 0 && r.Legacy != 0 {
		r.Mu = r.Legacy
	}
	if r.Mu == 0 {
		r.Mu = cfg.Mu
	}
	if r.Sigma <= 0 {
		r.Sigma = cfg.Sigma
	}
	if r.Games < 0 {
		r.Games = 0
	}
	if r.Wins < 0 {
		r.Wins = 0
	}
	if r.Wins > r.Games {
		r.Wins = r.Games
	}
	r.Legacy = r.Mu
	return r
}

// RecordOutcome applies one decisive pairwise result and returns the updated
// winner and loser ratings. The update is the standard two-player Gaussian
// skill step with no draw margin: both sigmas are first inflated by the
// dynamics factor, the win surprise is measured against the combined
// performance variance, then means move apart and sigmas shrink. The function
// is pure; inputs are not mutated.
func RecordOutcome(winner, loser Rating, cfg Config) (Rating, Rating) {
	cfg = cfg.Merge(DefaultConfig())

	winVar := winner.Sigma*winner.Sigma + cfg.Tau*cfg.Tau
	loseVar := loser.Sigma*loser.Sigma + cfg.Tau*cfg.Tau

	c2 := 2*cfg.Beta*cfg.Beta + winVar + loseVar
	c := math.Sqrt(c2)

	t := (winner.Mu - loser.Mu) / c
	v := vWin(t)
	w := wWin(t, v)

	winner.Mu += winVar / c * v
	loser.Mu -= loseVar / c * v

	winner.Sigma = shrink(winVar, c2, w)
	loser.Sigma = shrink(loseVar, c2, w)

	winner.Games++
	winner.Wins++
	loser.Games++

	winner.Legacy = winner.Mu
	loser.Legacy = loser.Mu
	return winner, loser
}

// Conservative is the display score mu - 3*sigma: an estimate the item is
// very likely above. Used to order leaderboards so uncertain newcomers do not
// jump to the top.
func Conservative(r Rating) float64 {
	return r.Mu - 3*r.Sigma
}

// shrink applies the variance reduction factor and enforces the sigma floor.
func shrink(variance, c2, w float64) float64 {
	factor := 1 - variance/c2*w
	if factor < 0 {
		factor = 0
	}
	sigma := math.Sqrt(variance * factor)
	if sigma < sigmaFloor {
		sigma = sigmaFloor
	}
	return sigma
}

// vWin is the additive truncated-Gaussian correction phi(t)/Phi(t).
// For large negative t the ratio approaches -t; the guard avoids 0/0.
func vWin(t float64) float64 {
	denom := normCDF(t)
	if denom < 1e-300 {
		return -t
	}
	return normPDF(t) / denom
}

// wWin is the multiplicative variance correction v*(v+t), clamped to (0, 1].
func wWin(t, v float64) float64 {
	w := v * (v + t)
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
