package market

import (
	"math"
	"sort"
)

// Factor weights. They sum to 1 so the total stays in [0,100].
const (
	weightMomentum    = 0.25
	weightVolume      = 0.20
	weightLiquidity   = 0.15
	weightSpread      = 0.10
	weightUncertainty = 0.15
	weightTiming      = 0.10
	weightEngagement  = 0.05
)

// Breakdown carries the seven factor scores, each clamped to [0,100].
type Breakdown struct {
	Momentum    float64 `json:"momentum"`
	Volume      float64 `json:"volume"`
	Liquidity   float64 `json:"liquidity"`
	Spread      float64 `json:"spread"`
	Uncertainty float64 `json:"uncertainty"`
	Timing      float64 `json:"timing"`
	Engagement  float64 `json:"engagement"`
}

// Scored is a Snapshot plus its composite opportunity score.
type Scored struct {
	Snapshot
	OpportunityScore float64   `json:"opportunity_score"`
	ScoreBreakdown   Breakdown `json:"score_breakdown"`
}

// Score computes the seven-factor opportunity score for one snapshot. It is
// pure: identical input yields identical output.
func Score(s Snapshot) Scored {
	b := Breakdown{
		Momentum:    clampScore(math.Abs(s.Change24h)*500 + math.Abs(s.Change1w)*200),
		Volume:      clampScore(math.Log10(math.Max(1, s.Volume24h)) * 15),
		Liquidity:   clampScore(math.Log10(math.Max(1, s.Liquidity)) * 15),
		Spread:      clampScore(100 - s.Spread*2000),
		Uncertainty: clampScore(100 - math.Abs(s.YesPrice-0.5)*200),
		Timing:      timingScore(s.DaysUntilResolution),
		Engagement:  engagementScore(s.CommentCount, s.Featured),
	}

	total := b.Momentum*weightMomentum +
		b.Volume*weightVolume +
		b.Liquidity*weightLiquidity +
		b.Spread*weightSpread +
		b.Uncertainty*weightUncertainty +
		b.Timing*weightTiming +
		b.Engagement*weightEngagement

	b.Momentum = round1(b.Momentum)
	b.Volume = round1(b.Volume)
	b.Liquidity = round1(b.Liquidity)
	b.Spread = round1(b.Spread)
	b.Uncertainty = round1(b.Uncertainty)
	b.Timing = round1(b.Timing)
	b.Engagement = round1(b.Engagement)

	return Scored{
		Snapshot:         s,
		OpportunityScore: round1(total),
		ScoreBreakdown:   b,
	}
}

// Rank scores every snapshot and returns the top-limit entries ordered by
// opportunity score descending. Equal scores keep their input order.
func Rank(snapshots []Snapshot, limit int) []Scored {
	scored := make([]Scored, 0, len(snapshots))
	for _, s := range snapshots {
		scored = append(scored, Score(s))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].OpportunityScore > scored[j].OpportunityScore
	})
	if limit > 0 && limit < len(scored) {
		scored = scored[:limit]
	}
	return scored
}

// timingScore prefers markets resolving soon but not imminently. Unknown
// resolution dates score neutral.
func timingScore(days *int) float64 {
	if days == nil {
		return 50
	}
	switch {
	case *days < 1:
		return 30
	case *days < 7:
		return 100
	case *days < 30:
		return 80
	case *days < 90:
		return 60
	default:
		return 40
	}
}

func engagementScore(comments int, featured bool) float64 {
	score := clampScore(math.Log10(math.Max(1, float64(comments))) * 30)
	if featured {
		score = clampScore(score + 20)
	}
	return score
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
