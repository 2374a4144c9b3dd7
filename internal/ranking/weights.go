package ranking

import "time"

// Named scoring defaults. Only their relative ordering matters; override through Weights.
const (
	DefaultRecencyWeight     = 40.0
	DefaultRecencyHorizon    = 72 * time.Hour
	DefaultReactionWeight    = 2.0
	DefaultCommentWeight     = 3.0
	DefaultSignificanceBonus = 15.0
	DefaultSocialBoost       = 20.0
	DefaultAffiliationBoost  = 10.0
	DefaultSelfBoost         = 5.0
	DefaultExperimentBoost   = 8.0
	DefaultExperimentToggle  = "feed_ranking_experiment"
)

// Weights parameterizes the scoring function.
type Weights struct {
	RecencyWeight     float64
	RecencyHorizon    time.Duration
	ReactionWeight    float64
	CommentWeight     float64
	SignificanceBonus float64
	SocialBoost       float64
	AffiliationBoost  float64
	SelfBoost         float64
	ExperimentBoost   float64
	// ExperimentToggle is the feature flag gating ExperimentBoost.
	ExperimentToggle string
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		RecencyWeight:     DefaultRecencyWeight,
		RecencyHorizon:    DefaultRecencyHorizon,
		ReactionWeight:    DefaultReactionWeight,
		CommentWeight:     DefaultCommentWeight,
		SignificanceBonus: DefaultSignificanceBonus,
		SocialBoost:       DefaultSocialBoost,
		AffiliationBoost:  DefaultAffiliationBoost,
		SelfBoost:         DefaultSelfBoost,
		ExperimentBoost:   DefaultExperimentBoost,
		ExperimentToggle:  DefaultExperimentToggle,
	}
}

func (w Weights) normalized() Weights {
	if w.RecencyHorizon <= 0 {
		w.RecencyHorizon = DefaultRecencyHorizon
	}
	if w.ExperimentToggle == "" {
		w.ExperimentToggle = DefaultExperimentToggle
	}
	return w
}
