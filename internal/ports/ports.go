package ports

import (
	"context"
	"time"

	"ActivityFeed/internal/domain"
)

// EventSource reads the append-only activity stream.
type EventSource interface {
	RecentEvents(ctx context.Context, limit int) ([]domain.Event, error)
	// EventTime returns the creation time of a single event; ok is false when it no longer exists.
	EventTime(ctx context.Context, eventID string) (at time.Time, ok bool, err error)
}

// ContentSource resolves workouts/content by ID. Missing IDs are absent from the result.
type ContentSource interface {
	ContentByIDs(ctx context.Context, ids []string) (map[string]domain.Content, error)
}

// ProfileSource resolves author profiles and the viewer's own affiliation.
type ProfileSource interface {
	ActorsByIDs(ctx context.Context, ids []string) (map[string]domain.Actor, error)
	Affiliation(ctx context.Context, viewerID string) (string, error)
}

// EngagementSource lists raw reactions and comments for a set of content IDs.
type EngagementSource interface {
	Interactions(ctx context.Context, contentIDs []string) ([]domain.Interaction, error)
}

// SocialGraph answers which members the viewer follows with an accepted follow.
type SocialGraph interface {
	Following(ctx context.Context, viewerID string) ([]string, error)
}

// FeatureToggles looks up boolean rollout flags.
type FeatureToggles interface {
	Enabled(ctx context.Context, key string) (bool, error)
}

// ModerationSource exposes the viewer's personal moderation state.
type ModerationSource interface {
	BlockedActors(ctx context.Context, viewerID string) ([]string, error)
	ReportsBy(ctx context.Context, viewerID string) ([]domain.Report, error)
	IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error)
}

// EngagementWriter records reactions and comments.
type EngagementWriter interface {
	UpsertReaction(ctx context.Context, reaction domain.Reaction) error
	DeleteReaction(ctx context.Context, contentID, userID string) error
	CreateComment(ctx context.Context, comment domain.Comment) error
}

// ModerationWriter records blocks and reports. Block also removes follows between the two parties.
type ModerationWriter interface {
	Block(ctx context.Context, block domain.Block) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	CreateReport(ctx context.Context, report domain.Report) error
}

// ViewerResolver yields the identity the feed is computed for.
type ViewerResolver interface {
	ViewerID(ctx context.Context) (string, error)
}

// SignalSources groups every read the ranking engine needs.
type SignalSources struct {
	Events     EventSource
	Content    ContentSource
	Profiles   ProfileSource
	Engagement EngagementSource
	Social     SocialGraph
	Toggles    FeatureToggles
}

// Store is implemented by adapters that serve every read and write of the feed.
type Store interface {
	EventSource
	ContentSource
	ProfileSource
	EngagementSource
	SocialGraph
	FeatureToggles
	ModerationSource
	EngagementWriter
	ModerationWriter
}

// SourcesFrom splits a Store into the ranking engine's signal sources.
func SourcesFrom(s Store) SignalSources {
	return SignalSources{
		Events:     s,
		Content:    s,
		Profiles:   s,
		Engagement: s,
		Social:     s,
		Toggles:    s,
	}
}
