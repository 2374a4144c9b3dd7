package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/ports"
)

const (
	DefaultScanLimit = 120
	MaxScanLimit     = 250
)

// Engine ranks the most recent slice of the activity stream for one viewer.
// It holds no state between calls; every Rank re-reads its sources.
type Engine struct {
	sources ports.SignalSources
	weights Weights
	now     func() time.Time
	logger  *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w.normalized() }
}

// WithClock overrides the wall clock used for recency.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine wires the signal sources.
func NewEngine(sources ports.SignalSources, opts ...Option) *Engine {
	e := &Engine{
		sources: sources,
		weights: DefaultWeights(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClampScanLimit bounds the event window.
func ClampScanLimit(limit int) int {
	if limit <= 0 {
		return DefaultScanLimit
	}
	if limit > MaxScanLimit {
		return MaxScanLimit
	}
	return limit
}

type viewerContext struct {
	following   map[string]bool
	affiliation string
	experiment  bool
}

// Rank returns the score-ordered items for viewerID over the scanLimit most recent events.
// Any read failure aborts the call with a KindUpstreamRead error.
func (e *Engine) Rank(ctx context.Context, viewerID string, scanLimit int) ([]domain.RankedItem, error) {
	if viewerID == "" {
		return nil, domain.E(domain.KindUnauthenticated, "rank", fmt.Errorf("viewer identity is required"))
	}
	scanLimit = ClampScanLimit(scanLimit)
	now := e.now()

	events, err := e.sources.Events.RecentEvents(ctx, scanLimit)
	if err != nil {
		return nil, domain.E(domain.KindUpstreamRead, "rank.events", err)
	}
	events = uniqueEvents(events, scanLimit)
	e.debug("rank window", "viewer", viewerID, "events", len(events), "scan_limit", scanLimit)
	if len(events) == 0 {
		return []domain.RankedItem{}, nil
	}

	var (
		contents map[string]domain.Content
		vc       viewerContext
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids := contentIDs(events)
		if len(ids) == 0 {
			contents = map[string]domain.Content{}
			return nil
		}
		res, err := e.sources.Content.ContentByIDs(gctx, ids)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "rank.content", err)
		}
		contents = res
		return nil
	})
	g.Go(func() error {
		ids, err := e.sources.Social.Following(gctx, viewerID)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "rank.following", err)
		}
		vc.following = make(map[string]bool, len(ids))
		for _, id := range ids {
			vc.following[id] = true
		}
		return nil
	})
	g.Go(func() error {
		aff, err := e.sources.Profiles.Affiliation(gctx, viewerID)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "rank.affiliation", err)
		}
		vc.affiliation = aff
		return nil
	})
	g.Go(func() error {
		if e.sources.Toggles == nil {
			return nil
		}
		on, err := e.sources.Toggles.Enabled(gctx, e.weights.ExperimentToggle)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "rank.toggle", err)
		}
		vc.experiment = on
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visible := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if ev.ContentID == "" {
			visible = append(visible, ev)
			continue
		}
		c, ok := contents[ev.ContentID]
		if !ok || !c.VisibleTo(viewerID, vc.following) {
			continue
		}
		visible = append(visible, ev)
	}
	e.debug("rank content resolved", "viewer", viewerID, "kept", len(visible), "dropped", len(events)-len(visible))
	if len(visible) == 0 {
		return []domain.RankedItem{}, nil
	}

	var (
		actors       map[string]domain.Actor
		interactions []domain.Interaction
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := e.sources.Profiles.ActorsByIDs(gctx, actorIDs(visible))
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "rank.actors", err)
		}
		actors = res
		return nil
	})
	g.Go(func() error {
		ids := contentIDs(visible)
		if len(ids) == 0 {
			return nil
		}
		res, err := e.sources.Engagement.Interactions(gctx, ids)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "rank.engagement", err)
		}
		interactions = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engagement := FoldEngagement(viewerID, interactions)
	items := make([]domain.RankedItem, 0, len(visible))
	for _, ev := range visible {
		item := domain.RankedItem{
			EventID:   ev.ID,
			EventType: ev.Type,
			Caption:   ev.Caption,
			Metadata:  ev.Metadata,
			CreatedAt: ev.CreatedAt,
			Actor:     resolveActor(actors, ev.ActorID),
		}
		var content *domain.Content
		if ev.ContentID != "" {
			c := contents[ev.ContentID]
			content = &c
			item.Engagement = engagement[ev.ContentID]
		}
		item.Content = content
		item.Signals = e.score(ev, content, item.Engagement, viewerID, vc, now)
		item.Score = item.Signals.Total()
		items = append(items, item)
	}

	SortItems(items)
	return items, nil
}

func (e *Engine) score(ev domain.Event, content *domain.Content, eng domain.Engagement, viewerID string, vc viewerContext, now time.Time) domain.Signals {
	w := e.weights
	var s domain.Signals

	s.Recency = Recency(now.Sub(ev.CreatedAt), w.RecencyHorizon) * w.RecencyWeight

	s.Engagement = float64(eng.Reactions)*w.ReactionWeight + float64(eng.Comments)*w.CommentWeight
	if ev.Type.Significant() || (content != nil && content.Significant()) {
		s.Engagement += w.SignificanceBonus
	}

	if vc.following[ev.ActorID] {
		s.Social = w.SocialBoost
	}
	if content != nil && content.GroupID != "" && content.GroupID == vc.affiliation {
		s.Affiliation = w.AffiliationBoost
	}
	if ev.ActorID == viewerID {
		s.Self = w.SelfBoost
	}
	if vc.experiment && content != nil && content.Visibility == domain.VisibilityPublic {
		s.Experiment = w.ExperimentBoost
	}
	return s
}

// Recency decays linearly from 1 at age zero to 0 at horizon.
func Recency(age, horizon time.Duration) float64 {
	if horizon <= 0 {
		return 0
	}
	v := 1 - float64(age)/float64(horizon)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SortItems orders by score desc, then createdAt desc, then eventID asc.
func SortItems(items []domain.RankedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return strings.Compare(a.EventID, b.EventID) < 0
	})
}

func resolveActor(actors map[string]domain.Actor, actorID string) domain.Actor {
	if a, ok := actors[actorID]; ok {
		return completeActor(a, actorID)
	}
	return FallbackActor(actorID)
}

func uniqueEvents(events []domain.Event, limit int) []domain.Event {
	seen := make(map[string]bool, len(events))
	out := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if ev.ID == "" || seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out
}

func contentIDs(events []domain.Event) []string {
	return distinct(events, func(ev domain.Event) string { return ev.ContentID })
}

func actorIDs(events []domain.Event) []string {
	return distinct(events, func(ev domain.Event) string { return ev.ActorID })
}

func distinct(events []domain.Event, key func(domain.Event) string) []string {
	set := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if k := key(ev); k != "" {
			set[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (e *Engine) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
