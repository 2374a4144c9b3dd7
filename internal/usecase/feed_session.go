package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/infrastructure/textclean"
	"ActivityFeed/internal/metrics"
	"ActivityFeed/internal/moderation"
	"ActivityFeed/internal/pagination"
	"ActivityFeed/internal/ports"
)

const (
	maxCommentRunes       = 2000
	maxReportDetailsRunes = 1000
)

// Ranker produces the ordered feed for one viewer.
type Ranker interface {
	Rank(ctx context.Context, viewerID string, scanLimit int) ([]domain.RankedItem, error)
}

// Options are the caller-tunable parameters of a load.
type Options struct {
	Limit     int
	ScanLimit int
	Mode      domain.ModerationMode
}

// Snapshot is the self-consistent result of one load. The caller keeps it; nothing is stored server-side.
type Snapshot struct {
	ViewerID    string                   `json:"viewerId"`
	Items       []domain.RankedItem      `json:"items"`
	RenderItems []domain.RenderItem      `json:"renderItems"`
	Cursor      string                   `json:"cursor,omitempty"`
	NextCursor  string                   `json:"nextCursor,omitempty"`
	HasMore     bool                     `json:"hasMore"`
	Limit       int                      `json:"limit"`
	ScanLimit   int                      `json:"scanLimit"`
	Mode        domain.ModerationMode    `json:"moderationMode"`
	Summary     domain.ModerationSummary `json:"moderationSummary"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// Options returns the parameters the snapshot was loaded with.
func (s Snapshot) Options() Options {
	return Options{Limit: s.Limit, ScanLimit: s.ScanLimit, Mode: s.Mode}
}

// FeedDeps wires the collaborators of the feed session.
type FeedDeps struct {
	Ranker     Ranker
	Events     ports.EventSource
	Moderation ports.ModerationSource
	Engagement ports.EngagementWriter
	Decisions  ports.ModerationWriter
	Viewer     ports.ViewerResolver
	Defaults   Options
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

// Feed is the entry point consumed by application layers.
type Feed struct {
	ranker     Ranker
	events     ports.EventSource
	moderation ports.ModerationSource
	engagement ports.EngagementWriter
	decisions  ports.ModerationWriter
	viewer     ports.ViewerResolver
	defaults   Options
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewFeed constructs the façade.
func NewFeed(deps FeedDeps) *Feed {
	f := &Feed{
		ranker:     deps.Ranker,
		events:     deps.Events,
		moderation: deps.Moderation,
		engagement: deps.Engagement,
		decisions:  deps.Decisions,
		viewer:     deps.Viewer,
		defaults:   deps.Defaults,
		logger:     deps.Logger,
		now:        deps.Now,
		newID:      deps.NewID,
	}
	if f.viewer == nil {
		f.viewer = ContextViewer{}
	}
	if f.now == nil {
		f.now = func() time.Time { return time.Now().UTC() }
	}
	if f.newID == nil {
		f.newID = uuid.NewString
	}
	return f
}

// Load runs the full pipeline for the first page.
func (f *Feed) Load(ctx context.Context, opts Options) (Snapshot, error) {
	snap, err := f.load(ctx, opts)
	return snap, f.finish("load", err)
}

// Refresh re-enters at the top of the freshly ranked feed with the snapshot's parameters.
func (f *Feed) Refresh(ctx context.Context, current Snapshot) (Snapshot, error) {
	snap, err := f.load(ctx, current.Options())
	return snap, f.finish("refresh", err)
}

// LoadMore fetches the page after current and merges it in.
// It returns current unchanged when there is nothing more to load. On failure current stays valid.
func (f *Feed) LoadMore(ctx context.Context, current Snapshot) (Snapshot, error) {
	if !current.HasMore || current.NextCursor == "" {
		return current, nil
	}
	viewerID, err := f.viewer.ViewerID(ctx)
	if err != nil {
		return current, f.finish("load_more", err)
	}
	if current.ViewerID != "" && current.ViewerID != viewerID {
		return current, f.finish("load_more", domain.Invalid("load_more", "snapshot belongs to another viewer"))
	}
	opts, err := f.normalize(current.Options())
	if err != nil {
		return current, f.finish("load_more", err)
	}
	next, err := f.page(ctx, viewerID, opts, current.NextCursor)
	if err != nil {
		return current, f.finish("load_more", err)
	}
	return Merge(current, next), f.finish("load_more", nil)
}

// ReactInput selects the viewer's reaction on a workout. An empty Reaction removes it.
type ReactInput struct {
	ContentID string
	Reaction  string
}

// ReactToWorkout records or clears the viewer's reaction, then reloads.
func (f *Feed) ReactToWorkout(ctx context.Context, in ReactInput, opts Options) (Snapshot, error) {
	return f.mutate(ctx, "react", opts, func(viewerID string) error {
		contentID := strings.TrimSpace(in.ContentID)
		if contentID == "" {
			return domain.Invalid("react", "a workout is required")
		}
		reaction := strings.ToLower(strings.TrimSpace(in.Reaction))
		if reaction == "" {
			if err := f.engagement.DeleteReaction(ctx, contentID, viewerID); err != nil {
				return domain.E(domain.KindUpstreamWrite, "react.delete", err)
			}
			return nil
		}
		if !domain.ReactionKinds[reaction] {
			return domain.Invalid("react", fmt.Sprintf("unknown reaction %q", in.Reaction))
		}
		err := f.engagement.UpsertReaction(ctx, domain.Reaction{
			ContentID: contentID,
			UserID:    viewerID,
			Kind:      reaction,
			CreatedAt: f.now(),
		})
		if err != nil {
			return domain.E(domain.KindUpstreamWrite, "react.upsert", err)
		}
		return nil
	})
}

// CommentInput is a new comment, optionally replying to ParentID.
type CommentInput struct {
	ContentID string
	Body      string
	ParentID  string
}

// CommentOnWorkout stores a comment, then reloads.
func (f *Feed) CommentOnWorkout(ctx context.Context, in CommentInput, opts Options) (Snapshot, error) {
	return f.mutate(ctx, "comment", opts, func(viewerID string) error {
		contentID := strings.TrimSpace(in.ContentID)
		if contentID == "" {
			return domain.Invalid("comment", "a workout is required")
		}
		body := textclean.Truncate(textclean.Plain(in.Body), maxCommentRunes)
		if body == "" {
			return domain.Invalid("comment", "comment text is empty")
		}
		err := f.engagement.CreateComment(ctx, domain.Comment{
			ID:        f.newID(),
			ContentID: contentID,
			UserID:    viewerID,
			ParentID:  strings.TrimSpace(in.ParentID),
			Body:      body,
			CreatedAt: f.now(),
		})
		if err != nil {
			return domain.E(domain.KindUpstreamWrite, "comment.create", err)
		}
		return nil
	})
}

// BlockActor blocks a member, which also removes follows between the two, then reloads.
func (f *Feed) BlockActor(ctx context.Context, actorID string, opts Options) (Snapshot, error) {
	return f.mutate(ctx, "block", opts, func(viewerID string) error {
		actorID = strings.TrimSpace(actorID)
		if actorID == "" {
			return domain.Invalid("block", "a member is required")
		}
		if actorID == viewerID {
			return domain.Invalid("block", "you cannot block yourself")
		}
		blockedBy, err := f.moderation.IsBlocked(ctx, actorID, viewerID)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "block.check", err)
		}
		if blockedBy {
			return domain.Invalid("block", "this member is not available")
		}
		err = f.decisions.Block(ctx, domain.Block{
			ID:        f.newID(),
			BlockerID: viewerID,
			BlockedID: actorID,
			CreatedAt: f.now(),
		})
		if err != nil {
			return domain.E(domain.KindUpstreamWrite, "block.create", err)
		}
		return nil
	})
}

// UnblockActor lifts a block, then reloads.
func (f *Feed) UnblockActor(ctx context.Context, actorID string, opts Options) (Snapshot, error) {
	return f.mutate(ctx, "unblock", opts, func(viewerID string) error {
		actorID = strings.TrimSpace(actorID)
		if actorID == "" || actorID == viewerID {
			return domain.Invalid("unblock", "a member other than yourself is required")
		}
		if err := f.decisions.Unblock(ctx, viewerID, actorID); err != nil {
			return domain.E(domain.KindUpstreamWrite, "unblock", err)
		}
		return nil
	})
}

// ReportInput targets a workout, a member, or both.
type ReportInput struct {
	ContentID string
	ActorID   string
	Reason    domain.ReportReason
	Details   string
}

// ReportContent files a personal report, then reloads. The reported item is hidden for the viewer only.
func (f *Feed) ReportContent(ctx context.Context, in ReportInput, opts Options) (Snapshot, error) {
	return f.mutate(ctx, "report", opts, func(viewerID string) error {
		contentID := strings.TrimSpace(in.ContentID)
		actorID := strings.TrimSpace(in.ActorID)
		if contentID == "" && actorID == "" {
			return domain.Invalid("report", "a workout or member to report is required")
		}
		if actorID == viewerID {
			return domain.Invalid("report", "you cannot report yourself")
		}
		reason := in.Reason
		if reason == "" {
			reason = domain.ReportOther
		}
		if !reason.Valid() {
			return domain.Invalid("report", fmt.Sprintf("unknown report reason %q", in.Reason))
		}
		err := f.decisions.CreateReport(ctx, domain.Report{
			ID:         f.newID(),
			ReporterID: viewerID,
			ContentID:  contentID,
			ActorID:    actorID,
			Reason:     reason,
			Details:    textclean.Truncate(textclean.Plain(in.Details), maxReportDetailsRunes),
			CreatedAt:  f.now(),
		})
		if err != nil {
			return domain.E(domain.KindUpstreamWrite, "report.create", err)
		}
		return nil
	})
}

// mutate performs one write and then a full reload so the snapshot reflects the new state.
func (f *Feed) mutate(ctx context.Context, op string, opts Options, write func(viewerID string) error) (Snapshot, error) {
	viewerID, err := f.viewer.ViewerID(ctx)
	if err != nil {
		return Snapshot{}, f.finish(op, err)
	}
	if err := write(viewerID); err != nil {
		return Snapshot{}, f.finish(op, err)
	}
	f.debug("mutation applied", "op", op, "viewer", viewerID)
	snap, err := f.load(ctx, opts)
	return snap, f.finish(op, err)
}

func (f *Feed) load(ctx context.Context, opts Options) (Snapshot, error) {
	viewerID, err := f.viewer.ViewerID(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	opts, err = f.normalize(opts)
	if err != nil {
		return Snapshot{}, err
	}
	return f.page(ctx, viewerID, opts, "")
}

func (f *Feed) normalize(opts Options) (Options, error) {
	if opts.Limit == 0 {
		opts.Limit = f.defaults.Limit
	}
	if opts.ScanLimit == 0 {
		opts.ScanLimit = f.defaults.ScanLimit
	}
	if opts.Mode == "" {
		opts.Mode = f.defaults.Mode
	}
	mode, ok := domain.ParseModerationMode(string(opts.Mode))
	if !ok {
		return Options{}, domain.Invalid("options", fmt.Sprintf("unknown moderation mode %q", opts.Mode))
	}
	opts.Mode = mode
	opts.Limit = pagination.ClampPageSize(opts.Limit)
	opts.ScanLimit = pagination.ClampScanLimit(opts.ScanLimit, opts.Limit)
	return opts, nil
}

// page ranks, slices and moderates one page. Ranking and the moderation reads run together.
func (f *Feed) page(ctx context.Context, viewerID string, opts Options, cursor string) (Snapshot, error) {
	var (
		ranked  []domain.RankedItem
		blocked []string
		reports []domain.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		timer := prometheus.NewTimer(metrics.RankDuration)
		defer timer.ObserveDuration()
		items, err := f.ranker.Rank(gctx, viewerID, opts.ScanLimit)
		if err != nil {
			return err
		}
		ranked = items
		return nil
	})
	g.Go(func() error {
		ids, err := f.moderation.BlockedActors(gctx, viewerID)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "moderation.blocks", err)
		}
		blocked = ids
		return nil
	})
	g.Go(func() error {
		rs, err := f.moderation.ReportsBy(gctx, viewerID)
		if err != nil {
			return domain.E(domain.KindUpstreamRead, "moderation.reports", err)
		}
		reports = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	req := pagination.Request{Cursor: cursor, PageSize: opts.Limit}
	if cursor != "" && !containsEvent(ranked, cursor) && f.events != nil {
		at, ok, err := f.events.EventTime(ctx, cursor)
		if err != nil {
			return Snapshot{}, domain.E(domain.KindUpstreamRead, "cursor.anchor", err)
		}
		if ok {
			req.Anchor = at
		}
	}
	pg, err := pagination.Paginate(ranked, req)
	if err != nil {
		return Snapshot{}, err
	}
	if pg.ByTimestamp {
		f.debug("cursor resolved by timestamp", "viewer", viewerID, "cursor", cursor, "start", pg.Start)
	}

	res := moderation.Apply(pg.Items, domain.NewDecisions(blocked, reports), opts.Mode)
	if res.Summary.HiddenByBlock > 0 {
		metrics.SuppressedItems.WithLabelValues("blocked").Add(float64(res.Summary.HiddenByBlock))
	}
	if res.Summary.HiddenByReport > 0 {
		metrics.SuppressedItems.WithLabelValues("reported").Add(float64(res.Summary.HiddenByReport))
	}
	f.debug("page built",
		"viewer", viewerID,
		"ranked", len(ranked),
		"page", len(pg.Items),
		"visible", len(res.Visible),
		"has_more", pg.HasMore)

	return Snapshot{
		ViewerID:    viewerID,
		Items:       res.Visible,
		RenderItems: res.Render,
		Cursor:      cursor,
		NextCursor:  pg.NextCursor,
		HasMore:     pg.HasMore,
		Limit:       opts.Limit,
		ScanLimit:   opts.ScanLimit,
		Mode:        opts.Mode,
		Summary:     res.Summary,
		GeneratedAt: f.now(),
	}, nil
}

// finish records the outcome and converts err into a *Failure.
func (f *Feed) finish(op string, err error) error {
	if err == nil {
		metrics.Operations.WithLabelValues(op, "ok").Inc()
		return nil
	}
	failure := toFailure(err)
	metrics.Operations.WithLabelValues(op, string(failure.Code)).Inc()
	if f.logger != nil {
		f.logger.Warn("feed operation failed", "op", op, "code", failure.Code, "recoverable", failure.Recoverable, "error", err)
	}
	return failure
}

func (f *Feed) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func containsEvent(items []domain.RankedItem, eventID string) bool {
	for _, item := range items {
		if item.EventID == eventID {
			return true
		}
	}
	return false
}
