package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/infrastructure/memory"
	"ActivityFeed/internal/ports"
	"ActivityFeed/internal/ranking"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestFeed(store *memory.Store) *Feed {
	clock := func() time.Time { return testNow }
	n := 0
	return NewFeed(FeedDeps{
		Ranker:     ranking.NewEngine(ports.SourcesFrom(store), ranking.WithClock(clock)),
		Events:     store,
		Moderation: store,
		Engagement: store,
		Decisions:  store,
		Now:        clock,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
}

func viewerCtx() context.Context {
	return WithViewer(context.Background(), "viewer")
}

// socialFixture: viewer follows A; A logged a PR workout C 1h ago, B logged workout D 2h ago.
func socialFixture() *memory.Store {
	s := memory.NewStore()
	s.AddProfile(memory.Profile{Actor: domain.Actor{ID: "viewer", DisplayName: "Vera Viewer"}})
	s.AddProfile(memory.Profile{Actor: domain.Actor{ID: "A", DisplayName: "Alex Lifter"}})
	s.AddProfile(memory.Profile{Actor: domain.Actor{ID: "B", DisplayName: "Bo Runner"}})
	s.Follow("viewer", "A", true)
	s.AddContent(domain.Content{ID: "C", OwnerID: "A", Visibility: domain.VisibilityPublic, PersonalRecord: true})
	s.AddContent(domain.Content{ID: "D", OwnerID: "B", Visibility: domain.VisibilityPublic})
	s.AddEvent(domain.Event{ID: "ev-C", ActorID: "A", ContentID: "C", Type: domain.EventContentLogged, CreatedAt: testNow.Add(-time.Hour)})
	s.AddEvent(domain.Event{ID: "ev-D", ActorID: "B", ContentID: "D", Type: domain.EventContentLogged, CreatedAt: testNow.Add(-2 * time.Hour)})
	return s
}

// chronoFixture: three unrelated public workouts logged 1h, 2h and 3h ago.
func chronoFixture() *memory.Store {
	s := memory.NewStore()
	for i := 1; i <= 3; i++ {
		contentID := fmt.Sprintf("w%d", i)
		s.AddContent(domain.Content{ID: contentID, OwnerID: "author", Visibility: domain.VisibilityPublic})
		s.AddEvent(domain.Event{
			ID:        fmt.Sprintf("e%d", i),
			ActorID:   "author",
			ContentID: contentID,
			Type:      domain.EventContentLogged,
			CreatedAt: testNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	return s
}

func snapshotIDs(s Snapshot) []string {
	ids := make([]string, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.EventID
	}
	return ids
}

func renderKeys(s Snapshot) []string {
	keys := make([]string, len(s.RenderItems))
	for i, ri := range s.RenderItems {
		keys[i] = ri.Key()
	}
	return keys
}

func requireFailure(t *testing.T, err error, code domain.ErrorKind) *Failure {
	t.Helper()
	require.Error(t, err)
	failure, ok := AsFailure(err)
	require.True(t, ok, "expected *Failure, got %T", err)
	require.Equal(t, code, failure.Code)
	return failure
}

func TestLoad_FollowedRecordRanksFirst(t *testing.T) {
	feed := newTestFeed(socialFixture())

	snap, err := feed.Load(viewerCtx(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"ev-C", "ev-D"}, snapshotIDs(snap))
	require.Equal(t, "viewer", snap.ViewerID)
	require.Equal(t, 20, snap.Limit)
	require.Equal(t, domain.ModeHide, snap.Mode)
	require.False(t, snap.HasMore)
	require.Empty(t, snap.NextCursor)
	require.Equal(t, testNow, snap.GeneratedAt)
}

func TestLoad_PlaceholderForBlockedActor(t *testing.T) {
	store := socialFixture()
	require.NoError(t, store.Block(context.Background(), domain.Block{ID: "b1", BlockerID: "viewer", BlockedID: "B"}))
	feed := newTestFeed(store)

	snap, err := feed.Load(viewerCtx(), Options{Mode: domain.ModePlaceholder})
	require.NoError(t, err)
	require.Equal(t, []string{"ev-C"}, snapshotIDs(snap))
	require.Equal(t, []string{"ev-C", "ev-D:placeholder"}, renderKeys(snap))

	ph, ok := snap.RenderItems[1].(domain.PlaceholderRender)
	require.True(t, ok)
	require.Equal(t, domain.ReasonBlockedActor, ph.Reason)
	require.Equal(t, 1, snap.Summary.Placeholders)
	require.Equal(t, 1, snap.Summary.HiddenByBlock)
}

func TestLoad_ClampsOptions(t *testing.T) {
	feed := newTestFeed(chronoFixture())

	snap, err := feed.Load(viewerCtx(), Options{Limit: 500, ScanLimit: 5})
	require.NoError(t, err)
	require.Equal(t, 40, snap.Limit)
	require.Equal(t, 40, snap.ScanLimit)

	_, err = feed.Load(viewerCtx(), Options{Mode: "loud"})
	requireFailure(t, err, domain.KindInvalidInput)
}

func TestLoad_RequiresViewer(t *testing.T) {
	feed := newTestFeed(socialFixture())

	_, err := feed.Load(context.Background(), Options{})
	failure := requireFailure(t, err, domain.KindUnauthenticated)
	require.False(t, failure.Recoverable)
	require.NotEmpty(t, failure.Message)
}

func TestLoad_UpstreamReadFailureIsRecoverable(t *testing.T) {
	for _, method := range []string{"RecentEvents", "BlockedActors", "ReportsBy"} {
		t.Run(method, func(t *testing.T) {
			store := socialFixture()
			store.Fail(method, errors.New("connection reset"))

			_, err := newTestFeed(store).Load(viewerCtx(), Options{})
			failure := requireFailure(t, err, domain.KindUpstreamRead)
			require.True(t, failure.Recoverable)
		})
	}
}

func TestLoadMore_WalksAllPages(t *testing.T) {
	feed := newTestFeed(chronoFixture())
	ctx := viewerCtx()

	snap, err := feed.Load(ctx, Options{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"e1"}, snapshotIDs(snap))
	require.True(t, snap.HasMore)
	require.Equal(t, "e1", snap.NextCursor)

	snap, err = feed.LoadMore(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, []string{"e1", "e2"}, snapshotIDs(snap))
	require.Equal(t, "e2", snap.NextCursor)

	snap, err = feed.LoadMore(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, []string{"e1", "e2", "e3"}, snapshotIDs(snap))
	require.Equal(t, []string{"e1", "e2", "e3"}, renderKeys(snap))
	require.False(t, snap.HasMore)
	require.Empty(t, snap.NextCursor)

	again, err := feed.LoadMore(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, snap, again)
}

func TestLoadMore_ResumesByTimeWhenCursorItemDropsOut(t *testing.T) {
	store := chronoFixture()
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.Load(ctx, Options{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, "e1", snap.NextCursor)

	// The cursor's workout gets archived so e1 no longer ranks, but the event still exists.
	store.AddContent(domain.Content{ID: "w1", OwnerID: "author", Visibility: domain.VisibilityPublic, Archived: true})

	snap, err = feed.LoadMore(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, []string{"e1", "e2"}, snapshotIDs(snap))
}

func TestLoadMore_FailureKeepsCurrentSnapshot(t *testing.T) {
	store := chronoFixture()
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.Load(ctx, Options{Limit: 1})
	require.NoError(t, err)

	store.RemoveEvent("e1")
	next, err := feed.LoadMore(ctx, snap)
	failure := requireFailure(t, err, domain.KindInvalidCursor)
	require.True(t, failure.Recoverable)
	require.Equal(t, snap, next)

	store.AddEvent(domain.Event{ID: "e1", ActorID: "author", ContentID: "w1", CreatedAt: testNow.Add(-time.Hour)})
	store.Fail("RecentEvents", errors.New("timeout"))
	next, err = feed.LoadMore(ctx, snap)
	requireFailure(t, err, domain.KindUpstreamRead)
	require.Equal(t, snap, next)
}

func TestLoadMore_RejectsForeignSnapshot(t *testing.T) {
	feed := newTestFeed(chronoFixture())

	snap, err := feed.Load(viewerCtx(), Options{Limit: 1})
	require.NoError(t, err)

	_, err = feed.LoadMore(WithViewer(context.Background(), "someone-else"), snap)
	requireFailure(t, err, domain.KindInvalidInput)
}

func TestRefresh_ReturnsToTopWithSameOptions(t *testing.T) {
	store := chronoFixture()
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.Load(ctx, Options{Limit: 1, Mode: domain.ModePlaceholder})
	require.NoError(t, err)
	snap, err = feed.LoadMore(ctx, snap)
	require.NoError(t, err)

	store.AddContent(domain.Content{ID: "w0", OwnerID: "author", Visibility: domain.VisibilityPublic})
	store.AddEvent(domain.Event{ID: "e0", ActorID: "author", ContentID: "w0", CreatedAt: testNow})

	fresh, err := feed.Refresh(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, []string{"e0"}, snapshotIDs(fresh))
	require.Empty(t, fresh.Cursor)
	require.Equal(t, snap.Options(), fresh.Options())
}

func TestReactToWorkout(t *testing.T) {
	store := socialFixture()
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.ReactToWorkout(ctx, ReactInput{ContentID: "D", Reaction: " Fire "}, Options{})
	require.NoError(t, err)
	d := findItem(t, snap, "ev-D")
	require.Equal(t, "fire", d.Engagement.MyReaction)
	require.Equal(t, 1, d.Engagement.Reactions)

	snap, err = feed.ReactToWorkout(ctx, ReactInput{ContentID: "D"}, Options{})
	require.NoError(t, err)
	d = findItem(t, snap, "ev-D")
	require.Empty(t, d.Engagement.MyReaction)
	require.Zero(t, d.Engagement.Reactions)

	_, err = feed.ReactToWorkout(ctx, ReactInput{ContentID: "D", Reaction: "meh"}, Options{})
	failure := requireFailure(t, err, domain.KindInvalidInput)
	require.Contains(t, failure.Message, "meh")

	_, err = feed.ReactToWorkout(ctx, ReactInput{Reaction: "like"}, Options{})
	requireFailure(t, err, domain.KindInvalidInput)

	store.Fail("UpsertReaction", errors.New("read only"))
	_, err = feed.ReactToWorkout(ctx, ReactInput{ContentID: "D", Reaction: "like"}, Options{})
	requireFailure(t, err, domain.KindUpstreamWrite)
}

func TestCommentOnWorkout(t *testing.T) {
	store := socialFixture()
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.CommentOnWorkout(ctx, CommentInput{ContentID: "D", Body: "<b>Nice</b>   pace!", ParentID: " c-0 "}, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, findItem(t, snap, "ev-D").Engagement.Comments)

	comments := store.Comments()
	require.Len(t, comments, 1)
	require.Equal(t, "Nice pace!", comments[0].Body)
	require.Equal(t, "c-0", comments[0].ParentID)
	require.Equal(t, "viewer", comments[0].UserID)
	require.Equal(t, "id-1", comments[0].ID)

	_, err = feed.CommentOnWorkout(ctx, CommentInput{ContentID: "D", Body: "<p>  </p>"}, Options{})
	requireFailure(t, err, domain.KindInvalidInput)
	require.Len(t, store.Comments(), 1)
}

func TestBlockActor(t *testing.T) {
	store := socialFixture()
	store.Follow("A", "viewer", true)
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.BlockActor(ctx, "A", Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"ev-D"}, snapshotIDs(snap))
	require.Equal(t, 1, snap.Summary.HiddenByBlock)
	require.False(t, store.IsFollowing("viewer", "A"))
	require.False(t, store.IsFollowing("A", "viewer"))

	snap, err = feed.UnblockActor(ctx, "A", Options{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ev-C", "ev-D"}, snapshotIDs(snap))
	require.False(t, store.IsFollowing("viewer", "A"))

	_, err = feed.BlockActor(ctx, "viewer", Options{})
	requireFailure(t, err, domain.KindInvalidInput)

	_, err = feed.UnblockActor(ctx, "", Options{})
	requireFailure(t, err, domain.KindInvalidInput)
}

func TestBlockActor_TargetAlreadyBlockedViewer(t *testing.T) {
	store := socialFixture()
	require.NoError(t, store.Block(context.Background(), domain.Block{ID: "b0", BlockerID: "B", BlockedID: "viewer"}))

	_, err := newTestFeed(store).BlockActor(viewerCtx(), "B", Options{})
	failure := requireFailure(t, err, domain.KindInvalidInput)
	require.Equal(t, "this member is not available", failure.Message)
}

func TestReportContent(t *testing.T) {
	store := socialFixture()
	feed := newTestFeed(store)
	ctx := viewerCtx()

	snap, err := feed.ReportContent(ctx, ReportInput{ContentID: "D", Reason: domain.ReportSpam}, Options{Mode: domain.ModePlaceholder})
	require.NoError(t, err)
	require.Equal(t, []string{"ev-C"}, snapshotIDs(snap))
	require.Equal(t, []string{"ev-C", "ev-D:placeholder"}, renderKeys(snap))
	require.Equal(t, 1, snap.Summary.HiddenByReport)

	other := WithViewer(context.Background(), "B")
	theirs, err := feed.Load(other, Options{})
	require.NoError(t, err)
	require.Contains(t, snapshotIDs(theirs), "ev-D")

	_, err = feed.ReportContent(ctx, ReportInput{}, Options{})
	requireFailure(t, err, domain.KindInvalidInput)

	_, err = feed.ReportContent(ctx, ReportInput{ActorID: "A", Reason: "boring"}, Options{})
	requireFailure(t, err, domain.KindInvalidInput)

	_, err = feed.ReportContent(ctx, ReportInput{ActorID: "viewer"}, Options{})
	requireFailure(t, err, domain.KindInvalidInput)

	store.Fail("CreateReport", errors.New("disk full"))
	_, err = feed.ReportContent(ctx, ReportInput{ActorID: "A"}, Options{})
	requireFailure(t, err, domain.KindUpstreamWrite)
}

func TestMutation_RequiresViewer(t *testing.T) {
	store := socialFixture()
	_, err := newTestFeed(store).ReactToWorkout(context.Background(), ReactInput{ContentID: "D", Reaction: "like"}, Options{})
	requireFailure(t, err, domain.KindUnauthenticated)
}

func findItem(t *testing.T, snap Snapshot, eventID string) domain.RankedItem {
	t.Helper()
	for _, item := range snap.Items {
		if item.EventID == eventID {
			return item
		}
	}
	t.Fatalf("event %s not in snapshot", eventID)
	return domain.RankedItem{}
}
