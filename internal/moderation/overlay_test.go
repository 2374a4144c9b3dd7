package moderation

import (
	"reflect"
	"testing"

	"ActivityFeed/internal/domain"
)

func item(eventID, actorID, contentID string) domain.RankedItem {
	it := domain.RankedItem{EventID: eventID, Actor: domain.Actor{ID: actorID}}
	if contentID != "" {
		it.Content = &domain.Content{ID: contentID, OwnerID: actorID}
	}
	return it
}

func keys(render []domain.RenderItem) []string {
	out := make([]string, len(render))
	for i, r := range render {
		out[i] = r.Key()
	}
	return out
}

func TestApply_HideMode(t *testing.T) {
	t.Parallel()

	page := []domain.RankedItem{item("e1", "A", "C"), item("e2", "B", "D"), item("e3", "E", "F"), item("e4", "G", "")}
	d := domain.NewDecisions([]string{"B"}, []domain.Report{
		{ContentID: "F"},
		{ActorID: "G"},
	})

	res := Apply(page, d, domain.ModeHide)
	if got := keys(res.Render); !reflect.DeepEqual(got, []string{"e1"}) {
		t.Fatalf("unexpected render keys: %v", got)
	}
	if len(res.Visible) != 1 || res.Visible[0].EventID != "e1" {
		t.Fatalf("unexpected visible items: %+v", res.Visible)
	}
	want := domain.ModerationSummary{HiddenByBlock: 1, HiddenByReport: 2}
	if res.Summary != want {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
}

func TestApply_PlaceholderModeKeepsPositions(t *testing.T) {
	t.Parallel()

	page := []domain.RankedItem{item("C-event-id", "A", "C"), item("D-event-id", "B", "D")}
	d := domain.NewDecisions([]string{"B"}, nil)

	res := Apply(page, d, domain.ModePlaceholder)
	if got := keys(res.Render); !reflect.DeepEqual(got, []string{"C-event-id", "D-event-id:placeholder"}) {
		t.Fatalf("unexpected render keys: %v", got)
	}

	switch ph := res.Render[1].(type) {
	case domain.PlaceholderRender:
		if ph.Reason != domain.ReasonBlockedActor || ph.Message == "" {
			t.Fatalf("unexpected placeholder: %+v", ph)
		}
	case domain.EventRender:
		t.Fatalf("expected placeholder, got event %s", ph.Item.EventID)
	}
	if res.Summary.Placeholders != 1 || res.Summary.HiddenByBlock != 1 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
}

func TestApply_BlockTakesPrecedenceOverReport(t *testing.T) {
	t.Parallel()

	d := domain.NewDecisions([]string{"A"}, []domain.Report{{ContentID: "C", ActorID: "A"}})
	reason, ok := Reason(item("e1", "A", "C"), d)
	if !ok || reason != domain.ReasonBlockedActor {
		t.Fatalf("unexpected reason %q", reason)
	}

	d = domain.NewDecisions(nil, []domain.Report{{ContentID: "C"}})
	if reason, _ := Reason(item("e1", "A", "C"), d); reason != domain.ReasonReportedContent {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	t.Parallel()

	page := []domain.RankedItem{item("e1", "A", "C"), item("e2", "B", "D"), item("e3", "E", "F")}
	d := domain.NewDecisions([]string{"B"}, []domain.Report{{ContentID: "F"}})

	first := Apply(page, d, domain.ModePlaceholder)
	second := Apply(first.Visible, d, domain.ModePlaceholder)
	if !reflect.DeepEqual(first.Visible, second.Visible) {
		t.Fatalf("re-applying changed the visible set: %v vs %v", first.Visible, second.Visible)
	}
	if second.Summary != (domain.ModerationSummary{}) {
		t.Fatalf("filtered page must not be suppressed again: %+v", second.Summary)
	}
}

func TestApply_NoDecisions(t *testing.T) {
	t.Parallel()

	page := []domain.RankedItem{item("e1", "A", "C")}
	res := Apply(page, domain.Decisions{}, domain.ModePlaceholder)
	if len(res.Visible) != 1 || len(res.Render) != 1 || res.Render[0].Kind() != domain.RenderEvent {
		t.Fatalf("unexpected result: %+v", res)
	}
}
