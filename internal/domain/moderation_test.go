package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseModerationMode(t *testing.T) {
	cases := map[string]struct {
		want ModerationMode
		ok   bool
	}{
		"":            {ModeHide, true},
		"hide":        {ModeHide, true},
		"placeholder": {ModePlaceholder, true},
		"blur":        {ModeHide, false},
	}
	for in, tc := range cases {
		got, ok := ParseModerationMode(in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseModerationMode(%q) = %q, %v", in, got, ok)
		}
	}
}

func TestNewDecisions(t *testing.T) {
	d := NewDecisions([]string{"a", ""}, []Report{{ContentID: "w1"}, {ActorID: "b"}, {ContentID: "w2", ActorID: "c"}})
	if !d.BlockedActors["a"] || d.BlockedActors[""] {
		t.Fatalf("unexpected blocked set: %v", d.BlockedActors)
	}
	if !d.ReportedContent["w1"] || !d.ReportedContent["w2"] || len(d.ReportedContent) != 2 {
		t.Fatalf("unexpected reported content: %v", d.ReportedContent)
	}
	if !d.ReportedActors["b"] || !d.ReportedActors["c"] || len(d.ReportedActors) != 2 {
		t.Fatalf("unexpected reported actors: %v", d.ReportedActors)
	}
}

func TestRenderItemJSON(t *testing.T) {
	raw, err := json.Marshal([]RenderItem{
		EventRender{Item: RankedItem{EventID: "ev-1"}},
		PlaceholderRender{EventID: "ev-2", Reason: ReasonReportedActor, Message: "hidden"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(raw)
	for _, want := range []string{`"kind":"event"`, `"key":"ev-1"`, `"kind":"placeholder"`, `"key":"ev-2:placeholder"`, `"reason":"reported_actor"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestKindOf(t *testing.T) {
	wrapped := E(KindUpstreamRead, "rank.events", errors.New("boom"))
	if KindOf(wrapped) != KindUpstreamRead {
		t.Fatalf("unexpected kind %s", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatalf("plain errors must be internal")
	}
	if KindOf(nil) != "" {
		t.Fatalf("nil error has no kind")
	}
}
