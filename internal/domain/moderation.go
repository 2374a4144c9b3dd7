package domain

import (
	"encoding/json"
	"time"
)

// ModerationMode selects how suppressed items are surfaced.
type ModerationMode string

const (
	ModeHide        ModerationMode = "hide"
	ModePlaceholder ModerationMode = "placeholder"
)

// ParseModerationMode maps user input to a mode, defaulting to hide.
func ParseModerationMode(value string) (ModerationMode, bool) {
	switch ModerationMode(value) {
	case "", ModeHide:
		return ModeHide, true
	case ModePlaceholder:
		return ModePlaceholder, true
	default:
		return ModeHide, false
	}
}

// SuppressionReason is the reason code attached to placeholders.
type SuppressionReason string

const (
	ReasonBlockedActor    SuppressionReason = "blocked_actor"
	ReasonReportedContent SuppressionReason = "reported_content"
	ReasonReportedActor   SuppressionReason = "reported_actor"
)

// ReportReason enumerates accepted report categories.
type ReportReason string

const (
	ReportSpam          ReportReason = "spam"
	ReportHarassment    ReportReason = "harassment"
	ReportInappropriate ReportReason = "inappropriate"
	ReportOther         ReportReason = "other"
)

// Valid reports whether r is a known report category.
func (r ReportReason) Valid() bool {
	switch r {
	case ReportSpam, ReportHarassment, ReportInappropriate, ReportOther:
		return true
	}
	return false
}

// Report is a self-filed report record.
type Report struct {
	ID         string
	ReporterID string
	ContentID  string
	ActorID    string
	Reason     ReportReason
	Details    string
	CreatedAt  time.Time
}

// Block is a block record between two members.
type Block struct {
	ID        string
	BlockerID string
	BlockedID string
	CreatedAt time.Time
}

// Reaction is the single reaction a member holds on a piece of content.
type Reaction struct {
	ContentID string
	UserID    string
	Kind      string
	CreatedAt time.Time
}

// ReactionKinds lists accepted reaction values.
var ReactionKinds = map[string]bool{
	"like":   true,
	"fire":   true,
	"strong": true,
	"clap":   true,
}

// Comment is a comment on a piece of content, optionally threaded.
type Comment struct {
	ID        string
	ContentID string
	UserID    string
	ParentID  string
	Body      string
	CreatedAt time.Time
}

// Decisions are the per-load moderation sets for one viewer.
type Decisions struct {
	BlockedActors   map[string]bool
	ReportedContent map[string]bool
	ReportedActors  map[string]bool
}

// NewDecisions folds a block list and self-filed reports into lookup sets.
func NewDecisions(blocked []string, reports []Report) Decisions {
	d := Decisions{
		BlockedActors:   make(map[string]bool, len(blocked)),
		ReportedContent: make(map[string]bool),
		ReportedActors:  make(map[string]bool),
	}
	for _, id := range blocked {
		d.BlockedActors[id] = true
	}
	for _, r := range reports {
		if r.ContentID != "" {
			d.ReportedContent[r.ContentID] = true
		}
		if r.ActorID != "" {
			d.ReportedActors[r.ActorID] = true
		}
	}
	return d
}

// ModerationSummary counts what the overlay removed from one page.
// The counts describe the page only and say nothing about total feed size.
type ModerationSummary struct {
	HiddenByBlock  int `json:"hiddenByBlock"`
	HiddenByReport int `json:"hiddenByReport"`
	Placeholders   int `json:"placeholders"`
}

// Add combines two summaries.
func (s ModerationSummary) Add(other ModerationSummary) ModerationSummary {
	return ModerationSummary{
		HiddenByBlock:  s.HiddenByBlock + other.HiddenByBlock,
		HiddenByReport: s.HiddenByReport + other.HiddenByReport,
		Placeholders:   s.Placeholders + other.Placeholders,
	}
}

// RenderKind discriminates render items.
type RenderKind string

const (
	RenderEvent       RenderKind = "event"
	RenderPlaceholder RenderKind = "placeholder"
)

// RenderItem is either an EventRender or a PlaceholderRender.
// The unexported method seals the set of variants to this package.
type RenderItem interface {
	Key() string
	Kind() RenderKind
	renderItem()
}

// EventRender wraps a visible ranked item.
type EventRender struct {
	Item RankedItem
}

func (e EventRender) Key() string { return e.Item.EventID }
func (e EventRender) Kind() RenderKind { return RenderEvent }
func (EventRender) renderItem() {}

// MarshalJSON emits the item with its kind tag.
func (e EventRender) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind RenderKind `json:"kind"`
		Key  string     `json:"key"`
		Item RankedItem `json:"item"`
	}{RenderEvent, e.Key(), e.Item})
}

// PlaceholderRender stands in for a suppressed item at the same list position.
type PlaceholderRender struct {
	EventID string
	Reason  SuppressionReason
	Message string
}

// PlaceholderKey builds the render key used for a suppressed event.
func PlaceholderKey(eventID string) string {
	return eventID + ":placeholder"
}

func (p PlaceholderRender) Key() string { return PlaceholderKey(p.EventID) }
func (p PlaceholderRender) Kind() RenderKind { return RenderPlaceholder }
func (PlaceholderRender) renderItem() {}

// MarshalJSON emits the placeholder with its kind tag.
func (p PlaceholderRender) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    RenderKind        `json:"kind"`
		Key     string            `json:"key"`
		EventID string            `json:"eventId"`
		Reason  SuppressionReason `json:"reason"`
		Message string            `json:"message"`
	}{RenderPlaceholder, p.Key(), p.EventID, p.Reason, p.Message})
}
