package domain

import "time"

// EventType enumerates activity kinds emitted by upstream producers.
type EventType string

const (
	EventContentLogged   EventType = "content_logged"
	EventContentVerified EventType = "content_verified"
	EventPersonalRecord  EventType = "personal_record"
	EventContentShared   EventType = "content_shared"
	EventMemberJoined    EventType = "member_joined"
)

// Significant reports whether the event type itself denotes a verified or record achievement.
func (t EventType) Significant() bool {
	return t == EventContentVerified || t == EventPersonalRecord
}

// Event is an immutable activity record from the shared stream.
type Event struct {
	ID        string
	ActorID   string
	ContentID string // empty when the event type carries no content
	Type      EventType
	Caption   string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Visibility controls who may see a piece of content.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Content is the denormalized workout/content view read at ranking time.
type Content struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"ownerId"`
	GroupID        string     `json:"groupId,omitempty"`
	Title          string     `json:"title"`
	Visibility     Visibility `json:"visibility"`
	PersonalRecord bool       `json:"personalRecord"`
	Archived       bool       `json:"-"`
}

// Significant reports whether the content carries a significance flag.
func (c Content) Significant() bool {
	return c.PersonalRecord
}

// VisibleTo decides whether viewerID may see the content given the viewer's accepted follows.
func (c Content) VisibleTo(viewerID string, following map[string]bool) bool {
	if c.Archived {
		return false
	}
	if c.OwnerID == viewerID {
		return true
	}
	switch c.Visibility {
	case VisibilityPublic, "":
		return true
	case VisibilityFollowers:
		return following[c.OwnerID]
	default:
		return false
	}
}

// Actor holds display attributes of an event author.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Initials    string `json:"initials"`
	AccentColor string `json:"accentColor"`
	Fallback    bool   `json:"fallback"`
}

// InteractionKind separates reactions from comments in the raw engagement list.
type InteractionKind string

const (
	InteractionReaction InteractionKind = "reaction"
	InteractionComment  InteractionKind = "comment"
)

// Interaction is one raw engagement row.
type Interaction struct {
	ContentID string
	UserID    string
	Kind      InteractionKind
	Reaction  string
	CreatedAt time.Time
}

// Engagement is the per-content aggregate folded from interactions.
type Engagement struct {
	Reactions  int    `json:"reactions"`
	Comments   int    `json:"comments"`
	MyReaction string `json:"myReaction,omitempty"`
}

// Signals is the itemized score breakdown of a ranked item.
type Signals struct {
	Recency     float64 `json:"recency"`
	Engagement  float64 `json:"engagement"`
	Social      float64 `json:"socialBoost"`
	Affiliation float64 `json:"affiliationBoost"`
	Self        float64 `json:"selfBoost"`
	Experiment  float64 `json:"experimentBoost"`
}

// Total sums every signal.
func (s Signals) Total() float64 {
	return s.Recency + s.Engagement + s.Social + s.Affiliation + s.Self + s.Experiment
}

// RankedItem is the unit produced by the ranking engine.
type RankedItem struct {
	EventID    string         `json:"eventId"`
	EventType  EventType      `json:"eventType"`
	Caption    string         `json:"caption"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	Actor      Actor          `json:"actor"`
	Content    *Content       `json:"content,omitempty"`
	Engagement Engagement     `json:"engagement"`
	Score      float64        `json:"score"`
	Signals    Signals        `json:"signals"`
}
