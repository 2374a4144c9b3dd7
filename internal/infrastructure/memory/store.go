package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/ports"
)

// Profile is a stored member profile.
type Profile struct {
	Actor       domain.Actor
	HomeGroupID string
}

// Store keeps every feed table in memory. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	events    map[string]domain.Event
	contents  map[string]domain.Content
	profiles  map[string]Profile
	reactions map[string]map[string]domain.Reaction // contentID -> userID
	comments  []domain.Comment
	follows   map[string]map[string]bool // follower -> followee -> accepted
	blocks    map[string]map[string]domain.Block
	reports   []domain.Report
	toggles   map[string]bool
	failures  map[string]error
}

var _ ports.Store = (*Store)(nil)

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		events:    map[string]domain.Event{},
		contents:  map[string]domain.Content{},
		profiles:  map[string]Profile{},
		reactions: map[string]map[string]domain.Reaction{},
		follows:   map[string]map[string]bool{},
		blocks:    map[string]map[string]domain.Block{},
		toggles:   map[string]bool{},
		failures:  map[string]error{},
	}
}

// AddEvent appends an activity record.
func (s *Store) AddEvent(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
}

// RemoveEvent deletes an activity record, simulating retention or upstream deletion.
func (s *Store) RemoveEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
}

// AddContent stores a workout/content row.
func (s *Store) AddContent(c domain.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents[c.ID] = c
}

// AddProfile stores a member profile.
func (s *Store) AddProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Actor.ID] = p
}

// Follow records a follow; pending follows do not count as following.
func (s *Store) Follow(followerID, followeeID string, accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.follows[followerID] == nil {
		s.follows[followerID] = map[string]bool{}
	}
	s.follows[followerID][followeeID] = accepted
}

// SetToggle flips a feature flag.
func (s *Store) SetToggle(key string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles[key] = on
}

// Fail makes the named method return err until cleared with a nil error.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Comments returns a copy of stored comments.
func (s *Store) Comments() []domain.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Comment(nil), s.comments...)
}

// IsFollowing reports whether an accepted follow exists.
func (s *Store) IsFollowing(followerID, followeeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.follows[followerID][followeeID]
}

func (s *Store) failure(method string) error {
	return s.failures[method]
}

func (s *Store) RecentEvents(_ context.Context, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("RecentEvents"); err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) EventTime(_ context.Context, eventID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("EventTime"); err != nil {
		return time.Time{}, false, err
	}
	ev, ok := s.events[eventID]
	if !ok {
		return time.Time{}, false, nil
	}
	return ev.CreatedAt, true, nil
}

func (s *Store) ContentByIDs(_ context.Context, ids []string) (map[string]domain.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ContentByIDs"); err != nil {
		return nil, err
	}
	out := make(map[string]domain.Content, len(ids))
	for _, id := range ids {
		if c, ok := s.contents[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (s *Store) ActorsByIDs(_ context.Context, ids []string) (map[string]domain.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ActorsByIDs"); err != nil {
		return nil, err
	}
	out := make(map[string]domain.Actor, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p.Actor
		}
	}
	return out, nil
}

func (s *Store) Affiliation(_ context.Context, viewerID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("Affiliation"); err != nil {
		return "", err
	}
	return s.profiles[viewerID].HomeGroupID, nil
}

func (s *Store) Interactions(_ context.Context, contentIDs []string) ([]domain.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("Interactions"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(contentIDs))
	for _, id := range contentIDs {
		wanted[id] = true
	}
	var out []domain.Interaction
	for contentID, byUser := range s.reactions {
		if !wanted[contentID] {
			continue
		}
		for _, r := range byUser {
			out = append(out, domain.Interaction{
				ContentID: r.ContentID,
				UserID:    r.UserID,
				Kind:      domain.InteractionReaction,
				Reaction:  r.Kind,
				CreatedAt: r.CreatedAt,
			})
		}
	}
	for _, c := range s.comments {
		if !wanted[c.ContentID] {
			continue
		}
		out = append(out, domain.Interaction{
			ContentID: c.ContentID,
			UserID:    c.UserID,
			Kind:      domain.InteractionComment,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) Following(_ context.Context, viewerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("Following"); err != nil {
		return nil, err
	}
	var out []string
	for followee, accepted := range s.follows[viewerID] {
		if accepted {
			out = append(out, followee)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Enabled(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("Enabled"); err != nil {
		return false, err
	}
	return s.toggles[key], nil
}

func (s *Store) BlockedActors(_ context.Context, viewerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("BlockedActors"); err != nil {
		return nil, err
	}
	var out []string
	for blocked := range s.blocks[viewerID] {
		out = append(out, blocked)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ReportsBy(_ context.Context, viewerID string) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ReportsBy"); err != nil {
		return nil, err
	}
	var out []domain.Report
	for _, r := range s.reports {
		if r.ReporterID == viewerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) IsBlocked(_ context.Context, blockerID, blockedID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("IsBlocked"); err != nil {
		return false, err
	}
	_, ok := s.blocks[blockerID][blockedID]
	return ok, nil
}

func (s *Store) UpsertReaction(_ context.Context, r domain.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpsertReaction"); err != nil {
		return err
	}
	if s.reactions[r.ContentID] == nil {
		s.reactions[r.ContentID] = map[string]domain.Reaction{}
	}
	s.reactions[r.ContentID][r.UserID] = r
	return nil
}

func (s *Store) DeleteReaction(_ context.Context, contentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteReaction"); err != nil {
		return err
	}
	delete(s.reactions[contentID], userID)
	return nil
}

func (s *Store) CreateComment(_ context.Context, c domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateComment"); err != nil {
		return err
	}
	s.comments = append(s.comments, c)
	return nil
}

func (s *Store) Block(_ context.Context, b domain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Block"); err != nil {
		return err
	}
	if s.blocks[b.BlockerID] == nil {
		s.blocks[b.BlockerID] = map[string]domain.Block{}
	}
	s.blocks[b.BlockerID][b.BlockedID] = b
	delete(s.follows[b.BlockerID], b.BlockedID)
	delete(s.follows[b.BlockedID], b.BlockerID)
	return nil
}

func (s *Store) Unblock(_ context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Unblock"); err != nil {
		return err
	}
	delete(s.blocks[blockerID], blockedID)
	return nil
}

func (s *Store) CreateReport(_ context.Context, r domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateReport"); err != nil {
		return err
	}
	s.reports = append(s.reports, r)
	return nil
}
