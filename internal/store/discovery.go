package store

import (
	"context"
	"sort"
	"strings"
)

// EventFilter narrows ListEvents. Zero fields match everything; a Category of
// "All" is the same as an empty one.
type EventFilter struct {
	Category    string
	MaxBudget   *float64
	Search      string
	OrganizerID string
}

func (f EventFilter) match(e *Event) bool {
	if e.IsDraft {
		return false
	}
	if f.Category != "" && f.Category != "All" && e.Category != f.Category {
		return false
	}
	if f.MaxBudget != nil && e.Budget > *f.MaxBudget {
		return false
	}
	if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	return true
}

// ListEvents returns published events in stored order (most recently
// created first).
func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	out := []Event{}
	for i := range events {
		if f.match(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out, nil
}

// Trending returns up to n events with the most participants.
func (s *Store) Trending(ctx context.Context, n int) ([]Event, error) {
	events, err := s.ListEvents(ctx, EventFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return len(events[i].Participants) > len(events[j].Participants)
	})
	return head(events, n), nil
}

// Recommended returns up to n events whose category is one of the session
// user's interests. Anonymous callers get the first n events.
func (s *Store) Recommended(ctx context.Context, sess Session, n int) ([]Event, error) {
	events, err := s.ListEvents(ctx, EventFilter{})
	if err != nil {
		return nil, err
	}
	if !sess.Valid() {
		return head(events, n), nil
	}
	u, err := s.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	out := []Event{}
	for _, e := range events {
		if contains(u.Interests, e.Category) {
			out = append(out, e)
		}
	}
	return head(out, n), nil
}

// FriendProfile is the public face of a friend: no email, no password.
type FriendProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type FriendActivity struct {
	Friend FriendProfile `json:"friend"`
	Event  Event         `json:"event"`
}

const maxFriendActivity = 4

// FriendActivity pairs each friend of the session user with the first event
// they take part in. Friends that no longer exist or joined nothing are skipped.
func (s *Store) FriendActivity(ctx context.Context, sess Session) ([]FriendActivity, error) {
	u, err := s.CurrentUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}

	out := []FriendActivity{}
	for _, fid := range u.Friends {
		fi := findUser(users, fid)
		if fi < 0 {
			continue
		}
		for _, e := range events {
			if !e.IsDraft && e.HasParticipant(fid) {
				f := &users[fi]
				out = append(out, FriendActivity{
					Friend: FriendProfile{ID: f.ID, Name: f.Name, Avatar: f.DisplayAvatar()},
					Event:  e,
				})
				break
			}
		}
		if len(out) == maxFriendActivity {
			break
		}
	}
	return out, nil
}

func head(events []Event, n int) []Event {
	if n > 0 && len(events) > n {
		return events[:n]
	}
	return events
}
