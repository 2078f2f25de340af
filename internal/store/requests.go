package store

import (
	"context"
	"fmt"
	"log/slog"
)

// RequestJoin records a pending request for userID to enter eventID. There is
// at most one request per (event, user); a second call returns
// ErrAlreadyExists whatever state the first one is in.
func (s *Store) RequestJoin(ctx context.Context, eventID, userID string) (*JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	if findEvent(events, eventID) < 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	ui := findUser(users, userID)
	if ui < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	reqs, err := s.joinRequests(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range reqs {
		if r.EventID == eventID && r.UserID == userID {
			return nil, fmt.Errorf("join request (%s): %w", r.Status, ErrAlreadyExists)
		}
	}

	req := JoinRequest{
		ID:         s.newID(),
		EventID:    eventID,
		UserID:     userID,
		UserName:   users[ui].Name,
		UserAvatar: users[ui].DisplayAvatar(),
		Status:     JoinRequestPending,
		CreatedAt:  s.timestamp(),
	}
	reqs = append(reqs, req)

	b := &batch{}
	b.put(KeyJoinRequests, reqs)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("request join: %w", err)
	}

	s.log.Info("join requested",
		slog.String("request_id", req.ID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
	return &req, nil
}

// Decide moves a pending request to approved or rejected. Approval only grants
// eligibility: the user still has to Join (free events) or CompletePurchase
// (paid events) to become a participant.
func (s *Store) Decide(ctx context.Context, requestID string, status JoinRequestStatus) (*JoinRequest, error) {
	if status != JoinRequestApproved && status != JoinRequestRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.joinRequests(ctx)
	if err != nil {
		return nil, err
	}
	i := -1
	for j := range reqs {
		if reqs[j].ID == requestID {
			i = j
			break
		}
	}
	if i < 0 {
		return nil, fmt.Errorf("join request %s: %w", requestID, ErrNotFound)
	}
	if reqs[i].Status != JoinRequestPending {
		return nil, fmt.Errorf("join request is %s: %w", reqs[i].Status, ErrInvalidTransition)
	}
	reqs[i].Status = status

	b := &batch{}
	b.put(KeyJoinRequests, reqs)
	if status == JoinRequestApproved {
		events, err := s.events(ctx)
		if err != nil {
			return nil, err
		}
		title := "your event"
		if ei := findEvent(events, reqs[i].EventID); ei >= 0 {
			title = events[ei].Title
		}
		notifs, err := s.notifications(ctx)
		if err != nil {
			return nil, err
		}
		notifs = append([]Notification{s.notification(
			NotificationApproval,
			"Request Approved",
			fmt.Sprintf("Your join request for %s was approved", title),
		)}, notifs...)
		b.put(KeyNotifications, notifs)
	}
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("decide join request: %w", err)
	}

	s.log.Info("join request decided",
		slog.String("request_id", requestID),
		slog.String("status", string(status)),
	)
	return &reqs[i], nil
}

func (s *Store) GetJoinRequest(ctx context.Context, id string) (*JoinRequest, error) {
	reqs, err := s.joinRequests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].ID == id {
			return &reqs[i], nil
		}
	}
	return nil, fmt.Errorf("join request %s: %w", id, ErrNotFound)
}

// JoinRequestFor returns the request for the (event, user) pair.
func (s *Store) JoinRequestFor(ctx context.Context, eventID, userID string) (*JoinRequest, error) {
	reqs, err := s.joinRequests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].EventID == eventID && reqs[i].UserID == userID {
			return &reqs[i], nil
		}
	}
	return nil, fmt.Errorf("join request for %s/%s: %w", eventID, userID, ErrNotFound)
}

func (s *Store) ListJoinRequests(ctx context.Context, eventID string) ([]JoinRequest, error) {
	reqs, err := s.joinRequests(ctx)
	if err != nil {
		return nil, err
	}
	out := []JoinRequest{}
	for _, r := range reqs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

// PendingRequests returns pending requests across all of an organizer's
// published events.
func (s *Store) PendingRequests(ctx context.Context, organizerID string) ([]JoinRequest, error) {
	events, err := s.ListEvents(ctx, EventFilter{OrganizerID: organizerID})
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(events))
	for _, e := range events {
		owned[e.ID] = true
	}
	reqs, err := s.joinRequests(ctx)
	if err != nil {
		return nil, err
	}
	out := []JoinRequest{}
	for _, r := range reqs {
		if owned[r.EventID] && r.Status == JoinRequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// approvedFor reports whether reqs holds an approved request for the pair.
func approvedFor(reqs []JoinRequest, eventID, userID string) bool {
	for _, r := range reqs {
		if r.EventID == eventID && r.UserID == userID {
			return r.Status == JoinRequestApproved
		}
	}
	return false
}
