package store

import (
	"context"
	"fmt"
	"strings"
)

func (s *Store) notification(t NotificationType, title, desc string) Notification {
	return Notification{
		ID:          s.newID(),
		Type:        t,
		Title:       title,
		Description: desc,
		Time:        s.timestamp(),
	}
}

// AddNotification puts n at the head of the feed. ID and Time are filled in
// when empty.
func (s *Store) AddNotification(ctx context.Context, n Notification) (*Notification, error) {
	if !n.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrValidation, n.Type)
	}
	if strings.TrimSpace(n.Title) == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	if n.ID == "" {
		n.ID = s.newID()
	}
	if n.Time == "" {
		n.Time = s.timestamp()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notifs, err := s.notifications(ctx)
	if err != nil {
		return nil, err
	}
	notifs = append([]Notification{n}, notifs...)

	b := &batch{}
	b.put(KeyNotifications, notifs)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("add notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns the feed, most recent first.
func (s *Store) ListNotifications(ctx context.Context) ([]Notification, error) {
	return s.notifications(ctx)
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifs, err := s.notifications(ctx)
	if err != nil {
		return nil, err
	}
	for i := range notifs {
		if notifs[i].ID != id {
			continue
		}
		if notifs[i].Read {
			return &notifs[i], nil
		}
		notifs[i].Read = true
		b := &batch{}
		b.put(KeyNotifications, notifs)
		if err := s.commit(ctx, b); err != nil {
			return nil, fmt.Errorf("mark notification read: %w", err)
		}
		return &notifs[i], nil
	}
	return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
}
