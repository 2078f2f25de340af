package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type EventInput struct {
	Title             string
	Description       string
	Category          string
	Date              string
	Time              string
	Location          string
	Lat               float64
	Lng               float64
	Budget            float64
	ParticipantsLimit int
	Image             string
	IsPrivate         bool
	RequiresApproval  bool
	Collaborators     []string
}

func (in EventInput) validate() error {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"title", in.Title},
		{"description", in.Description},
		{"date", in.Date},
		{"time", in.Time},
		{"location", in.Location},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if in.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrValidation)
	}
	if in.ParticipantsLimit < 0 {
		return fmt.Errorf("%w: participants limit must not be negative", ErrValidation)
	}
	return nil
}

// EventPatch changes listing fields. Membership, reviews and reports are only
// changed through their own operations.
type EventPatch struct {
	Title             *string
	Description       *string
	Category          *string
	Date              *string
	Time              *string
	Location          *string
	Lat               *float64
	Lng               *float64
	Budget            *float64
	ParticipantsLimit *int
	Image             *string
	IsPrivate         *bool
	RequiresApproval  *bool
	Collaborators     *[]string
}

func (p EventPatch) apply(e *Event) error {
	if p.Budget != nil && *p.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrValidation)
	}
	if p.ParticipantsLimit != nil && *p.ParticipantsLimit < 0 {
		return fmt.Errorf("%w: participants limit must not be negative", ErrValidation)
	}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return fmt.Errorf("%w: title required", ErrValidation)
		}
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Lat != nil {
		e.Lat = *p.Lat
	}
	if p.Lng != nil {
		e.Lng = *p.Lng
	}
	if p.Budget != nil {
		e.Budget = *p.Budget
	}
	if p.ParticipantsLimit != nil {
		e.ParticipantsLimit = *p.ParticipantsLimit
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.IsPrivate != nil {
		e.IsPrivate = *p.IsPrivate
	}
	if p.RequiresApproval != nil {
		e.RequiresApproval = *p.RequiresApproval
	}
	if p.Collaborators != nil {
		e.Collaborators = append([]string{}, (*p.Collaborators)...)
	}
	return nil
}

// CreateEvent builds an event owned by the session user, who must be an
// organizer. Published events go to the head of the event list; drafts go
// to the draft table and stay out of every listing until published.
func (s *Store) CreateEvent(ctx context.Context, sess Session, in EventInput, asDraft bool) (*Event, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	ui := findUser(users, sess.UserID)
	if ui < 0 {
		return nil, fmt.Errorf("user %s: %w", sess.UserID, ErrNotFound)
	}
	owner := users[ui]
	if owner.Role != RoleOrganizer {
		return nil, fmt.Errorf("create event: %w: organizers only", ErrForbidden)
	}

	collaborators := append([]string{}, in.Collaborators...)
	ev := Event{
		ID:                s.newID(),
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Category:          in.Category,
		Date:              in.Date,
		Time:              in.Time,
		Location:          strings.TrimSpace(in.Location),
		Lat:               in.Lat,
		Lng:               in.Lng,
		Budget:            in.Budget,
		ParticipantsLimit: in.ParticipantsLimit,
		Participants:      []string{owner.ID},
		Image:             in.Image,
		Organizer:         owner.Name,
		OrganizerID:       owner.ID,
		OrganizerAvatar:   owner.DisplayAvatar(),
		IsPrivate:         in.IsPrivate,
		IsDraft:           asDraft,
		RequiresApproval:  in.RequiresApproval,
		Reviews:           []Review{},
		Reports:           []Report{},
		Collaborators:     collaborators,
		CreatedAt:         s.timestamp(),
	}

	key := KeyEvents
	load := s.events
	if asDraft {
		key, load = KeyDrafts, s.drafts
	}
	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	list = append([]Event{ev}, list...)

	b := &batch{}
	b.put(key, list)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("event created",
		slog.String("event_id", ev.ID),
		slog.String("organizer_id", owner.ID),
		slog.Bool("draft", asDraft),
	)
	return &ev, nil
}

// PublishDraft moves a draft to the head of the published list.
func (s *Store) PublishDraft(ctx context.Context, id string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.drafts(ctx)
	if err != nil {
		return nil, err
	}
	i := findEvent(drafts, id)
	if i < 0 {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}

	ev := drafts[i]
	ev.IsDraft = false
	drafts = append(drafts[:i], drafts[i+1:]...)
	events = append([]Event{ev}, events...)

	b := &batch{}
	b.put(KeyDrafts, drafts)
	b.put(KeyEvents, events)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("publish draft: %w", err)
	}
	return &ev, nil
}

// ListDrafts returns the organizer's unpublished events, newest first.
func (s *Store) ListDrafts(ctx context.Context, organizerID string) ([]Event, error) {
	drafts, err := s.drafts(ctx)
	if err != nil {
		return nil, err
	}
	out := []Event{}
	for _, d := range drafts {
		if d.OrganizerID == organizerID {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetEvent looks the id up in published events first, then drafts.
func (s *Store) GetEvent(ctx context.Context, id string) (*Event, error) {
	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	if i := findEvent(events, id); i >= 0 {
		return &events[i], nil
	}
	drafts, err := s.drafts(ctx)
	if err != nil {
		return nil, err
	}
	if i := findEvent(drafts, id); i >= 0 {
		return &drafts[i], nil
	}
	return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
}

// UpdateEvent applies patch to a published event or draft. Ownership is the
// caller's concern.
func (s *Store) UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range []struct {
		key  string
		load func(context.Context) ([]Event, error)
	}{{KeyEvents, s.events}, {KeyDrafts, s.drafts}} {
		list, err := t.load(ctx)
		if err != nil {
			return nil, err
		}
		i := findEvent(list, id)
		if i < 0 {
			continue
		}
		if err := patch.apply(&list[i]); err != nil {
			return nil, err
		}
		b := &batch{}
		b.put(t.key, list)
		if err := s.commit(ctx, b); err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
		return &list[i], nil
	}
	return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
}

// DeleteEvent removes a published event or draft. Join requests and tickets
// that reference it are kept.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range []struct {
		key  string
		load func(context.Context) ([]Event, error)
	}{{KeyEvents, s.events}, {KeyDrafts, s.drafts}} {
		list, err := t.load(ctx)
		if err != nil {
			return err
		}
		i := findEvent(list, id)
		if i < 0 {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		b := &batch{}
		b.put(t.key, list)
		if err := s.commit(ctx, b); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		s.log.Info("event deleted", slog.String("event_id", id))
		return nil
	}
	return fmt.Errorf("event %s: %w", id, ErrNotFound)
}

// Join adds userID to the participants of a published event. A repeat join
// returns ErrAlreadyExists and leaves the list unchanged.
func (s *Store) Join(ctx context.Context, eventID, userID string) (*Event, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	i := findEvent(events, eventID)
	if i < 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	if err := s.admit(&events[i], userID); err != nil {
		return nil, err
	}

	b := &batch{}
	b.put(KeyEvents, events)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("join event: %w", err)
	}
	return &events[i], nil
}

// admit appends userID to ev's participants, honoring the capacity policy.
func (s *Store) admit(ev *Event, userID string) error {
	if ev.HasParticipant(userID) {
		return fmt.Errorf("participant %s: %w", userID, ErrAlreadyExists)
	}
	if s.enforceCapacity && ev.ParticipantsLimit > 0 && ev.SpotsLeft() <= 0 {
		return fmt.Errorf("event %s: %w", ev.ID, ErrEventFull)
	}
	ev.Participants = append(ev.Participants, userID)
	return nil
}

// AddReview stores at most one review per user per event.
func (s *Store) AddReview(ctx context.Context, eventID string, r Review) (*Event, error) {
	if r.UserID == "" || strings.TrimSpace(r.Text) == "" {
		return nil, fmt.Errorf("%w: review needs a user and text", ErrValidation)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	i := findEvent(events, eventID)
	if i < 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	for _, existing := range events[i].Reviews {
		if existing.UserID == r.UserID {
			return nil, fmt.Errorf("review by %s: %w", r.UserID, ErrAlreadyExists)
		}
	}
	events[i].Reviews = append(events[i].Reviews, r)

	b := &batch{}
	b.put(KeyEvents, events)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}
	return &events[i], nil
}

// ReportEvent stores at most one report per user per event.
func (s *Store) ReportEvent(ctx context.Context, eventID string, r Report) (*Event, error) {
	if r.UserID == "" || strings.TrimSpace(r.Reason) == "" {
		return nil, fmt.Errorf("%w: report needs a user and reason", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events(ctx)
	if err != nil {
		return nil, err
	}
	i := findEvent(events, eventID)
	if i < 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	for _, existing := range events[i].Reports {
		if existing.UserID == r.UserID {
			return nil, fmt.Errorf("report by %s: %w", r.UserID, ErrAlreadyExists)
		}
	}
	if r.Time == "" {
		r.Time = s.timestamp()
	}
	events[i].Reports = append(events[i].Reports, r)

	b := &batch{}
	b.put(KeyEvents, events)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("report event: %w", err)
	}

	s.log.Warn("event reported", slog.String("event_id", eventID), slog.String("user_id", r.UserID))
	return &events[i], nil
}
