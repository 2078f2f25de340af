package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
)

// QRToken is the persisted ticket token:
// EVENT-<first 8 of event id>-<first 8 of user id>-<unix millis>.
func QRToken(eventID, userID string, at time.Time) string {
	return fmt.Sprintf("EVENT-%s-%s-%d", prefix(eventID, 8), prefix(userID, 8), at.UnixMilli())
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// QRPayload is the human-facing content encoded into the displayed QR code.
type QRPayload struct {
	Name     string `json:"name"`
	Event    string `json:"event"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	TicketID string `json:"ticketId"`
}

func (t *Ticket) Payload(holder string) QRPayload {
	return QRPayload{
		Name:     holder,
		Event:    t.EventTitle,
		Date:     t.EventDate,
		Time:     t.EventTime,
		TicketID: t.ID,
	}
}

// PayloadJSON encodes the display payload for holder.
func (t *Ticket) PayloadJSON(holder string) (string, error) {
	raw, err := json.Marshal(t.Payload(holder))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Store) newTicket(ev *Event, userID string) Ticket {
	now := s.now()
	return Ticket{
		ID:            s.newID(),
		EventID:       ev.ID,
		UserID:        userID,
		EventTitle:    ev.Title,
		EventDate:     ev.Date,
		EventTime:     ev.Time,
		EventLocation: ev.Location,
		QRCode:        QRToken(ev.ID, userID, now),
		PurchasedAt:   now.UTC().Format(time.RFC3339Nano),
	}
}

func hasTicket(tickets []Ticket, eventID, userID string) bool {
	for _, t := range tickets {
		if t.EventID == eventID && t.UserID == userID {
			return true
		}
	}
	return false
}

// IssueTicket records a ticket snapshotting the event as it is now. It does
// not touch the participant list; CompletePurchase does both in one write.
func (s *Store) IssueTicket(ctx context.Context, eventID, userID string) (*Ticket, error) {
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
	tickets, err := s.tickets(ctx)
	if err != nil {
		return nil, err
	}
	if hasTicket(tickets, eventID, userID) {
		return nil, fmt.Errorf("ticket for %s: %w", userID, ErrAlreadyExists)
	}

	t := s.newTicket(&events[i], userID)
	tickets = append(tickets, t)

	b := &batch{}
	b.put(KeyTickets, tickets)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("issue ticket: %w", err)
	}
	return &t, nil
}

// CompletePurchase is the paid join: it adds userID to the participants,
// issues the ticket and posts a payment notification in one batch, so no
// reader ever sees a ticket without membership or the reverse.
func (s *Store) CompletePurchase(ctx context.Context, eventID, userID string) (*Ticket, error) {
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
	ev := &events[i]

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	if findUser(users, userID) < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if ev.RequiresApproval {
		reqs, err := s.joinRequests(ctx)
		if err != nil {
			return nil, err
		}
		if !approvedFor(reqs, eventID, userID) {
			return nil, fmt.Errorf("purchase %s: %w", eventID, ErrNotApproved)
		}
	}

	tickets, err := s.tickets(ctx)
	if err != nil {
		return nil, err
	}
	if hasTicket(tickets, eventID, userID) {
		return nil, fmt.Errorf("ticket for %s: %w", userID, ErrAlreadyExists)
	}
	if !ev.HasParticipant(userID) {
		if err := s.admit(ev, userID); err != nil {
			return nil, err
		}
	}
	t := s.newTicket(ev, userID)
	tickets = append(tickets, t)

	notifs, err := s.notifications(ctx)
	if err != nil {
		return nil, err
	}
	notifs = append([]Notification{s.notification(
		NotificationPayment,
		"Payment Successful",
		"You purchased a ticket for "+ev.Title,
	)}, notifs...)

	b := &batch{}
	b.put(KeyEvents, events)
	b.put(KeyTickets, tickets)
	b.put(KeyNotifications, notifs)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("complete purchase: %w", err)
	}

	s.log.Info("ticket purchased",
		slog.String("ticket_id", t.ID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
	return &t, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	tickets, err := s.tickets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].ID == id {
			return &tickets[i], nil
		}
	}
	return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
}

// ListTickets returns the user's tickets in purchase order.
func (s *Store) ListTickets(ctx context.Context, userID string) ([]Ticket, error) {
	tickets, err := s.tickets(ctx)
	if err != nil {
		return nil, err
	}
	out := []Ticket{}
	for _, t := range tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}
