package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "processing"
	PaymentSucceeded  PaymentStatus = "succeeded"
	PaymentFailed     PaymentStatus = "failed"
)

// Payment is a simulated checkout. It lives only in memory: a restart loses
// in-flight payments but never a completed ticket. Settled payments are
// dropped once they are older than the payment retention.
type Payment struct {
	ID        string        `json:"id"`
	EventID   string        `json:"eventId"`
	UserID    string        `json:"userId"`
	Method    string        `json:"method"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	TicketID  string        `json:"ticketId,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	SettledAt *time.Time    `json:"settledAt,omitempty"`
}

// prunePayments drops settled payments past retention. payMu must be held.
func (s *Store) prunePayments(now time.Time) {
	for id, p := range s.payments {
		if p.SettledAt != nil && now.Sub(*p.SettledAt) > s.paymentRetention {
			delete(s.payments, id)
		}
	}
}

// StartPayment opens a processing payment for the session user. The caller
// completes it later with CompletePayment; until then the event and ticket
// tables are untouched.
func (s *Store) StartPayment(ctx context.Context, sess Session, eventID, method string) (*Payment, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.IsDraft {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	if !ev.IsPaid() {
		return nil, fmt.Errorf("%w: event is free, join it instead", ErrValidation)
	}
	if ev.RequiresApproval {
		req, err := s.JoinRequestFor(ctx, eventID, sess.UserID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if req == nil || req.Status != JoinRequestApproved {
			return nil, fmt.Errorf("purchase %s: %w", eventID, ErrNotApproved)
		}
	}
	tickets, err := s.tickets(ctx)
	if err != nil {
		return nil, err
	}
	if hasTicket(tickets, eventID, sess.UserID) {
		return nil, fmt.Errorf("ticket for %s: %w", sess.UserID, ErrAlreadyExists)
	}

	p := &Payment{
		ID:        s.newID(),
		EventID:   eventID,
		UserID:    sess.UserID,
		Method:    method,
		Amount:    ev.Budget,
		Status:    PaymentProcessing,
		CreatedAt: s.now(),
	}
	s.payMu.Lock()
	s.prunePayments(p.CreatedAt)
	s.payments[p.ID] = p
	s.payMu.Unlock()

	out := *p
	return &out, nil
}

// CompletePayment settles a processing payment through CompletePurchase.
// A failed purchase marks the payment failed and returns the error.
func (s *Store) CompletePayment(ctx context.Context, paymentID string) (*Ticket, error) {
	// held across the purchase so a payment settles exactly once
	s.payMu.Lock()
	defer s.payMu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}
	if p.Status != PaymentProcessing {
		return nil, fmt.Errorf("payment is %s: %w", p.Status, ErrInvalidTransition)
	}

	t, err := s.CompletePurchase(ctx, p.EventID, p.UserID)
	settled := s.now()
	p.SettledAt = &settled
	if err != nil {
		p.Status = PaymentFailed
		p.Error = err.Error()
		return nil, err
	}
	p.Status = PaymentSucceeded
	p.TicketID = t.ID
	return t, nil
}

func (s *Store) GetPayment(id string) (*Payment, error) {
	s.payMu.Lock()
	defer s.payMu.Unlock()
	s.prunePayments(s.now())
	p, ok := s.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, ErrNotFound)
	}
	out := *p
	return &out, nil
}
