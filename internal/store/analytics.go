package store

import "context"

// OrganizerStats is the dashboard summary for one organizer.
type OrganizerStats struct {
	Events            int     `json:"events"`
	TotalParticipants int     `json:"totalParticipants"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TicketsRemaining  int     `json:"ticketsRemaining"`
	PendingRequests   int     `json:"pendingRequests"`
}

// OrganizerStats aggregates over the organizer's published events. Revenue
// is budget times participant count, so it includes free joins at zero and
// the organizer's own seat.
func (s *Store) OrganizerStats(ctx context.Context, organizerID string) (*OrganizerStats, error) {
	events, err := s.ListEvents(ctx, EventFilter{OrganizerID: organizerID})
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingRequests(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	st := &OrganizerStats{Events: len(events), PendingRequests: len(pending)}
	for _, e := range events {
		n := len(e.Participants)
		st.TotalParticipants += n
		st.TotalRevenue += e.Budget * float64(n)
		st.TicketsRemaining += e.SpotsLeft()
	}
	return st, nil
}
