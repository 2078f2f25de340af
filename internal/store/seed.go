package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Categories offered by the event form.
var Categories = []string{"Music", "Tech", "Food", "Sports", "Art", "Networking", "Gaming", "Wellness"}

const imageBase = "https://images.unsplash.com/photo-"

func seedEvent(id, title, desc, category, date, tm, location string, lat, lng, budget float64, limit int,
	participants []string, image, organizer, organizerID, avatarSeed string, reviews ...Review) Event {
	return Event{
		ID: id, Title: title, Description: desc, Category: category,
		Date: date, Time: tm, Location: location, Lat: lat, Lng: lng,
		Budget: budget, ParticipantsLimit: limit, Participants: participants,
		Image:     imageBase + image + "?w=600&q=80",
		Organizer: organizer, OrganizerID: organizerID,
		OrganizerAvatar: avatarURL + avatarSeed,
		Reviews:         append([]Review{}, reviews...),
		Reports:         []Report{},
		Collaborators:   []string{},
	}
}

func demoEvents() []Event {
	return []Event{
		seedEvent("e1", "Neon Nights Music Festival", "An electrifying outdoor music festival featuring top DJs and live performances under neon lights.",
			"Music", "2026-03-15", "20:00", "Central Park, NYC", 40.785091, -73.968285, 50, 500, []string{"u1", "u2", "u3"},
			"1492684223066-81342ee5ff30", "DJ Luna", "seed1", "Luna", Review{UserID: "u1", User: "Alex", Text: "Amazing vibes!", Rating: 5}),
		seedEvent("e2", "AI & Future Tech Summit", "Explore the latest in artificial intelligence, robotics, and emerging technologies.",
			"Tech", "2026-03-20", "09:00", "Tech Hub, SF", 37.7749, -122.4194, 100, 200, []string{"u1"},
			"1540575467063-178a50c2df87", "TechCorp", "seed2", "TechCorp", Review{UserID: "u2", User: "Sam", Text: "Very insightful talks.", Rating: 4}),
		seedEvent("e3", "Street Food Carnival", "Taste dishes from 30+ vendors from around the world in one epic food fest.",
			"Food", "2026-04-01", "12:00", "Brooklyn Bridge Park", 40.7024, -73.9969, 25, 1000, []string{"u2", "u3"},
			"1501281668745-f7f57925c3b4", "FoodieClub", "seed3", "Foodie"),
		seedEvent("e4", "Sunset Yoga Retreat", "Relax and rejuvenate with a beachside yoga session during golden hour.",
			"Wellness", "2026-03-25", "17:30", "Santa Monica Beach", 34.0195, -118.4912, 15, 50, []string{},
			"1511795409834-ef04bbd61622", "ZenMaster", "seed4", "Zen", Review{UserID: "u3", User: "Mia", Text: "So peaceful!", Rating: 5}),
		seedEvent("e5", "Urban Art Exhibition", "Discover stunning street art and graffiti from local and international artists.",
			"Art", "2026-04-05", "14:00", "Wynwood Walls, Miami", 25.7617, -80.1918, 10, 300, []string{"u1", "u2"},
			"1505236858219-8359eb29e329", "ArtCollective", "seed5", "Art"),
		seedEvent("e6", "EDM Beach Party", "Dance the night away on the sand with world-class electronic music.",
			"Music", "2026-04-10", "21:00", "Venice Beach, LA", 33.985, -118.4695, 40, 800, []string{"u3"},
			"1533174072545-7a4b6ad7a6c3", "BeatDrop", "seed6", "Beat", Review{UserID: "u1", User: "Jake", Text: "Best party ever!", Rating: 5}),
		seedEvent("e7", "Startup Networking Mixer", "Connect with founders, investors, and innovators in a casual evening setting.",
			"Networking", "2026-03-28", "18:00", "WeWork, Austin", 30.2672, -97.7431, 0, 100, []string{},
			"1514525253161-7a4b6ad7a6c3", "StartupHub", "seed7", "Startup"),
		seedEvent("e8", "Retro Gaming Tournament", "Compete in classic arcade and console games for glory and prizes.",
			"Gaming", "2026-04-12", "15:00", "GameZone, Chicago", 41.8781, -87.6298, 20, 64, []string{"u1"},
			"1459749411175-04bf5292ceea", "PixelKing", "seed8", "Pixel", Review{UserID: "u2", User: "Chris", Text: "Nostalgia overload!", Rating: 4}),
	}
}

func demoNotifications() []Notification {
	return []Notification{
		{ID: "n1", Type: NotificationJoin, Title: "New Joiner!", Description: "Alex joined your Neon Nights event", Time: "2 min ago"},
		{ID: "n2", Type: NotificationReminder, Title: "Event Tomorrow", Description: "AI & Future Tech Summit starts tomorrow at 9 AM", Time: "1 hour ago"},
		{ID: "n3", Type: NotificationTrending, Title: "Trending Near You", Description: "Street Food Carnival is trending in your area!", Time: "3 hours ago", Read: true},
		{ID: "n4", Type: NotificationMessage, Title: "New Message", Description: "DJ Luna sent you a message", Time: "5 hours ago", Read: true},
	}
}

// Seed fills the event and notification tables with the demo catalog when
// they are empty. Tables that already hold rows are left alone.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events(ctx)
	if err != nil {
		return err
	}
	notifs, err := s.notifications(ctx)
	if err != nil {
		return err
	}

	b := &batch{}
	if len(events) == 0 {
		b.put(KeyEvents, demoEvents())
	}
	if len(notifs) == 0 {
		b.put(KeyNotifications, demoNotifications())
	}
	if len(b.writes) == 0 && b.err == nil {
		return nil
	}
	if err := s.commit(ctx, b); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	s.log.Info("seeded demo data", slog.Int("tables", len(b.writes)))
	return nil
}
