package store

// Role distinguishes attendees from event organizers.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
)

// User is a registered account. Password is stored and compared as given.
type User struct {
	ID           string   `json:"id"`
	Role         Role     `json:"role"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Avatar       string   `json:"avatar"`
	ProfilePhoto string   `json:"profilePhoto,omitempty"`
	Bio          string   `json:"bio"`
	DOB          string   `json:"dob,omitempty"`
	Gender       string   `json:"gender,omitempty"`
	Interests    []string `json:"interests"`
	IsPremium    bool     `json:"isPremium"`
	Friends      []string `json:"friends"`
	OrgCategory  string   `json:"orgCategory,omitempty"`
	CreatedAt    string   `json:"createdAt"`
}

// DisplayAvatar prefers an uploaded photo over the generated avatar.
func (u *User) DisplayAvatar() string {
	if u.ProfilePhoto != "" {
		return u.ProfilePhoto
	}
	return u.Avatar
}

type Review struct {
	UserID string `json:"userId"`
	User   string `json:"user"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type Report struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
	Time   string `json:"time"`
}

// Event is a published or draft listing. Participants, reviews and reports
// reference users by id without any integrity check.
type Event struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Date              string   `json:"date"`
	Time              string   `json:"time"`
	Location          string   `json:"location"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	Budget            float64  `json:"budget"`
	ParticipantsLimit int      `json:"participantsLimit"`
	Participants      []string `json:"participants"`
	Image             string   `json:"image"`
	Organizer         string   `json:"organizer"`
	OrganizerID       string   `json:"organizerId"`
	OrganizerAvatar   string   `json:"organizerAvatar"`
	IsPrivate         bool     `json:"isPrivate"`
	IsDraft           bool     `json:"isDraft"`
	RequiresApproval  bool     `json:"requiresApproval"`
	Reviews           []Review `json:"reviews"`
	Reports           []Report `json:"reports"`
	Collaborators     []string `json:"collaborators"`
	CreatedAt         string   `json:"createdAt,omitempty"`
}

// IsPaid reports whether joining requires a ticket purchase.
func (e *Event) IsPaid() bool {
	return e.Budget > 0
}

func (e *Event) HasParticipant(userID string) bool {
	return contains(e.Participants, userID)
}

// SpotsLeft may go negative: the store does not cap joins unless asked to.
func (e *Event) SpotsLeft() int {
	return e.ParticipantsLimit - len(e.Participants)
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest gates entry to an approval-required event.
type JoinRequest struct {
	ID         string            `json:"id"`
	EventID    string            `json:"eventId"`
	UserID     string            `json:"userId"`
	UserName   string            `json:"userName"`
	UserAvatar string            `json:"userAvatar"`
	Status     JoinRequestStatus `json:"status"`
	CreatedAt  string            `json:"createdAt"`
}

// Ticket is proof of purchase. The event fields are a snapshot taken at
// purchase time and do not follow later edits.
type Ticket struct {
	ID            string `json:"id"`
	EventID       string `json:"eventId"`
	UserID        string `json:"userId"`
	EventTitle    string `json:"eventTitle"`
	EventDate     string `json:"eventDate"`
	EventTime     string `json:"eventTime"`
	EventLocation string `json:"eventLocation"`
	QRCode        string `json:"qrCode"`
	PurchasedAt   string `json:"purchasedAt"`
}

type NotificationType string

const (
	NotificationJoin     NotificationType = "join"
	NotificationReminder NotificationType = "reminder"
	NotificationMessage  NotificationType = "message"
	NotificationTrending NotificationType = "trending"
	NotificationApproval NotificationType = "approval"
	NotificationPayment  NotificationType = "payment"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationJoin, NotificationReminder, NotificationMessage,
		NotificationTrending, NotificationApproval, NotificationPayment:
		return true
	}
	return false
}

type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Time        string           `json:"time"`
	Read        bool             `json:"read"`
}

// Session identifies the acting user. The zero value is an anonymous caller.
type Session struct {
	UserID string
}

func (s Session) Valid() bool {
	return s.UserID != ""
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
