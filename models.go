package main

import "eventhub-backend/internal/store"

// Request bodies. Binding tags are checked by gin before a handler touches
// the store.

type SignupRequest struct {
	Role         string   `json:"role" binding:"omitempty,oneof=participant organizer"`
	Name         string   `json:"name" binding:"required"`
	Email        string   `json:"email" binding:"required,email"`
	Password     string   `json:"password" binding:"required,min=6"`
	ProfilePhoto string   `json:"profilePhoto"`
	DOB          string   `json:"dob"`
	Gender       string   `json:"gender"`
	Interests    []string `json:"interests"`
	OrgCategory  string   `json:"orgCategory" binding:"required_if=Role organizer"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdateProfileRequest struct {
	Name         *string   `json:"name"`
	Bio          *string   `json:"bio"`
	ProfilePhoto *string   `json:"profilePhoto"`
	DOB          *string   `json:"dob"`
	Gender       *string   `json:"gender"`
	Interests    *[]string `json:"interests"`
	OrgCategory  *string   `json:"orgCategory"`
}

type AddFriendRequest struct {
	FriendID string `json:"friendId" binding:"required"`
}

type CreateEventRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description" binding:"required"`
	Category          string   `json:"category"`
	Date              string   `json:"date" binding:"required"`
	Time              string   `json:"time" binding:"required"`
	Location          string   `json:"location" binding:"required"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	Budget            float64  `json:"budget" binding:"min=0"`
	ParticipantsLimit int      `json:"participantsLimit" binding:"min=0"`
	Image             string   `json:"image"`
	IsPrivate         bool     `json:"isPrivate"`
	RequiresApproval  bool     `json:"requiresApproval"`
	Collaborators     []string `json:"collaborators"`
	Draft             bool     `json:"draft"`
}

func (r CreateEventRequest) input() store.EventInput {
	return store.EventInput{
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Date:              r.Date,
		Time:              r.Time,
		Location:          r.Location,
		Lat:               r.Lat,
		Lng:               r.Lng,
		Budget:            r.Budget,
		ParticipantsLimit: r.ParticipantsLimit,
		Image:             r.Image,
		IsPrivate:         r.IsPrivate,
		RequiresApproval:  r.RequiresApproval,
		Collaborators:     r.Collaborators,
	}
}

type UpdateEventRequest struct {
	Title             *string   `json:"title"`
	Description       *string   `json:"description"`
	Category          *string   `json:"category"`
	Date              *string   `json:"date"`
	Time              *string   `json:"time"`
	Location          *string   `json:"location"`
	Lat               *float64  `json:"lat"`
	Lng               *float64  `json:"lng"`
	Budget            *float64  `json:"budget" binding:"omitempty,min=0"`
	ParticipantsLimit *int      `json:"participantsLimit" binding:"omitempty,min=0"`
	Image             *string   `json:"image"`
	IsPrivate         *bool     `json:"isPrivate"`
	RequiresApproval  *bool     `json:"requiresApproval"`
	Collaborators     *[]string `json:"collaborators"`
}

func (r UpdateEventRequest) patch() store.EventPatch {
	return store.EventPatch{
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Date:              r.Date,
		Time:              r.Time,
		Location:          r.Location,
		Lat:               r.Lat,
		Lng:               r.Lng,
		Budget:            r.Budget,
		ParticipantsLimit: r.ParticipantsLimit,
		Image:             r.Image,
		IsPrivate:         r.IsPrivate,
		RequiresApproval:  r.RequiresApproval,
		Collaborators:     r.Collaborators,
	}
}

type ReviewRequest struct {
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type DecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// PaymentRequest mirrors the checkout form: card details are only required
// when paying by card.
type PaymentRequest struct {
	Method     string `json:"method" binding:"required,oneof=card apple google"`
	CardNumber string `json:"cardNumber" binding:"required_if=Method card"`
	Expiry     string `json:"expiry" binding:"required_if=Method card"`
	CVV        string `json:"cvv" binding:"required_if=Method card"`
}

// UserResponse hides the stored password.
type UserResponse struct {
	*store.User
	Password string `json:"password,omitempty"`
}

func safeUser(u *store.User) UserResponse {
	return UserResponse{User: u}
}
