package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

const (
	avatarURL  = "https://api.dicebear.com/7.x/avataaars/svg?seed="
	defaultBio = "Hey there! I love events."
)

var defaultInterests = []string{"Music", "Tech", "Food"}

// Spots where url.QueryEscape output differs from encodeURIComponent.
var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes s the way the browser function of that name does.
func encodeURIComponent(s string) string {
	return uriComponentFixups.Replace(url.QueryEscape(s))
}

type SignupInput struct {
	Role         Role
	Name         string
	Email        string
	Password     string
	ProfilePhoto string
	DOB          string
	Gender       string
	Interests    []string
	OrgCategory  string
}

// UserPatch lists the profile fields a user may change. Nil fields are left alone.
type UserPatch struct {
	Name         *string
	Bio          *string
	ProfilePhoto *string
	DOB          *string
	Gender       *string
	Interests    *[]string
	IsPremium    *bool
	OrgCategory  *string
}

// Signup registers a new user and makes it the active session.
func (s *Store) Signup(ctx context.Context, in SignupInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	role := in.Role
	if role == "" {
		role = RoleParticipant
	}
	if role != RoleParticipant && role != RoleOrganizer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	interests := in.Interests
	if len(interests) == 0 {
		interests = append([]string(nil), defaultInterests...)
	}
	u := User{
		ID:           s.newID(),
		Role:         role,
		Name:         name,
		Email:        email,
		Password:     in.Password,
		Avatar:       avatarURL + encodeURIComponent(name),
		ProfilePhoto: in.ProfilePhoto,
		Bio:          defaultBio,
		DOB:          in.DOB,
		Gender:       in.Gender,
		Interests:    interests,
		Friends:      []string{},
		CreatedAt:    s.timestamp(),
	}
	if role == RoleOrganizer {
		u.OrgCategory = in.OrgCategory
	}
	users = append(users, u)

	b := &batch{}
	b.put(KeyUsers, users)
	b.put(KeyCurrentUser, u.ID)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info("user signed up", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return &u, nil
}

// Login matches email and password exactly and records the active session.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && users[i].Password == password {
			b := &batch{}
			b.put(KeyCurrentUser, users[i].ID)
			if err := s.commit(ctx, b); err != nil {
				return nil, fmt.Errorf("login: %w", err)
			}
			return &users[i], nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Logout clears the persisted session pointer.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &batch{}
	b.del(KeyCurrentUser)
	return s.commit(ctx, b)
}

// ActiveSession returns the persisted session pointer written by the last
// Signup or Login. The zero Session means nobody is logged in.
func (s *Store) ActiveSession(ctx context.Context) (Session, error) {
	raw, ok, err := s.kv.Get(ctx, KeyCurrentUser)
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", KeyCurrentUser, err)
	}
	if !ok {
		return Session{}, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return Session{}, fmt.Errorf("decode %s: %w", KeyCurrentUser, err)
	}
	return Session{UserID: id}, nil
}

// CurrentUser resolves the session against the user table.
func (s *Store) CurrentUser(ctx context.Context, sess Session) (*User, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	return s.GetUser(ctx, sess.UserID)
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	i := findUser(users, id)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &users[i], nil
}

// GetUserByEmail matches the email exactly, like Login does.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user with email %q: %w", email, ErrNotFound)
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	return s.users(ctx)
}

// UpdateUser merges patch into the session user's record.
func (s *Store) UpdateUser(ctx context.Context, sess Session, patch UserPatch) (*User, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	i := findUser(users, sess.UserID)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", sess.UserID, ErrNotFound)
	}

	u := &users[i]
	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.ProfilePhoto != nil {
		u.ProfilePhoto = *patch.ProfilePhoto
	}
	if patch.DOB != nil {
		u.DOB = *patch.DOB
	}
	if patch.Gender != nil {
		u.Gender = *patch.Gender
	}
	if patch.Interests != nil {
		u.Interests = append([]string{}, (*patch.Interests)...)
	}
	if patch.IsPremium != nil {
		u.IsPremium = *patch.IsPremium
	}
	if patch.OrgCategory != nil {
		u.OrgCategory = *patch.OrgCategory
	}

	b := &batch{}
	b.put(KeyUsers, users)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// AddFriend appends friendID to the session user's friend list. The
// reference is one-way and is not removed if the friend disappears.
func (s *Store) AddFriend(ctx context.Context, sess Session, friendID string) (*User, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	if friendID == sess.UserID {
		return nil, fmt.Errorf("%w: cannot befriend yourself", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	i := findUser(users, sess.UserID)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", sess.UserID, ErrNotFound)
	}
	if findUser(users, friendID) < 0 {
		return nil, fmt.Errorf("user %s: %w", friendID, ErrNotFound)
	}
	if contains(users[i].Friends, friendID) {
		return nil, fmt.Errorf("friend %s: %w", friendID, ErrAlreadyExists)
	}
	users[i].Friends = append(users[i].Friends, friendID)

	b := &batch{}
	b.put(KeyUsers, users)
	if err := s.commit(ctx, b); err != nil {
		return nil, fmt.Errorf("add friend: %w", err)
	}
	return &users[i], nil
}
