package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventhub-backend/internal/store"
)

// -----------------------------
// Helper functions
// -----------------------------

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// storeError maps store sentinels onto HTTP statuses. Anything unknown is a
// backend failure and is logged rather than shown to the client.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNoSession), errors.Is(err, store.ErrInvalidCredentials):
		jsonError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrForbidden), errors.Is(err, store.ErrNotApproved):
		jsonError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrEventFull):
		jsonError(c, http.StatusConflict, err.Error())
	default:
		slog.Error("store failure",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("err", err),
		)
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

// getUserIDFromContext expects AuthMiddleware to set "user_id" in context.
func getUserIDFromContext(c *gin.Context) (string, bool) {
	uid := c.GetString("user_id")
	return uid, uid != ""
}

func sessionFromContext(c *gin.Context) store.Session {
	uid, _ := getUserIDFromContext(c)
	return store.Session{UserID: uid}
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// ownedEvent loads the event in :id and checks the caller organizes it.
func ownedEvent(c *gin.Context) (*store.Event, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	ev, err := Store.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	if ev.OrganizerID != userID {
		jsonError(c, http.StatusForbidden, "only the organizer can manage this event")
		return nil, false
	}
	return ev, true
}

// attendee resolves the caller and turns organizer accounts away: they host
// events, they do not attend them.
func attendee(c *gin.Context) (*store.User, bool) {
	user, err := Store.CurrentUser(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	if user.Role == store.RoleOrganizer {
		jsonError(c, http.StatusForbidden, "Organizers cannot join events")
		return nil, false
	}
	return user, true
}

// -----------------------------
// Profile
// -----------------------------

func GetMe(c *gin.Context) {
	user, err := Store.CurrentUser(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, safeUser(user))
}

func UpdateMe(c *gin.Context) {
	var body UpdateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	user, err := Store.UpdateUser(c.Request.Context(), sessionFromContext(c), store.UserPatch{
		Name:         body.Name,
		Bio:          body.Bio,
		ProfilePhoto: body.ProfilePhoto,
		DOB:          body.DOB,
		Gender:       body.Gender,
		Interests:    body.Interests,
		OrgCategory:  body.OrgCategory,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, safeUser(user))
}

func AddFriend(c *gin.Context) {
	var body AddFriendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	user, err := Store.AddFriend(c.Request.Context(), sessionFromContext(c), body.FriendID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, safeUser(user))
}

// UpgradePremium stands in for the premium checkout, which always succeeds.
func UpgradePremium(c *gin.Context) {
	premium := true
	user, err := Store.UpdateUser(c.Request.Context(), sessionFromContext(c), store.UserPatch{IsPremium: &premium})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, safeUser(user))
}

// -----------------------------
// Events
// -----------------------------

func ListEvents(c *gin.Context) {
	filter := store.EventFilter{
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		OrganizerID: c.Query("organizerId"),
	}
	if v := c.Query("maxBudget"); v != "" {
		budget, err := strconv.ParseFloat(v, 64)
		if err != nil {
			jsonError(c, http.StatusBadRequest, "invalid maxBudget")
			return
		}
		filter.MaxBudget = &budget
	}

	events, err := Store.ListEvents(c.Request.Context(), filter)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func TrendingEvents(c *gin.Context) {
	events, err := Store.Trending(c.Request.Context(), queryLimit(c, 5))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func RecommendedEvents(c *gin.Context) {
	events, err := Store.Recommended(c.Request.Context(), sessionFromContext(c), queryLimit(c, 5))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func FriendEvents(c *gin.Context) {
	activity, err := Store.FriendActivity(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func CreateEvent(c *gin.Context) {
	var body CreateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ev, err := Store.CreateEvent(c.Request.Context(), sessionFromContext(c), body.input(), body.Draft)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func ListDrafts(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	drafts, err := Store.ListDrafts(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, drafts)
}

func PublishDraft(c *gin.Context) {
	if _, ok := ownedEvent(c); !ok {
		return
	}

	ev, err := Store.PublishDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func GetEvent(c *gin.Context) {
	ev, err := Store.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	// drafts are only visible to their organizer
	if uid, _ := getUserIDFromContext(c); ev.IsDraft && ev.OrganizerID != uid {
		jsonError(c, http.StatusNotFound, "event not found")
		return
	}
	c.JSON(http.StatusOK, ev)
}

func UpdateEvent(c *gin.Context) {
	ev, ok := ownedEvent(c)
	if !ok {
		return
	}

	var body UpdateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	updated, err := Store.UpdateEvent(c.Request.Context(), ev.ID, body.patch())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func DeleteEvent(c *gin.Context) {
	ev, ok := ownedEvent(c)
	if !ok {
		return
	}

	if err := Store.DeleteEvent(c.Request.Context(), ev.ID); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// JoinEvent is the free join. Paid events go through /payments, and
// approval-gated events need an approved request first.
func JoinEvent(c *gin.Context) {
	user, ok := attendee(c)
	if !ok {
		return
	}
	userID := user.ID
	ctx := c.Request.Context()

	ev, err := Store.GetEvent(ctx, c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	if ev.IsDraft {
		jsonError(c, http.StatusNotFound, "event not found")
		return
	}
	if ev.IsPaid() {
		jsonError(c, http.StatusPaymentRequired, "paid event: start a payment instead")
		return
	}
	if ev.RequiresApproval {
		req, err := Store.JoinRequestFor(ctx, ev.ID, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			storeError(c, err)
			return
		}
		if req == nil || req.Status != store.JoinRequestApproved {
			storeError(c, store.ErrNotApproved)
			return
		}
	}

	updated, err := Store.Join(ctx, ev.ID, userID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func AddReview(c *gin.Context) {
	var body ReviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	user, err := Store.CurrentUser(ctx, sessionFromContext(c))
	if err != nil {
		storeError(c, err)
		return
	}
	ev, err := Store.GetEvent(ctx, c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	if !ev.HasParticipant(user.ID) {
		jsonError(c, http.StatusForbidden, "join the event before reviewing it")
		return
	}
	ev, err = Store.AddReview(ctx, ev.ID, store.Review{
		UserID: user.ID,
		User:   user.Name,
		Text:   body.Text,
		Rating: body.Rating,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func ReportEvent(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body ReportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ev, err := Store.ReportEvent(c.Request.Context(), c.Param("id"), store.Report{UserID: userID, Reason: body.Reason})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// -----------------------------
// Join requests
// -----------------------------

func RequestJoin(c *gin.Context) {
	user, ok := attendee(c)
	if !ok {
		return
	}

	req, err := Store.RequestJoin(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func ListEventRequests(c *gin.Context) {
	ev, ok := ownedEvent(c)
	if !ok {
		return
	}

	reqs, err := Store.ListJoinRequests(c.Request.Context(), ev.ID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func DecideRequest(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body DecisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	req, err := Store.GetJoinRequest(ctx, c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	ev, err := Store.GetEvent(ctx, req.EventID)
	if err != nil {
		storeError(c, err)
		return
	}
	if ev.OrganizerID != userID {
		jsonError(c, http.StatusForbidden, "only the organizer can decide join requests")
		return
	}

	decided, err := Store.Decide(ctx, req.ID, store.JoinRequestStatus(body.Status))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, decided)
}
