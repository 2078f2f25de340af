package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"eventhub-backend/internal/store"
)

const qrSize = 256

// PendingPayments tracks scheduled payment completions so shutdown can wait
// for them.
var PendingPayments sync.WaitGroup

// schedulePayment settles the payment after the configured delay.
func schedulePayment(s *store.Store, paymentID string, delay time.Duration) {
	PendingPayments.Add(1)
	time.AfterFunc(delay, func() {
		defer PendingPayments.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.CompletePayment(ctx, paymentID); err != nil {
			slog.Warn("payment failed", slog.String("payment_id", paymentID), slog.Any("err", err))
		}
	})
}

// -----------------------------
// Payments
// -----------------------------

// StartPayment opens a simulated checkout for a paid event. The response is
// the processing payment; poll GET /payments/:id for the outcome.
func StartPayment(c *gin.Context) {
	user, ok := attendee(c)
	if !ok {
		return
	}

	var body PaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Please fill all payment details: "+err.Error())
		return
	}

	p, err := Store.StartPayment(c.Request.Context(), store.Session{UserID: user.ID}, c.Param("id"), body.Method)
	if err != nil {
		storeError(c, err)
		return
	}
	schedulePayment(Store, p.ID, AppConfig.PaymentDelay)
	c.JSON(http.StatusAccepted, p)
}

func GetPayment(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	p, err := Store.GetPayment(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	if p.UserID != userID {
		jsonError(c, http.StatusNotFound, "payment not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

// -----------------------------
// Tickets
// -----------------------------

func ListTickets(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	tickets, err := Store.ListTickets(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// ownedTicket loads the ticket in :id. Other users' tickets read as missing.
func ownedTicket(c *gin.Context) (*store.Ticket, bool) {
	userID, _ := getUserIDFromContext(c)
	t, err := Store.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	if t.UserID != userID {
		jsonError(c, http.StatusNotFound, "ticket not found")
		return nil, false
	}
	return t, true
}

func GetTicket(c *gin.Context) {
	t, ok := ownedTicket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// TicketQR renders the ticket's display payload as a PNG QR code.
func TicketQR(c *gin.Context) {
	t, ok := ownedTicket(c)
	if !ok {
		return
	}
	user, err := Store.CurrentUser(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		storeError(c, err)
		return
	}

	payload, err := t.PayloadJSON(user.Name)
	if err != nil {
		storeError(c, err)
		return
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		slog.Error("qr encode", slog.String("ticket_id", t.ID), slog.Any("err", err))
		jsonError(c, http.StatusInternalServerError, "could not render QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// -----------------------------
// Notifications & analytics
// -----------------------------

func ListNotifications(c *gin.Context) {
	notifs, err := Store.ListNotifications(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifs)
}

func MarkNotificationRead(c *gin.Context) {
	n, err := Store.MarkNotificationRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func OrganizerStats(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := Store.CurrentUser(ctx, sessionFromContext(c))
	if err != nil {
		storeError(c, err)
		return
	}
	if user.Role != store.RoleOrganizer {
		jsonError(c, http.StatusForbidden, "organizer account required")
		return
	}

	stats, err := Store.OrganizerStats(ctx, user.ID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
