package main

import "github.com/gin-gonic/gin"

func SetupRoutes(r *gin.Engine) {

	// Public Routes
	r.POST("/signup", Signup)
	r.POST("/login", Login)
	r.POST("/logout", Logout)
	r.POST("/password/forgot", ForgotPassword)

	// Protected Routes
	authorized := r.Group("/api")
	authorized.Use(AuthMiddleware())
	{
		// PROFILE
		authorized.GET("/me", GetMe)
		authorized.PATCH("/me", UpdateMe)
		authorized.POST("/me/friends", AddFriend)
		authorized.POST("/me/premium", UpgradePremium)

		// DISCOVERY
		authorized.GET("/events", ListEvents)
		authorized.GET("/events/trending", TrendingEvents)
		authorized.GET("/events/recommended", RecommendedEvents)
		authorized.GET("/events/friends", FriendEvents)

		// EVENTS
		authorized.POST("/events", CreateEvent)
		authorized.GET("/events/drafts", ListDrafts)
		authorized.POST("/events/drafts/:id/publish", PublishDraft)
		authorized.GET("/events/:id", GetEvent)
		authorized.PATCH("/events/:id", UpdateEvent)
		authorized.DELETE("/events/:id", DeleteEvent)
		authorized.POST("/events/:id/join", JoinEvent)
		authorized.POST("/events/:id/reviews", AddReview)
		authorized.POST("/events/:id/reports", ReportEvent)

		// JOIN REQUESTS
		authorized.POST("/events/:id/requests", RequestJoin)
		authorized.GET("/events/:id/requests", ListEventRequests)
		authorized.POST("/requests/:id/decision", DecideRequest)

		// PAYMENTS & TICKETS
		authorized.POST("/events/:id/payments", StartPayment)
		authorized.GET("/payments/:id", GetPayment)
		authorized.GET("/tickets", ListTickets)
		authorized.GET("/tickets/:id", GetTicket)
		authorized.GET("/tickets/:id/qr.png", TicketQR)

		// NOTIFICATIONS
		authorized.GET("/notifications", ListNotifications)
		authorized.POST("/notifications/:id/read", MarkNotificationRead)

		// ORGANIZER
		authorized.GET("/organizer/stats", OrganizerStats)
	}
}
