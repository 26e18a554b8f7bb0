package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lingoplatform/internal/infrastructure/security"
	"lingoplatform/internal/middleware"
)

func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	contentHandler *ContentHandler,
	examHandler *ExamHandler,
	chatHandler *ChatHandler,
	paymentHandler *PaymentHandler,
	limiter *middleware.RateLimiter,
	tokens *security.TokenManager,
	allowOrigins []string,
) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = allowOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	authRequired := middleware.AuthMiddleware(tokens)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", limiter.Limit("login", 5, 1*time.Minute), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", limiter.Limit("forgot_pass", 1, 5*time.Minute), authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		user := api.Group("/user")
		user.Use(authRequired)
		{
			user.GET("/profile", userHandler.GetProfile)
			user.PUT("/profile", userHandler.UpdateProfile)
			user.PUT("/onboarding", authHandler.CompleteOnboarding)
			user.POST("/login-event", userHandler.DailyLogin)
			user.GET("/entitlements", userHandler.GetEntitlements)
		}

		api.GET("/chapters", authRequired, contentHandler.ListChapters)
		api.GET("/chapters/:id", authRequired, contentHandler.GetChapter)

		lessons := api.Group("/lessons")
		lessons.Use(authRequired)
		{
			lessons.POST("/tick", contentHandler.LessonTick)
			lessons.POST("/complete", contentHandler.CompleteLesson)
		}

		api.GET("/progress", authRequired, contentHandler.GetProgress)
		api.GET("/xp/history", authRequired, userHandler.GetXPHistory)

		exams := api.Group("/exams")
		exams.Use(authRequired)
		{
			exams.POST("/final/submit", examHandler.SubmitFinalExam)
			exams.POST("/:chapterId/submit", examHandler.SubmitChapterExam)
			exams.GET("/attempts", examHandler.ListAttempts)
		}

		chat := api.Group("/chat")
		chat.Use(authRequired)
		{
			chat.POST("/messages", limiter.Limit("chat", 20, 1*time.Minute), chatHandler.SendMessage)
			chat.GET("/messages", chatHandler.GetHistory)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/plans", paymentHandler.GetPlans)
			authed := payments.Group("")
			authed.Use(authRequired)
			{
				authed.POST("/order", paymentHandler.CreateOrder)
				authed.POST("/verify", paymentHandler.VerifyPayment)
				authed.GET("/subscription", paymentHandler.GetSubscription)
				authed.GET("/transactions", paymentHandler.GetTransactions)
			}
		}
	}

	return r
}
