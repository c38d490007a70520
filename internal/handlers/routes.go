package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/config"
	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/ratelimit"
	"github.com/yukikurage/points-api/internal/services"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Tasks        *TaskHandler
	Completion   *CompletionHandler
	Users        *UserHandler
	Content      *ContentHandler
	Notification *NotificationHandler
	Bot          *BotHandler
	Health       *HealthHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
// A nil limiter disables throttling of the engine routes.
func RegisterRoutes(r *gin.Engine, h Handlers, tasks *services.TaskService, limiter ratelimit.Limiter, rl config.RateLimitConfig, log *slog.Logger) {
	throttle := func(scope string) gin.HandlerFunc {
		if !rl.Enabled || limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(limiter, scope, rl.Limit, rl.Window, log)
	}

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", throttle("register"), h.Auth.Register)
		auth.POST("/login", throttle("login"), h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/register", middleware.RequireAdmin(), h.Auth.RegisterAdmin)
		admin.POST("/login", throttle("admin-login"), h.Auth.LoginAdmin)
		admin.POST("/logout", h.Auth.Logout)
	}

	taskRoutes := r.Group("/tasks")
	{
		taskRoutes.GET("/daily", middleware.RequireUserOrAdmin(), h.Tasks.ListDailyTasks)
		taskRoutes.GET("/once", middleware.RequireUserOrAdmin(), h.Tasks.ListOnceTasks)

		adminTasks := taskRoutes.Group("")
		adminTasks.Use(middleware.RequireAdmin())
		adminTasks.GET("", h.Tasks.ListTasks)
		adminTasks.POST("", h.Tasks.CreateTask)
		adminTasks.GET("/:id", middleware.LoadTask(tasks), h.Tasks.GetTask)
		adminTasks.PUT("/:id", middleware.LoadTask(tasks), h.Tasks.UpdateTask)
		adminTasks.DELETE("/:id", middleware.LoadTask(tasks), h.Tasks.DeleteTask)
	}

	user := r.Group("/user")
	{
		user.GET("/username/:telegramId", h.Users.UsernameByTelegramID)

		self := user.Group("")
		self.Use(middleware.RequireAuth())
		self.GET("/profile", h.Users.Profile)
		self.GET("/leaderboard", h.Users.TaskLeaderboard)
		self.GET("/overall-leaderboard", h.Users.OverallLeaderboard)
		self.POST("/mark-task", throttle("mark-task"), h.Completion.MarkTask)
		self.POST("/complete-task/:taskId", throttle("complete-task"), h.Completion.CompleteTask)
		self.POST("/reward-inviter/:referCode", throttle("reward-inviter"), h.Completion.RewardInviter)
		self.POST("/update-username", h.Users.UpdateUsername)
		self.POST("/link-twitter", h.Users.LinkTwitter)

		staff := user.Group("")
		staff.Use(middleware.RequireAdmin())
		staff.POST("/update-task-status", h.Completion.UpdateTaskStatus)
		staff.GET("/submissions", h.Completion.ListSubmissions)
		staff.GET("/all", h.Users.ListUsers)
		staff.POST("/reset-score", h.Users.ResetScores)
		staff.PUT("/update/:userId", h.Users.UpdateUser)
		staff.DELETE("/delete/:userId", h.Users.DeleteUser)
	}

	anmt := r.Group("/anmt")
	{
		anmt.GET("", middleware.RequireUserOrAdmin(), h.Content.ListAnnouncements)
		anmt.GET("/:id", middleware.RequireUserOrAdmin(), h.Content.GetAnnouncement)
		anmt.POST("", middleware.RequireAdmin(), h.Content.CreateAnnouncement)
		anmt.PUT("/:id", middleware.RequireAdmin(), h.Content.UpdateAnnouncement)
		anmt.DELETE("/:id", middleware.RequireAdmin(), h.Content.DeleteAnnouncement)
	}

	carousel := r.Group("/carousel")
	{
		carousel.GET("", h.Content.ListCarousel)
		carousel.POST("", middleware.RequireAdmin(), h.Content.AddCarouselImage)
		carousel.DELETE("/:imageId", middleware.RequireAdmin(), h.Content.RemoveCarouselImage)
	}

	api := r.Group("/api")
	{
		api.GET("/keep-alive", h.Health.KeepAlive)
		api.GET("/notifications", middleware.RequireAuth(), h.Notification.List)
		api.PUT("/mark-read/:notificationId", middleware.RequireAuth(), h.Notification.MarkRead)
		api.POST("/send-notification", middleware.RequireAdmin(), h.Notification.Send)
		api.GET("/download-ranking", middleware.RequireAdmin(), h.Users.DownloadRanking)

		bot := api.Group("/bot")
		bot.Use(middleware.RequireAdmin())
		bot.GET("/members", h.Bot.Members)
		bot.POST("/send-message", h.Bot.SendMessage)
		bot.POST("/send-message-all", h.Bot.SendMessageAll)
	}
}
