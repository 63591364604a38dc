package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/controllers"
	"github.com/darshakvaddoriya6/youtube-backend/middleware"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	videoController := controllers.NewVideoController(db)
	viewController := controllers.NewViewController(db)
	commentController := controllers.NewCommentController(db)
	likeController := controllers.NewLikeController(db)
	subscriptionController := controllers.NewSubscriptionController(db)
	playlistController := controllers.NewPlaylistController(db)
	tweetController := controllers.NewTweetController(db)
	statsController := controllers.NewStatsController(db)
	historyController := controllers.NewHistoryController(db)
	eventsController := controllers.NewEventsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/refresh", authController.RefreshToken)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.POST("/change-password", middleware.AuthRequired(), authController.ChangePassword)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	videosGroup := api.Group("/videos")
	videosGroup.GET("", videoController.ListVideos)
	videosGroup.GET("/search", videoController.SearchVideos)
	videosGroup.GET("/:id", middleware.AuthOptional(), videoController.GetVideo)
	videosGroup.POST("", middleware.AuthRequired(), videoController.PublishVideo)
	videosGroup.PATCH("/:id", middleware.AuthRequired(), videoController.UpdateVideo)
	videosGroup.DELETE("/:id", middleware.AuthRequired(), videoController.DeleteVideo)

	// View counting. Registration is optional-auth so anonymous views count too.
	viewsGroup := api.Group("/views")
	viewsGroup.POST("/v/:videoId", middleware.AuthOptional(), viewController.AddView)
	viewsGroup.GET("/v/:videoId", middleware.AuthOptional(), viewController.GetVideoViews)
	viewsGroup.POST("/v/:videoId/sync", middleware.AuthRequired(), viewController.SyncVideoViews)
	viewsGroup.POST("/v/:videoId/reset", middleware.AuthRequired(), viewController.ResetVideoViews)
	viewsGroup.POST("/cleanup", middleware.AuthRequired(), viewController.CleanupViews)

	commentsGroup := api.Group("/comments")
	commentsGroup.GET("/video/:videoId", commentController.ListVideoComments)
	commentsGroup.POST("/video/:videoId", middleware.AuthRequired(), commentController.AddComment)
	commentsGroup.PATCH("/:commentId", middleware.AuthRequired(), commentController.UpdateComment)
	commentsGroup.DELETE("/:commentId", middleware.AuthRequired(), commentController.DeleteComment)

	likesGroup := api.Group("/likes")
	likesGroup.Use(middleware.AuthRequired())
	likesGroup.POST("/video/:videoId", likeController.ToggleVideoLike)
	likesGroup.POST("/comment/:commentId", likeController.ToggleCommentLike)
	likesGroup.POST("/tweet/:tweetId", likeController.ToggleTweetLike)
	likesGroup.GET("/videos", likeController.GetLikedVideos)

	subsGroup := api.Group("/subscriptions")
	subsGroup.POST("/channel/:channelId", middleware.AuthRequired(), subscriptionController.ToggleSubscription)
	subsGroup.GET("/channel/:channelId/subscribers", subscriptionController.ListChannelSubscribers)
	subsGroup.GET("/channels", middleware.AuthRequired(), subscriptionController.ListSubscribedChannels)

	playlistsGroup := api.Group("/playlists")
	playlistsGroup.GET("/:id", playlistController.GetPlaylist)
	playlistsGroup.POST("", middleware.AuthRequired(), playlistController.CreatePlaylist)
	playlistsGroup.PATCH("/:id", middleware.AuthRequired(), playlistController.UpdatePlaylist)
	playlistsGroup.DELETE("/:id", middleware.AuthRequired(), playlistController.DeletePlaylist)
	playlistsGroup.POST("/:id/videos/:videoId", middleware.AuthRequired(), playlistController.AddVideo)
	playlistsGroup.DELETE("/:id/videos/:videoId", middleware.AuthRequired(), playlistController.RemoveVideo)

	tweetsGroup := api.Group("/tweets")
	tweetsGroup.POST("", middleware.AuthRequired(), tweetController.CreateTweet)
	tweetsGroup.PATCH("/:tweetId", middleware.AuthRequired(), tweetController.UpdateTweet)
	tweetsGroup.DELETE("/:tweetId", middleware.AuthRequired(), tweetController.DeleteTweet)

	historyGroup := api.Group("/history")
	historyGroup.Use(middleware.AuthRequired())
	historyGroup.GET("", historyController.GetWatchHistory)
	historyGroup.POST("/v/:videoId", historyController.AddToWatchHistory)
	historyGroup.DELETE("/v/:videoId", historyController.RemoveFromWatchHistory)
	historyGroup.DELETE("", historyController.ClearWatchHistory)

	watchLaterGroup := api.Group("/watch-later")
	watchLaterGroup.Use(middleware.AuthRequired())
	watchLaterGroup.GET("", historyController.GetWatchLater)
	watchLaterGroup.POST("/v/:videoId", historyController.ToggleWatchLater)
	watchLaterGroup.DELETE("", historyController.ClearWatchLater)

	// Public channel and user resources
	api.GET("/channels/:username", middleware.AuthOptional(), authController.GetChannelProfile)
	api.GET("/users/:id/videos", videoController.ListChannelVideos)
	api.GET("/users/:id/playlists", playlistController.ListUserPlaylists)
	api.GET("/users/:id/tweets", tweetController.ListUserTweets)

	// Public stats endpoints
	api.GET("/stats", statsController.GetPlatformStats)
	api.GET("/stats/videos/:videoId", statsController.GetVideoStats)

	dashboardGroup := api.Group("/dashboard")
	dashboardGroup.Use(middleware.AuthRequired())
	dashboardGroup.GET("/stats", statsController.GetChannelStats)
	dashboardGroup.GET("/videos", statsController.GetChannelVideoStats)

	// Realtime activity over SSE
	api.GET("/events/video/:videoId", eventsController.StreamVideoEvents)

	return r
}
