package server

import (
	"log"
	"os"
	"strings"
	"time"

	"elepad.app/backend/internal/middleware"
	"elepad.app/backend/pkg/storage"

	achievementHttp "elepad.app/backend/internal/modules/achievement/delivery/http"
	achievementRepo "elepad.app/backend/internal/modules/achievement/repository"
	achievementService "elepad.app/backend/internal/modules/achievement/service"

	attemptHttp "elepad.app/backend/internal/modules/attempt/delivery/http"
	attemptRepo "elepad.app/backend/internal/modules/attempt/repository"
	attemptService "elepad.app/backend/internal/modules/attempt/service"

	completionService "elepad.app/backend/internal/modules/completion/service"

	familyHttp "elepad.app/backend/internal/modules/family/delivery/http"
	familyRepo "elepad.app/backend/internal/modules/family/repository"
	familyService "elepad.app/backend/internal/modules/family/service"

	memoryHttp "elepad.app/backend/internal/modules/memorylib/delivery/http"
	memoryRepo "elepad.app/backend/internal/modules/memorylib/repository"
	memoryService "elepad.app/backend/internal/modules/memorylib/service"

	notiHttp "elepad.app/backend/internal/modules/notification/delivery/http"
	notifRepo "elepad.app/backend/internal/modules/notification/repository"
	notifService "elepad.app/backend/internal/modules/notification/service"

	puzzleHttp "elepad.app/backend/internal/modules/puzzle/delivery/http"
	puzzleRepo "elepad.app/backend/internal/modules/puzzle/repository"
	puzzleService "elepad.app/backend/internal/modules/puzzle/service"

	searchService "elepad.app/backend/internal/modules/search/service"

	streakHttp "elepad.app/backend/internal/modules/streak/delivery/http"
	streakRepo "elepad.app/backend/internal/modules/streak/repository"
	streakService "elepad.app/backend/internal/modules/streak/service"

	userRepo "elepad.app/backend/internal/modules/user/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)
	mediaStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Initialize Meilisearch
	meiliHost := os.Getenv("MEILISEARCH_HOST")
	if meiliHost == "" {
		meiliHost = "http://localhost:7700"
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(os.Getenv("MEILI_MASTER_KEY")))
	searchSvc := searchService.NewMemorySearchService(meiliClient)

	puzzles := puzzleRepo.NewPuzzleRepository(db)
	puzzleSvc := puzzleService.NewPuzzleService(puzzles)
	puzzleHandler := puzzleHttp.NewPuzzleHandler(puzzleSvc)

	// Notification Module
	notifications := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	attempts := attemptRepo.NewAttemptRepository(db)
	attemptSvc := attemptService.NewAttemptService(attempts, puzzles, users, redisClient)

	achievements := achievementRepo.NewAchievementRepository(db)
	achievementSvc := achievementService.NewAchievementService(achievements, attempts, puzzles)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc)

	streaks := streakRepo.NewStreakRepository(db)
	streakSvc := streakService.NewStreakService(streaks)
	streakHandler := streakHttp.NewStreakHandler(streakSvc)

	completionSvc := completionService.NewCompletionService(attemptSvc, achievementSvc, streakSvc, notificationSvc)
	attemptHandler := attemptHttp.NewAttemptHandler(attemptSvc, completionSvc)

	families := familyRepo.NewFamilyRepository(db)
	familySvc := familyService.NewFamilyService(families)
	familyHandler := familyHttp.NewFamilyHandler(familySvc)

	memories := memoryRepo.NewMemoryRepository(db)
	memorySvc := memoryService.NewMemoryService(memories, familySvc, mediaStorage, searchSvc)
	memoryHandler := memoryHttp.NewMemoryHandler(memorySvc)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/puzzles", puzzleHandler.CreatePuzzle)
			adminGroup.POST("/achievements/unlock", achievementHandler.UnlockAchievement)
		}

		// Puzzle routes
		protected.GET("/puzzles", puzzleHandler.ListPuzzles)
		protected.GET("/puzzles/:id", puzzleHandler.GetPuzzle)

		// Attempt routes
		protected.POST("/attempts", attemptHandler.StartAttempt)
		protected.GET("/attempts", attemptHandler.ListAttempts)
		protected.GET("/attempts/stats", attemptHandler.GetStats)
		protected.GET("/attempts/:id", attemptHandler.GetAttempt)
		protected.POST("/attempts/:id/complete", attemptHandler.CompleteAttempt)
		protected.GET("/leaderboard", attemptHandler.GetLeaderboard)

		// Achievement routes
		protected.GET("/achievements", achievementHandler.ListWithUnlockStatus)
		protected.GET("/achievements/progress", achievementHandler.GetProgress)
		protected.GET("/achievements/type/:gameType", achievementHandler.ListByGameType)

		// Streak routes
		protected.GET("/streaks/me", streakHandler.GetStreak)
		protected.GET("/streaks/history", streakHandler.GetHistory)

		// Family routes
		protected.POST("/family", familyHandler.CreateGroup)
		protected.POST("/family/join", familyHandler.JoinGroup)
		protected.GET("/family", familyHandler.ListGroups)
		protected.GET("/family/:id/members", familyHandler.ListMembers)

		// Memory routes
		protected.POST("/memories", memoryHandler.CreateMemory)
		protected.GET("/memories", memoryHandler.ListMemories)
		protected.GET("/memories/search", memoryHandler.SearchToken)
		protected.GET("/memories/:id", memoryHandler.GetMemory)
		protected.DELETE("/memories/:id", memoryHandler.DeleteMemory)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
