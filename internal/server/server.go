// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "samplepedia/docs" // swagger docs
	"samplepedia/internal/cache"
	"samplepedia/internal/config"
	"samplepedia/internal/database"
	"samplepedia/internal/featureflags"
	"samplepedia/internal/middleware"
	"samplepedia/internal/models"
	"samplepedia/internal/notifications"
	"samplepedia/internal/repository"
	"samplepedia/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	taskRepo         repository.TaskRepository
	solutionRepo     repository.SolutionRepository
	commentRepo      repository.CommentRepository
	notificationRepo repository.NotificationRepository
	imageRepo        repository.ImageRepository
	courseRepo       repository.CourseRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	announcer    *notifications.DiscordAnnouncer
	featureFlags *featureflags.Manager

	taskService         *service.TaskService
	solutionService     *service.SolutionService
	commentService      *service.CommentService
	notificationService *service.NotificationService
	draftService        *service.DraftService
	userService         *service.UserService
	courseService       *service.CourseService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("samplepedia-api")

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   prom,
		userRepo:         repository.NewUserRepository(db),
		taskRepo:         repository.NewTaskRepository(db),
		solutionRepo:     repository.NewSolutionRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		imageRepo:        repository.NewImageRepository(db),
		courseRepo:       repository.NewCourseRepository(db),
		featureFlags:     featureflags.NewManager(cfg.FeatureFlags),
		announcer:        notifications.NewDiscordAnnouncer(cfg),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}

	server.notificationService = service.NewNotificationService(
		server.notificationRepo, server.publishNotification)
	server.draftService = service.NewDraftService(redisClient)
	server.taskService = service.NewTaskService(
		server.taskRepo, server.imageRepo,
		server.announceTask, server.draftService.Clear)
	server.solutionService = service.NewSolutionService(
		server.solutionRepo, server.taskRepo, server.notificationService.Notify)
	server.commentService = service.NewCommentService(
		server.commentRepo, server.taskRepo, server.notificationService.Notify)
	server.userService = service.NewUserService(
		server.userRepo, server.taskRepo, server.solutionRepo)
	server.courseService = service.NewCourseService(server.courseRepo)

	return server, nil
}

// announceTask posts a new task to Discord when the flag allows it.
func (s *Server) announceTask(task *models.AnalysisTask) {
	if s.announcer == nil {
		return
	}
	if !s.featureFlags.Enabled(featureflags.DiscordNotifications, task.AuthorID) {
		return
	}
	s.announcer.AnnounceTask(task)
}

// publishNotification pushes a stored notification onto the recipient's
// pub/sub channel for live delivery.
func (s *Server) publishNotification(n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if !s.featureFlags.Enabled(featureflags.LiveNotifications, n.RecipientID) {
		return
	}

	payload, err := json.Marshal(fiber.Map{
		"type":    "notification",
		"payload": n,
	})
	if err != nil {
		middleware.Logger.Error("Failed to marshal notification for pub/sub", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.notifier.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		middleware.Logger.Error("Failed to publish notification",
			"recipient_id", n.RecipientID, "error", err)
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Samplepedia Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	// Public catalogue routes
	tasks := api.Group("/tasks")
	tasks.Get("/", s.GetTasks)
	tasks.Get("/:sha256/:id/comments", s.GetComments)
	tasks.Get("/:sha256/:id/solutions", s.GetTaskSolutions)
	tasks.Get("/:sha256/:id", s.GetTask)

	api.Get("/tags", s.GetTags)
	api.Get("/images", s.GetImages)

	// Course syllabus routes
	api.Get("/courses", s.GetCourses)
	api.Get("/courses/:id", s.GetCourseSamples)

	// Public solution routes
	solutions := api.Group("/solutions")
	solutions.Get("/", s.GetSolutions)
	solutions.Get("/:id", s.GetSolution)

	// AJAX toggles answer 401 JSON with a login redirect themselves, so they
	// stay outside the AuthRequired group.
	tasks.Post("/:sha256/:id/like", s.ToggleTaskFavorite)
	solutions.Post("/:id/like", s.ToggleSolutionLike)

	// Public profile route
	api.Get("/users/me", s.AuthRequired(), s.GetMyProfile)
	api.Get("/users/:username", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protectedTasks := protected.Group("/tasks")
	protectedTasks.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "submit_task"), s.SubmitTask)
	protectedTasks.Post("/:sha256/:id/solutions", s.CreateSolution)
	protectedTasks.Post("/:sha256/:id/comments", middleware.RateLimit(
		s.redis, 6, time.Minute, "create_comment"), s.CreateComment)
	protectedTasks.Put("/:sha256/:id", s.UpdateTask)
	protectedTasks.Delete("/:sha256/:id", s.DeleteTask)

	protectedSolutions := protected.Group("/solutions")
	protectedSolutions.Delete("/:id", s.DeleteSolution)

	comments := protected.Group("/comments")
	comments.Put("/:id", s.UpdateComment)
	// Form POST variant for older clients, alongside the REST method.
	comments.Post("/:id/delete", s.DeleteComment)
	comments.Delete("/:id", s.DeleteComment)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Get("/dropdown", s.GetNotificationDropdown)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)
	notifs.Delete("/:id", s.DeleteNotification)

	// Draft routes
	drafts := protected.Group("/drafts")
	drafts.Put("/task", s.SaveDraft)
	drafts.Get("/task", s.GetDraft)
	drafts.Delete("/task", s.ClearDraft)

	// WebSocket ticket issuance
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)

	// Websocket endpoints - protected by AuthRequired
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/notifications", s.NotificationStreamHandler())

	// Admin routes
	admin := protected.Group("/admin", s.StaffRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/users/:id/promote-staff", s.PromoteToStaff)
	admin.Post("/users/:id/demote-staff", s.DemoteFromStaff)
	admin.Post("/users/:id/grant-contributor", s.GrantContributor)
	admin.Post("/users/:id/revoke-contributor", s.RevokeContributor)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is considered required for full readiness in this app
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Samplepedia",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// StaffRequired returns middleware that rejects non-staff users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.currentUser(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if user == nil || !user.IsStaff {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Staff access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					// Delete ticket immediately (single-use)
					s.redis.Del(c.Context(), key)

					c.Locals("userID", uint(userID))
					// Sync to UserContext for logging and downstream services
					ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
					c.SetUserContext(ctx)
					return c.Next()
				}
			}
			// If ticket was provided but invalid/expired, we fail if it's a WS path
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to JWT (Bearer token or query param)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Reject token in query param for WS routes (must use ticket)
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "samplepedia-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "samplepedia-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	tokenString := parts[1]
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Samplepedia API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to Redis pub/sub if available
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close WebSocket connections gracefully
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
