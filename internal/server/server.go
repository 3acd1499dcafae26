// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	_ "hearth/docs" // swagger docs
	"hearth/internal/bootstrap"
	"hearth/internal/config"
	"hearth/internal/docstore"
	"hearth/internal/featureflags"
	"hearth/internal/middleware"
	"hearth/internal/models"
	"hearth/internal/notifications"
	"hearth/internal/repository"
	"hearth/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          docstore.Store
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	hub            *notifications.Hub
	notifier       *notifications.Notifier
	featureFlags   *featureflags.Manager

	profiles    *service.ProfileService
	forum       *service.ForumService
	moderation  *service.ModerationService
	groups      *service.GroupService
	templates   *service.TemplateService
	events      *service.EventService
	mentorships *service.MentorshipService
	feed        *service.FeedService
	insights    *service.InsightsService
}

// NewServer wires the engine services over an initialized runtime.
func NewServer(rt *bootstrap.Runtime) (*Server, error) {
	cfg := rt.Config
	cols := repository.NewCollections(rt.Store)

	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(rt.Redis, hub)
	standing := service.NewStandingService(cols, notifier, rt.Redis)

	s := &Server{
		config:         cfg,
		store:          rt.Store,
		redis:          rt.Redis,
		promMiddleware: middleware.InitMetrics("hearth-api"),
		hub:            hub,
		notifier:       notifier,
		featureFlags:   rt.Flags,
		profiles:       service.NewProfileService(cols, standing),
		forum:          service.NewForumService(cols, rt.Scanner, standing, notifier),
		moderation:     service.NewModerationService(cols),
		groups:         service.NewGroupService(cols),
		templates:      service.NewTemplateService(cols, standing),
		events:         service.NewEventService(cols, standing),
		mentorships:    service.NewMentorshipService(cols, standing, notifier),
		feed: service.NewFeedService(cols, rt.Redis, cfg.FeedLimit,
			time.Duration(cfg.FeedCacheSeconds)*time.Second),
		insights: service.NewInsightsService(cols, rt.Generator, rt.Flags,
			time.Duration(cfg.AITimeoutSeconds)*time.Second),
	}

	if ids := cfg.Moderators(); len(ids) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.profiles.GrantModerators(ctx, ids...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected responses still carry CORS headers.
	origins := strings.Join(s.config.Origins(), ",")
	if origins == "" {
		origins = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Hearth Metrics Dashboard"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/ws", middleware.WebSocketAuthRequired, s.WebsocketHandler())

	protected := api.Group("", middleware.AuthRequired)
	protected.Get("/feature-flags", s.GetFeatureFlags)
	protected.Get("/feed", s.GetFeed)
	protected.Get("/leaderboard", s.GetLeaderboard)

	profiles := protected.Group("/profiles")
	profiles.Post("/me", s.CreateMyProfile)
	profiles.Get("/me", s.GetMyProfile)
	profiles.Put("/me", s.UpdateMyProfile)
	profiles.Put("/me/mentorship", s.SetMentorshipRole)
	profiles.Post("/:id/connection", s.Connect)
	profiles.Delete("/:id/connection", s.Disconnect)
	profiles.Put("/:id/moderator", s.SetModerator)
	profiles.Get("/:id", s.GetProfile)

	forum := protected.Group("/forum/topics")
	forum.Get("/", s.ListTopics)
	forum.Post("/", middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_topic"), s.CreateTopic)
	forum.Post("/:id/replies", middleware.RateLimit(s.redis, 20, time.Minute, "create_reply"), s.CreateReply)
	forum.Patch("/:id/replies/:replyId", s.EditReply)
	forum.Post("/:id/replies/:replyId/vote", s.VoteReply)
	forum.Post("/:id/vote", s.VoteTopic)
	forum.Put("/:id/pin", s.SetTopicPinned)
	forum.Put("/:id/lock", s.SetTopicLocked)
	forum.Post("/:id/summary", s.SummarizeTopic)
	forum.Patch("/:id", s.EditTopic)
	forum.Get("/:id", s.GetTopic)

	moderation := protected.Group("/moderation")
	moderation.Get("/queue", s.GetModerationQueue)
	moderation.Post("/topics/:id/replies/:replyId", s.ReviewReply)
	moderation.Post("/topics/:id", s.ReviewTopic)

	groups := protected.Group("/groups")
	groups.Get("/", s.ListGroups)
	groups.Post("/", s.CreateGroup)
	groups.Post("/:id/join", s.JoinGroup)
	groups.Post("/:id/leave", s.LeaveGroup)
	groups.Post("/:id/members", s.AddGroupMember)
	groups.Post("/:id/documents", s.UpsertDocument)
	groups.Put("/:id/documents/:docId", s.UpsertDocument)
	groups.Delete("/:id/documents/:docId", s.DeleteDocument)
	groups.Post("/:id/tasks", s.UpsertTask)
	groups.Post("/:id/tasks/:taskId/toggle", s.ToggleTask)
	groups.Put("/:id/tasks/:taskId", s.UpsertTask)
	groups.Delete("/:id/tasks/:taskId", s.DeleteTask)
	groups.Get("/:id", s.GetGroup)

	templates := protected.Group("/templates")
	templates.Get("/", s.ListTemplates)
	templates.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "submit_template"), s.SubmitTemplate)
	templates.Post("/:id/review", s.ReviewTemplate)
	templates.Post("/:id/ratings", s.RateTemplate)
	templates.Post("/:id/comments", s.CommentTemplate)
	templates.Post("/:id/use", s.UseTemplate)
	templates.Get("/:id", s.GetTemplate)

	events := protected.Group("/events")
	events.Get("/", s.ListEvents)
	events.Post("/", s.CreateEvent)
	events.Post("/:id/join", s.JoinEvent)
	events.Delete("/:id/join", s.LeaveEvent)

	challenges := protected.Group("/challenges")
	challenges.Get("/", s.ListChallenges)
	challenges.Post("/", s.CreateChallenge)
	challenges.Post("/:id/join", s.JoinChallenge)
	challenges.Delete("/:id/join", s.LeaveChallenge)
	challenges.Put("/:id/status", s.SetChallengeStatus)

	mentorships := protected.Group("/mentorships")
	mentorships.Get("/", s.ListMentorships)
	mentorships.Post("/", s.RequestMentorship)
	mentorships.Get("/suggestions", s.SuggestMentors)
	mentorships.Post("/:id/accept", s.AcceptMentorship)
	mentorships.Post("/:id/complete", s.CompleteMentorship)
	mentorships.Post("/:id/decline", s.DeclineMentorship)
	mentorships.Post("/:id/sessions", s.ScheduleSession)
	mentorships.Put("/:id/sessions/:sessionId/notes", s.SetSessionNotes)
	mentorships.Post("/:id/sessions/:sessionId/feedback", s.AddSessionFeedback)
	mentorships.Get("/:id", s.GetMentorship)

	insights := protected.Group("/insights")
	insights.Get("/topic-suggestions", s.SuggestTopics)
	insights.Get("/health", s.GetCommunityHealth)
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	// Redis is optional unless it is the primary store.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds a Fiber app with the API error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "Hearth API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithAppError(c, err)
		},
	})
}

// Start wires realtime fan-out and serves HTTP until the app shuts down.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := NewApp()
	s.app = app
	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes websocket connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
