package api

import (
	"net/http"

	"github.com/Rrens/chat-to-task/internal/agent"
	"github.com/Rrens/chat-to-task/internal/api/handler"
	customMiddleware "github.com/Rrens/chat-to-task/internal/api/middleware"
	"github.com/Rrens/chat-to-task/internal/config"
	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/Rrens/chat-to-task/internal/llm/gemini"
	"github.com/Rrens/chat-to-task/internal/llm/ollama"
	"github.com/Rrens/chat-to-task/internal/llm/openai"
	"github.com/Rrens/chat-to-task/internal/repository/postgres"
	"github.com/Rrens/chat-to-task/internal/repository/redis"
	"github.com/Rrens/chat-to-task/internal/security"
	"github.com/Rrens/chat-to-task/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Repositories
	userRepo := postgres.NewUserRepository(db.Pool)
	taskRepo := postgres.NewTaskRepository(db.Pool)
	conversationRepo := postgres.NewConversationRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)
	turnRepo := postgres.NewTurnRepository(db.Pool)

	// Rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Reasoning providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	} else {
		log.Warn().Msg("Gemini API Key is empty, skipping registration")
	}

	// Tool catalog and reasoning loop
	registry := agent.NewRegistry()
	agent.RegisterTaskTools(registry, taskRepo)
	dispatcher := agent.NewDispatcher(registry)
	loop := agent.NewLoop(dispatcher, llmRouter, cfg.Agent.MaxRounds)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	chatService := service.NewChatService(
		conversationRepo,
		messageRepo,
		turnRepo,
		loop,
		llmRouter,
		cfg.Agent.HistoryLimit,
	)
	conversationService := service.NewConversationService(conversationRepo, messageRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	conversationHandler := handler.NewConversationHandler(conversationService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health checks
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, redisClient))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/auth/me", authHandler.Me)
			r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

			r.Route("/chat", func(r chi.Router) {
				r.Post("/message", chatHandler.SendMessage)

				r.Route("/conversations", func(r chi.Router) {
					r.Get("/", conversationHandler.List)

					r.Route("/{conversationID}", func(r chi.Router) {
						r.Get("/", conversationHandler.Get)
						r.Delete("/", conversationHandler.Delete)
					})
				})
			})
		})
	})

	return r
}
