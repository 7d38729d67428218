package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mememates-backend/internal/config"
	"mememates-backend/internal/handlers"
	"mememates-backend/internal/middleware"
	"mememates-backend/internal/repository"
	"mememates-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT secret not configured, using fallback secret")
		cfg.JWT.Secret = "fallback_secret"
	}

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to the session store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping Redis")
	}
	log.Info().Msg("Redis connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	memeRepo := repository.NewMemeRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	sessions := services.NewRedisSessions(redisClient)
	authService := services.NewAuthService(userRepo, sessions, cfg.JWT.Secret)
	profileService := services.NewProfileService(userRepo)
	memeService := services.NewMemeService(memeRepo)
	memeGenService := services.NewMemeGenService(cfg.Imgflip.Username, cfg.Imgflip.Password)
	anthemService := services.NewAnthemService(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	wsHub := services.NewWSHub()

	var pusher services.Pusher
	if cfg.APNs.Enabled {
		apnsPusher, err := services.NewAPNsPusher(cfg.APNs.CertFile, cfg.APNs.CertPass, cfg.APNs.Topic, cfg.APNs.Sandbox)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		pusher = apnsPusher
	}

	notificationService := services.NewNotificationService(notificationRepo, userRepo, wsHub, pusher)
	swipeService := services.NewSwipeService(swipeRepo, matchRepo, userRepo, notificationService)
	matchService := services.NewMatchService(matchRepo, messageRepo, userRepo, notificationService, wsHub)
	discoverer := services.NewRecencyDiscoverer(userRepo)

	photoService, err := services.NewPhotoService(
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo service")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService, sessions)
	memeHandler := handlers.NewMemeHandler(memeService, memeGenService)
	anthemHandler := handlers.NewAnthemHandler(anthemService)
	discoverHandler := handlers.NewDiscoverHandler(discoverer, swipeService)
	matchHandler := handlers.NewMatchHandler(matchService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, authService, matchService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/memes", memeHandler.ListMemes)
		r.Get("/memes/search", memeHandler.SearchMemes)
		r.Get("/memes/templates", memeHandler.ListTemplates)
		r.Get("/memes/{id}", memeHandler.GetMeme)
		r.Get("/anthem/search", anthemHandler.Search)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Get("/user", profileHandler.GetUser)
			r.Post("/memes", memeHandler.CreateMeme)
			r.Patch("/memes/{id}", memeHandler.UpdateMeme)
			r.Delete("/memes/{id}", memeHandler.DeleteMeme)
			r.Post("/memes/generate", memeHandler.GenerateMeme)
			r.Get("/profiles/discover", discoverHandler.Discover)
			r.Post("/swipes", discoverHandler.Swipe)
			r.Get("/matches", matchHandler.ListMatches)
			r.Get("/matches/{id}", matchHandler.GetMatch)
			r.Get("/messages", matchHandler.ListMessages)
			r.Post("/messages", matchHandler.SendMessage)
			r.Patch("/messages/{id}/read", matchHandler.MarkMessageRead)
			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkNotificationRead)
			r.Post("/photos/upload", photoHandler.RequestUpload)

			// Session-scoped routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(sessions))
				r.Post("/profile", profileHandler.UpdateProfile)
			})
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Page routes go through the gate. The backend does not render pages;
	// the gate only decides between serving and redirecting.
	r.With(middleware.PageGate(sessions)).Handle("/*", http.HandlerFunc(servePage))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// servePage acknowledges a gated page route. Static assets live behind the
// frontend's own server; this endpoint exists so the gate has something to
// allow.
func servePage(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
