package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pantry-pal/apiserver/config"
	"github.com/pantry-pal/apiserver/internal/auth"
	"github.com/pantry-pal/apiserver/internal/db"
	"github.com/pantry-pal/apiserver/internal/handlers"
	"github.com/pantry-pal/apiserver/internal/mail"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/storage"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

// Paths that pass the browser-surface session middleware without a
// credential: registration, login and the password flows.
var (
	exemptPrefixes = []string{"/app/register", "/app/login"}
	exemptContains = []string{"/forgotPassword", "/resetPassword"}
)

// Server wraps the HTTP server, router and database client.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	client     *mongo.Client
	mailer     *mail.Dispatcher
	tls        config.TLSConfig
}

// New constructs a Server from configuration: database, repositories,
// services, credential codec, middleware instances and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	client, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	database := client.Database(cfg.Database.Name)

	userRepo := store.NewUserRepository(database)
	recipeRepo := store.NewRecipeRepository(database)
	ingredientRepo := store.NewIngredientRepository(database)

	userService := services.NewUserService(userRepo)
	recipeService := services.NewRecipeService(recipeRepo)
	ingredientService := services.NewIngredientService(ingredientRepo)

	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if secret == "" {
		_ = client.Disconnect(context.Background())
		return nil, errors.New("JWT_SECRET is required")
	}

	codec := auth.NewCodec([]byte(secret), cfg.Auth.TokenTTL)
	cookie := auth.CookieTransport{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if images != nil {
		if err := images.EnsureBucket(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure upload bucket")
		}
	}

	mailer, err := newMailer(ctx, cfg.Mail)
	if err != nil {
		log.Warn().Err(err).Msg("mail dispatch unavailable")
	}

	// One middleware instance per transport. The machine surface gates
	// individual write routes; the browser surface gates everything except
	// the exempt allow-list.
	headerSession := handlers.RequireSession(handlers.SessionOptions{
		Codec:     codec,
		Transport: auth.HeaderTransport{},
		Users:     userService,
	})
	cookieSession := handlers.RequireSession(handlers.SessionOptions{
		Codec:          codec,
		Transport:      cookie,
		Users:          userService,
		ExemptPrefixes: exemptPrefixes,
		ExemptContains: exemptContains,
	})

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.Healthz)

	deps := routeDeps{
		users:       userService,
		recipes:     recipeService,
		ingredients: ingredientService,
		codec:       codec,
		verifier:    verifier,
		cookie:      cookie,
		mailer:      mailer,
		images:      images,
	}

	// Machine-facing surface: bearer tokens, write routes individually
	// gated.
	router.Route("/api", func(r chi.Router) {
		registerRoutes(r, deps, headerSession)
	})

	// Browser-facing surface: cookie credential required everywhere except
	// the exempt paths.
	router.Route("/app", func(r chi.Router) {
		r.Use(cookieSession)
		registerRoutes(r, deps, nil)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		client:     client,
		mailer:     mailer,
		tls:        cfg.TLS,
	}, nil
}

type routeDeps struct {
	users       *services.UserService
	recipes     *services.RecipeService
	ingredients *services.IngredientService
	codec       *auth.Codec
	verifier    auth.TicketVerifier
	cookie      auth.CookieTransport
	mailer      *mail.Dispatcher
	images      storage.ImageStore
}

// registerRoutes mounts every endpoint group on the given router. A nil
// session middleware means the surface gates requests router-wide.
func registerRoutes(r chi.Router, deps routeDeps, sessionMiddleware func(http.Handler) http.Handler) {
	handlers.RegisterRouter(r, deps.users, deps.verifier)
	handlers.LoginRouter(r, deps.users, deps.codec, deps.verifier, deps.cookie)
	handlers.UserRouter(r, deps.users)
	handlers.RecipeRouter(r, deps.recipes, deps.users, sessionMiddleware)
	handlers.IngredientRouter(r, deps.ingredients, deps.users, sessionMiddleware)
	handlers.UploadRouter(r, deps.images, sessionMiddleware)

	var mailer handlers.Mailer
	if deps.mailer != nil {
		mailer = deps.mailer
	}
	handlers.AccountRouter(r, deps.users, deps.codec, mailer, sessionMiddleware)
}

func newMailer(ctx context.Context, cfg config.MailConfig) (*mail.Dispatcher, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		broker, err := mail.NewRabbitMQBroker(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mail.NewDispatcher(broker, cfg.Queue), nil
	case "pubsub":
		broker, err := mail.NewPubSubBroker(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mail.NewDispatcher(broker, cfg.Queue), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server, with TLS when configured.
func (s *Server) Start() error {
	if s.tls.Enabled {
		return s.httpServer.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.mailer != nil {
		_ = s.mailer.Close()
	}
	if s.client != nil {
		_ = s.client.Disconnect(context.Background())
	}
	return s.httpServer.Close()
}
