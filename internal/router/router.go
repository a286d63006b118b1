package router

import (
	"context"
	"net/http"
	"time"

	"seva-health/internal/account"
	"seva-health/internal/appointments"
	"seva-health/internal/handlers"
	"seva-health/internal/logging"
	"seva-health/internal/mailer"
	"seva-health/internal/middleware"
	"seva-health/internal/repository"
	mem "seva-health/internal/repository/memory"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type Options struct {
	// Optional: MongoDB is used when set, in-memory repositories otherwise.
	DB *mongo.Database

	JWTSecret         string
	SessionTTL        time.Duration
	MinPasswordLength int
	BaseURL           string
	Mailer            mailer.Mailer
	Logger            *zap.Logger

	// BcryptCost lets tests use bcrypt.MinCost.
	BcryptCost int
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func NewRouter(opts Options) (http.Handler, error) {
	logger := logging.OrNop(opts.Logger)

	var (
		repos     account.Repositories
		directory appointments.DirectoryRepository
		apptRepo  appointments.AppointmentRepository
	)

	if opts.DB != nil {
		identities := repository.NewIdentityRepo(opts.DB)
		sessions := repository.NewSessionRepo(opts.DB)
		tokens := repository.NewRecoveryTokenRepo(opts.DB)
		profiles := repository.NewProfileRepo(opts.DB)
		dir := repository.NewDirectoryRepo(opts.DB)
		appts := repository.NewAppointmentRepo(opts.DB)

		ensureIndexes(logger, map[string]indexer{
			"identities":      identities,
			"sessions":        sessions,
			"recovery_tokens": tokens,
			"doctors":         dir,
			"appointments":    appts,
		})

		repos = account.Repositories{Identities: identities, Sessions: sessions, RecoveryTokens: tokens, Profiles: profiles}
		directory, apptRepo = dir, appts
	} else {
		logger.Warn("no database configured, using in-memory repositories")
		repos = account.Repositories{
			Identities:     mem.NewIdentityRepo(),
			Sessions:       mem.NewSessionRepo(),
			RecoveryTokens: mem.NewRecoveryTokenRepo(),
			Profiles:       mem.NewProfileRepo(),
		}
		directory, apptRepo = mem.NewDirectoryRepo(), mem.NewAppointmentRepo()
	}

	accountSvc, err := account.NewService(repos, account.Options{
		JWTSecret:         opts.JWTSecret,
		SessionTTL:        opts.SessionTTL,
		MinPasswordLength: opts.MinPasswordLength,
		Mailer:            opts.Mailer,
		Logger:            logger,
		BcryptCost:        opts.BcryptCost,
	})
	if err != nil {
		return nil, err
	}

	apptSvc := appointments.NewService(directory, apptRepo, logger)
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apptSvc.SeedDefaults(seedCtx); err != nil {
		logger.Warn("failed to seed doctor directory", zap.Error(err))
	}

	accountHandler := handlers.NewAccountHandler(accountSvc, opts.BaseURL, logger)
	profileHandler := handlers.NewProfileHandler(accountSvc, logger)
	apptHandler := handlers.NewAppointmentHandler(apptSvc, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"seva-server"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/account", accountHandler.CreateIdentity)
		r.Post("/account/delete", accountHandler.DeleteIdentity)
		r.Post("/account/sessions", accountHandler.CreateSession)
		r.Post("/account/recovery", accountHandler.RequestRecovery)
		r.Put("/account/recovery", accountHandler.CompleteRecovery)
		r.Get("/account/recovery", accountHandler.RecoveryPage)

		r.Get("/specializations", apptHandler.ListSpecializations)
		r.Get("/specializations/{id}/doctors", apptHandler.ListDoctors)
		r.Get("/doctors/{id}/slots", apptHandler.Slots)

		// Protected routes (session token required)
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(accountSvc))

			r.Get("/account", accountHandler.Me)
			r.Delete("/account/sessions/current", accountHandler.DeleteCurrentSession)
			r.Post("/profiles", profileHandler.Create)
			r.Get("/profiles/me", profileHandler.GetMine)
			r.Post("/appointments", apptHandler.Book)
			r.Get("/appointments", apptHandler.List)
		})
	})

	return r, nil
}

func ensureIndexes(logger *zap.Logger, repos map[string]indexer) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for name, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}
