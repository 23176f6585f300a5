package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	mw "moodwall/internal/middleware"
	"moodwall/internal/services"
	"moodwall/internal/session"
)

// Deps are the services the HTTP API is built from.
type Deps struct {
	Identity    *services.IdentityService
	Checkins    *services.CheckinService
	Support     *services.SupportService
	Wall        *services.WallService
	Dashboard   *services.DashboardService
	Admin       *services.AdminService
	Tokens      *session.Issuer
	Location    *time.Location
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(d Deps) chi.Router {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(d.Identity, d.Tokens, log)
	userHandler := NewUserHandler(d.Identity, log)
	checkinHandler := NewCheckinHandler(d.Checkins, d.Support, loc, log)
	wallHandler := NewWallHandler(d.Wall, log)
	supportHandler := NewSupportHandler(d.Support)
	dashboardHandler := NewDashboardHandler(d.Dashboard, loc)
	adminHandler := NewAdminHandler(d.Admin, loc, log)
	authMW := mw.NewAuthMiddleware(d.Tokens, d.Identity)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/moods", Moods)
		api.Post("/auth/guest", authHandler.Guest)
		api.With(authMW.OptionalSession).Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Post("/auth/signout", authHandler.Signout)
		api.Get("/wall", wallHandler.List)
		api.Get("/support", supportHandler.Get)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireSession)
			pr.Get("/me", userHandler.GetMe)
			pr.Put("/me", userHandler.UpdateMe)
			pr.Delete("/me", userHandler.DeleteMe)

			pr.Post("/checkins", checkinHandler.Create)
			pr.Get("/checkins", checkinHandler.List)
			pr.Get("/checkins/today", checkinHandler.Today)
			pr.Get("/streak", checkinHandler.Streak)
			pr.Get("/dashboard", dashboardHandler.Get)

			pr.Post("/wall/{postID}/encouragements", wallHandler.Encourage)

			pr.Get("/admin/overview", adminHandler.Overview)
		})
	})
	return r
}
