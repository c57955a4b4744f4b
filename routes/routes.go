package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackfest-dev/hackfest-server/handlers"
	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/models"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Hackathon    *handlers.HackathonHandler
	Team         *handlers.TeamHandler
	Project      *handlers.ProjectHandler
	Submission   *handlers.SubmissionHandler
	Notification *handlers.NotificationHandler
	Dashboard    *handlers.DashboardHandler
	Message      *handlers.MessageHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	AllowedOrigins []string
	Authenticator  *middleware.Authenticator
	RateLimiter    *middleware.RateLimiter
}

func SetupRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.CountRequests)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(opts.RateLimiter.Limit)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api", func(api chi.Router) {
		setupAPIRoutes(api, h, opts)
	})

	router.Group(func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)
		r.Get("/ws/{room}", h.WebSocket.Serve)
	})
}

func setupAPIRoutes(router chi.Router, h Handlers, opts Options) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Get("/me", h.Auth.Me)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/", h.User.List)
		r.Get("/{userID}", h.User.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Put("/{userID}", h.User.UpdateProfile)
			r.Post("/{userID}/avatar", h.User.UploadAvatar)
			r.Delete("/{userID}", h.User.Deactivate)
		})
	})

	router.Route("/hackathons", func(r chi.Router) {
		r.Get("/", h.Hackathon.List)
		r.Get("/{hackathonID}", h.Hackathon.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Post("/{hackathonID}/register", h.Hackathon.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/", h.Hackathon.Create)
			r.Put("/{hackathonID}", h.Hackathon.Update)
			r.Delete("/{hackathonID}", h.Hackathon.Delete)
			r.Post("/{hackathonID}/banner", h.Hackathon.UploadBanner)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListByHackathon)
		r.Get("/{teamID}", h.Team.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Post("/", h.Team.Create)
			r.Put("/{teamID}", h.Team.Update)
			r.Delete("/{teamID}", h.Team.Delete)
			r.Post("/{teamID}/invites", h.Team.Invite)
			r.Post("/{teamID}/invites/respond", h.Team.Respond)
			r.Delete("/{teamID}/members/{userID}", h.Team.RemoveMember)
			r.Post("/{teamID}/members/{userID}/promote", h.Team.PromoteLeader)
		})
	})

	router.Route("/projects", func(r chi.Router) {
		r.Get("/{projectID}", h.Project.GetByID)
		r.Get("/{projectID}/submission", h.Submission.GetByProject)

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Get("/", h.Project.List)
			r.Post("/", h.Project.Create)
			r.Put("/{projectID}", h.Project.Update)
			r.Delete("/{projectID}", h.Project.Delete)
			r.Post("/{projectID}/members", h.Project.AddMember)
			r.Delete("/{projectID}/members/{userID}", h.Project.RemoveMember)
			r.Patch("/{projectID}/status", h.Project.ChangeStatus)
			r.Post("/{projectID}/media", h.Project.UploadMedia)
		})
	})

	router.Route("/submissions", func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)
		r.Post("/", h.Submission.Create)
		r.Get("/{submissionID}", h.Submission.GetByID)
		r.Put("/{submissionID}", h.Submission.Update)
		r.Get("/{submissionID}/versions", h.Submission.ListVersions)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleJudge, models.RoleAdmin))
			r.Post("/{submissionID}/scores", h.Submission.Evaluate)
		})
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)
		r.Get("/", h.Notification.ListOwn)
		r.Post("/{notificationID}/read", h.Notification.MarkRead)
		r.Post("/read-all", h.Notification.MarkAllRead)
		r.Delete("/{notificationID}", h.Notification.Delete)
	})

	router.Route("/chat", func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)
		r.Get("/{room}/messages", h.Message.History)
		r.Delete("/messages/{messageID}", h.Message.Delete)
	})

	router.Group(func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)
		r.Get("/dashboard", h.Dashboard.Get)
	})
}
