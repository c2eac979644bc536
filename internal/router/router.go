package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/middleware"
)

type Deps struct {
	JWTAuth       *middleware.JWTAuth
	StudioHandler *handlers.StudioHandler
	NoteHandler   *handlers.NoteHandler
	// StudioLimiter throttles generation and upload calls per user.
	StudioLimiter *middleware.RateLimiter
	FrontendURL   string
	AIConfigured  bool
	Logger        *zap.Logger
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(d.FrontendURL))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if d.AIConfigured {
			w.Write([]byte(`{"status":"ok","ai_configured":true}`))
			return
		}
		w.Write([]byte(`{"status":"ok","ai_configured":false}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(d.JWTAuth.Middleware)

		// ──── Studio Routes ────
		r.Route("/studio", func(r chi.Router) {
			r.Post("/quiz/score", d.StudioHandler.Score)

			r.Group(func(r chi.Router) {
				r.Use(d.StudioLimiter.Middleware)
				r.Use(chimiddleware.Timeout(110 * time.Second))
				r.Post("/summary", d.StudioHandler.Summary)
				r.Post("/quiz", d.StudioHandler.Quiz)
				r.Post("/upload", d.StudioHandler.Upload)
			})
		})

		// ──── Note Routes ────
		r.Route("/notes", func(r chi.Router) {
			r.Post("/summary", d.NoteHandler.SaveSummary)
			r.Post("/quiz", d.NoteHandler.SaveQuiz)
			r.Get("/", d.NoteHandler.List)
			r.Get("/{id}", d.NoteHandler.Get)
			r.Put("/{id}/user-notes", d.NoteHandler.UpdateUserNotes)
			r.Delete("/{id}", d.NoteHandler.Delete)
		})
	})

	return r
}
