package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Question *QuestionHandler
	Choice   *ChoiceHandler
	Vote     *VoteHandler
}

func NewHandler(h Handlers, authService ports.AuthService, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.User.Register)
		r.Post("/login", h.Auth.Login)
	})

	r.Route("/oauth", func(r chi.Router) {
		r.Post("/callback", h.Auth.GoogleCallback)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(authService, logger))

		r.With(RequireAuth).Get("/me", h.User.GetMe)

		r.Route("/questions", func(r chi.Router) {
			r.Use(RequireAuthForWrites)

			r.Get("/", h.Question.ListQuestions)
			r.Post("/", h.Question.CreateQuestion)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Question.GetQuestion)
				r.Patch("/", h.Question.UpdateQuestion)
				r.Delete("/", h.Question.DeleteQuestion)

				r.Get("/statistics", h.Vote.Statistics)
				r.With(RequireAuth).Get("/my-vote", h.Vote.MyVote)

				r.Route("/choices", func(r chi.Router) {
					r.Get("/", h.Choice.ListChoices)
					r.Post("/", h.Choice.CreateChoices)
					r.Put("/", h.Choice.ReplaceChoices)
					r.Get("/{choiceID}", h.Choice.GetChoice)
					r.Patch("/{choiceID}", h.Choice.UpdateChoice)
					r.Delete("/{choiceID}", h.Choice.DeleteChoice)
				})
			})
		})

		r.Route("/votes", func(r chi.Router) {
			r.Use(RequireAuth)

			r.Post("/{choiceID}", h.Vote.Vote)
			r.Delete("/{choiceID}", h.Vote.Unvote)
		})
	})

	return r
}
