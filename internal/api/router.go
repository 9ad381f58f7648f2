package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"todo_server/internal/api/handler"
	"todo_server/internal/api/middleware"
	"todo_server/internal/app/service"
	"todo_server/internal/common/security"
	"todo_server/internal/platform/metrics"
)

type Deps struct {
	UserService *service.UserService
	TodoService *service.TodoService
	Tokens      *security.TokenService
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	gate := middleware.NewGate(deps.Tokens, deps.Logger, deps.Metrics)
	userHandler := handler.NewUserHandler(deps.UserService, deps.Tokens, gate, deps.Logger, deps.Metrics)
	todoHandler := handler.NewTodoHandler(deps.TodoService, gate, deps.Logger)

	r.Route("/user", func(u chi.Router) {
		userHandler.RegisterRoutes(u)
		// Every todo route is scoped to the user in the path and guarded
		u.Route("/{user_id}/todo", todoHandler.RegisterRoutes)
	})

	return r
}
