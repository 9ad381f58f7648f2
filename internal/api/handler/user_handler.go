package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"todo_server/internal/api/middleware"
	"todo_server/internal/app/service"
	"todo_server/internal/common"
	"todo_server/internal/common/security"
	"todo_server/internal/domain/model"
	"todo_server/internal/platform/metrics"
)

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type UserHandler struct {
	userService *service.UserService
	tokens      TokenIssuer
	gate        *middleware.Gate
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewUserHandler(us *service.UserService, tokens TokenIssuer, gate *middleware.Gate, logger *slog.Logger, m *metrics.Metrics) *UserHandler {
	return &UserHandler{userService: us, tokens: tokens, gate: gate, logger: logger, metrics: m}
}

type LoginResponse struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.signup) // POST /user/register
	r.Post("/login", h.login)     // POST /user/login

	r.Put("/{user_id}", h.gate.Guard(h.updateUser))
	r.Delete("/{user_id}", h.gate.Guard(h.deleteUser))
}

func (h *UserHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	err := decodeBody(w, r, &req, func(r *http.Request) {
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		req.Email = r.PostFormValue("email")
	})
	if err != nil {
		respondBadPayload(w, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	err := decodeBody(w, r, &req, func(r *http.Request) {
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	})
	if err != nil {
		respondBadPayload(w, err)
		return
	}

	user, err := h.userService.Login(r.Context(), req)
	h.metrics.RecordLogin(loginOutcome(err))
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, LoginResponse{User: user, AccessToken: token})
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.LoginSuccess
	case common.IsAuthKind(err, common.AuthTooManyAttempts):
		return metrics.LoginLocked
	case common.IsAuthKind(err, common.AuthUserNotFound):
		return metrics.LoginUnknownUser
	case common.IsAuthKind(err, common.AuthBadCredentials):
		return metrics.LoginBadCredentials
	default:
		return metrics.LoginError
	}
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request, id security.Identity) {
	var req service.UpdateUserRequest
	err := decodeBody(w, r, &req, func(r *http.Request) {
		req.Password = r.PostFormValue("password")
		req.Email = r.PostFormValue("email")
	})
	if err != nil {
		respondBadPayload(w, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id.UserID, req)
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request, id security.Identity) {
	if err := h.userService.DeleteUser(r.Context(), id.UserID); err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
