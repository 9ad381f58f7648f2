package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todo_server/internal/api/middleware"
	"todo_server/internal/app/service"
	"todo_server/internal/common"
	"todo_server/internal/common/security"
)

// TodoHandler serves /user/{user_id}/todo. Every route is behind the gate and
// the owner is always the gate's identity.
type TodoHandler struct {
	todoService *service.TodoService
	gate        *middleware.Gate
	logger      *slog.Logger
}

func NewTodoHandler(ts *service.TodoService, gate *middleware.Gate, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todoService: ts, gate: gate, logger: logger}
}

func (h *TodoHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.gate.Guard(h.listTodos))              // GET /user/{user_id}/todo?page=0
	r.Post("/register", h.gate.Guard(h.createTodo))    // POST /user/{user_id}/todo/register
	r.Put("/{todo_id}", h.gate.Guard(h.updateTodo))    // PUT /user/{user_id}/todo/{todo_id}
	r.Delete("/{todo_id}", h.gate.Guard(h.deleteTodo)) // DELETE /user/{user_id}/todo/{todo_id}
}

func (h *TodoHandler) listTodos(w http.ResponseWriter, r *http.Request, id security.Identity) {
	var page uint64
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		p, err := strconv.ParseUint(pageStr, 10, 64)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid query parameter", "page: must be a non-negative integer")
			return
		}
		page = p
	}

	todos, err := h.todoService.ListTodos(r.Context(), id.UserID, page)
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) createTodo(w http.ResponseWriter, r *http.Request, id security.Identity) {
	var draft service.TodoDraft
	if err := decodeBody(w, r, &draft, nil); err != nil {
		respondBadPayload(w, err)
		return
	}

	todo, err := h.todoService.CreateTodo(r.Context(), id.UserID, draft)
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) updateTodo(w http.ResponseWriter, r *http.Request, id security.Identity) {
	todoID, ok := todoIDParam(r)
	if !ok {
		common.RespondWithDomainError(w, r, h.logger, common.ErrNotFound)
		return
	}

	var fields service.TodoDraft
	if err := decodeBody(w, r, &fields, nil); err != nil {
		respondBadPayload(w, err)
		return
	}

	todo, err := h.todoService.UpdateTodo(r.Context(), id.UserID, todoID, fields)
	if err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) deleteTodo(w http.ResponseWriter, r *http.Request, id security.Identity) {
	todoID, ok := todoIDParam(r)
	if !ok {
		common.RespondWithDomainError(w, r, h.logger, common.ErrNotFound)
		return
	}

	if err := h.todoService.DeleteTodo(r.Context(), id.UserID, todoID); err != nil {
		common.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
