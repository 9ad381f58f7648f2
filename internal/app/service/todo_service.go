package service

import (
	"context"
	"fmt"
	"math"

	"todo_server/internal/common/validation"
	"todo_server/internal/domain/model"
	"todo_server/internal/domain/repository"
)

// TodoPageSize is the fixed number of todos per page.
const TodoPageSize = 5

type TodoService struct {
	todoRepo repository.TodoRepository
}

func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

// TodoDraft is the client-supplied todo. UserID is accepted on the wire and
// ignored: the owner always comes from the authenticated path.
type TodoDraft struct {
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Contents  *string     `json:"contents"`
	DueDate   *model.Date `json:"due_date"`
	Completed bool        `json:"completed"`
}

// ListTodos returns one page of userID's todos, newest first. Pages past the
// end are empty.
func (s *TodoService) ListTodos(ctx context.Context, userID int64, page uint64) ([]model.Todo, error) {
	todos, err := s.todoRepo.ListByUser(ctx, userID, TodoPageSize, pageOffset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// pageOffset is page*TodoPageSize, saturating at the largest offset storage accepts.
func pageOffset(page uint64) int64 {
	if page > math.MaxInt64/TodoPageSize {
		return math.MaxInt64
	}
	return int64(page) * TodoPageSize
}

func (s *TodoService) CreateTodo(ctx context.Context, ownerUserID int64, draft TodoDraft) (*model.Todo, error) {
	todo := &model.Todo{
		UserID:    ownerUserID,
		Name:      draft.Name,
		Contents:  draft.Contents,
		DueDate:   draft.DueDate,
		Completed: draft.Completed,
	}
	if err := validation.Todo(todo.Name, todo.Contents); err != nil {
		return nil, err
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// UpdateTodo replaces name, contents, due date and completion of the todo
// todoID owned by ownerUserID. A todo owned by someone else is ErrNotFound.
//
// The read and the write are separate statements with no lock between them,
// so concurrent updates to one todo are last writer wins.
func (s *TodoService) UpdateTodo(ctx context.Context, ownerUserID, todoID int64, fields TodoDraft) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByIDAndUser(ctx, todoID, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	todo.Name = fields.Name
	todo.Contents = fields.Contents
	todo.DueDate = fields.DueDate
	todo.Completed = fields.Completed
	if err := validation.Todo(todo.Name, todo.Contents); err != nil {
		return nil, err
	}

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, ownerUserID, todoID int64) error {
	if _, err := s.todoRepo.FindByIDAndUser(ctx, todoID, ownerUserID); err != nil {
		return fmt.Errorf("failed to find todo: %w", err)
	}
	if err := s.todoRepo.Delete(ctx, todoID, ownerUserID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}
