package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"todo_server/internal/common"
	"todo_server/internal/domain/model"
)

// TodoRepository reads and writes todos. Every single-row access is filtered
// by (id, user_id), so a todo owned by someone else behaves as absent.
type TodoRepository interface {
	// ListByUser returns the user's todos newest id first.
	ListByUser(ctx context.Context, userID int64, limit, offset int64) ([]model.Todo, error)
	// Create inserts todo and fills in its ID and CreatedAt.
	Create(ctx context.Context, todo *model.Todo) error
	FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Todo, error)
	// Update persists Name, Contents, DueDate and Completed.
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, id, userID int64) error
}

type pgTodoRepository struct {
	db DBTX
}

func NewPgTodoRepository(db DBTX) TodoRepository {
	return &pgTodoRepository{db: db}
}

const todoColumns = `id, user_id, name, contents, due_date, completed, created_at`

func (r *pgTodoRepository) ListByUser(ctx context.Context, userID int64, limit, offset int64) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + `
	          FROM todos WHERE user_id = $1
	          ORDER BY id DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, oops.Code("TODO_LIST_FAILED").
			With("user_id", userID).
			Public("database fetch error").
			Wrap(err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, oops.Code("TODO_LIST_FAILED").
				With("user_id", userID).
				With("operation", "scan todo").
				Public("database fetch error").
				Wrap(err)
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TODO_LIST_FAILED").
			With("user_id", userID).
			Public("database fetch error").
			Wrap(err)
	}
	return todos, nil
}

func (r *pgTodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	query := `INSERT INTO todos (user_id, name, contents, due_date, completed)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, todo.UserID, todo.Name, todo.Contents, dateArg(todo.DueDate), todo.Completed).
		Scan(&todo.ID, &todo.CreatedAt)
	if err != nil {
		return oops.Code("TODO_CREATE_FAILED").
			With("user_id", todo.UserID).
			Public("database insert error").
			Wrap(err)
	}
	return nil
}

func (r *pgTodoRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	todo, err := scanTodo(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, oops.Code("TODO_GET_FAILED").
			With("id", id).
			With("user_id", userID).
			Public("database fetch error").
			Wrap(err)
	}
	return todo, nil
}

func (r *pgTodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	query := `UPDATE todos SET name = $1, contents = $2, due_date = $3, completed = $4
	          WHERE id = $5 AND user_id = $6`
	tag, err := r.db.Exec(ctx, query, todo.Name, todo.Contents, dateArg(todo.DueDate), todo.Completed, todo.ID, todo.UserID)
	if err != nil {
		return oops.Code("TODO_UPDATE_FAILED").
			With("id", todo.ID).
			With("user_id", todo.UserID).
			Public("database update error").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTodoRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return oops.Code("TODO_DELETE_FAILED").
			With("id", id).
			With("user_id", userID).
			Public("database delete error").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (*model.Todo, error) {
	todo := &model.Todo{}
	var dueDate *time.Time
	if err := row.Scan(&todo.ID, &todo.UserID, &todo.Name, &todo.Contents, &dueDate, &todo.Completed, &todo.CreatedAt); err != nil {
		return nil, err
	}
	if dueDate != nil {
		d := model.NewDate(*dueDate)
		todo.DueDate = &d
	}
	return todo, nil
}

func dateArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}
