// Package repotest provides an in-memory implementation of the repositories
// for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"todo_server/internal/common"
	"todo_server/internal/domain/model"
	"todo_server/internal/domain/repository"
)

var (
	_ repository.UserRepository = (*UserRepo)(nil)
	_ repository.TodoRepository = (*TodoRepo)(nil)
)

// Store backs both repositories with maps. Usernames and emails are unique,
// and deleting a user deletes their todos.
type Store struct {
	mu         sync.Mutex
	users      map[int64]model.User
	todos      map[int64]model.Todo
	nextUserID int64
	nextTodoID int64
	now        func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

func NewStore() *Store {
	return &Store{
		users: map[int64]model.User{},
		todos: map[int64]model.Todo{},
		now:   time.Now,
	}
}

// Users returns a UserRepository over the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Todos returns a TodoRepository over the store.
func (s *Store) Todos() *TodoRepo { return &TodoRepo{s: s} }

// UserCount and TodoCount report what is stored.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) TodoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

// User returns the stored row, including its password hash.
func (s *Store) User(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	stored, ok := r.s.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return common.ErrConflict
		}
	}
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	r.s.users[user.ID] = stored
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.users, id)
	for todoID, t := range r.s.todos {
		if t.UserID == id {
			delete(r.s.todos, todoID)
		}
	}
	return nil
}

type TodoRepo struct {
	s *Store
}

func (r *TodoRepo) ListByUser(_ context.Context, userID int64, limit, offset int64) ([]model.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	owned := []model.Todo{}
	for _, t := range r.s.todos {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })

	if offset >= int64(len(owned)) {
		return []model.Todo{}, nil
	}
	end := offset + limit
	if end > int64(len(owned)) {
		end = int64(len(owned))
	}
	return owned[offset:end], nil
}

func (r *TodoRepo) Create(_ context.Context, todo *model.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[todo.UserID]; !ok {
		return common.ErrConflict
	}
	r.s.nextTodoID++
	todo.ID = r.s.nextTodoID
	todo.CreatedAt = r.s.now()
	r.s.todos[todo.ID] = *todo
	return nil
}

func (r *TodoRepo) FindByIDAndUser(_ context.Context, id, userID int64) (*model.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	t, ok := r.s.todos[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r *TodoRepo) Update(_ context.Context, todo *model.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	stored, ok := r.s.todos[todo.ID]
	if !ok || stored.UserID != todo.UserID {
		return common.ErrNotFound
	}
	stored.Name = todo.Name
	stored.Contents = todo.Contents
	stored.DueDate = todo.DueDate
	stored.Completed = todo.Completed
	r.s.todos[todo.ID] = stored
	return nil
}

func (r *TodoRepo) Delete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	t, ok := r.s.todos[id]
	if !ok || t.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.s.todos, id)
	return nil
}
