package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"todo_server/internal/common"
	"todo_server/internal/domain/model"
)

type UserRepository interface {
	// Create inserts user and fills in its ID and CreatedAt.
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Update persists Email and PasswordHash. Username and CreatedAt are never written.
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user; the schema cascades the delete to their todos.
	Delete(ctx context.Context, id int64) error
}

type pgUserRepository struct {
	db DBTX
}

func NewPgUserRepository(db DBTX) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, password, created_at`

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_CONFLICT").
				With("username", user.Username).
				Public("database insert error").
				Wrap(fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict))
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Public("database insert error").
			Wrap(err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("id", id).
			Public("database fetch error").
			Wrap(err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("username", username).
			Public("database fetch error").
			Wrap(err)
	}
	return user, nil
}

func (r *pgUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET email = $1, password = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_CONFLICT").
				With("id", user.ID).
				Public("database update error").
				Wrap(fmt.Errorf("email already in use: %w", common.ErrConflict))
		}
		return oops.Code("USER_UPDATE_FAILED").
			With("id", user.ID).
			Public("database update error").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("id", id).
			Public("database delete error").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}
