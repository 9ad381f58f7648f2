package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_server/internal/common"
	"todo_server/internal/domain/model"
)

var todoCols = []string{"id", "user_id", "name", "contents", "due_date", "completed", "created_at"}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestPgTodoRepository_ListByUser(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      []model.Todo
		wantErr   bool
	}{
		{
			name: "newest first with limit and offset",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(todoCols).
					AddRow(int64(9), int64(1), "nine", strPtr("c"), timePtr(due), true, createdAt).
					AddRow(int64(8), int64(1), "eight", (*string)(nil), (*time.Time)(nil), false, createdAt)
				mock.ExpectQuery(`FROM todos WHERE user_id = \$1\s+ORDER BY id DESC\s+LIMIT \$2 OFFSET \$3`).
					WithArgs(int64(1), int64(5), int64(10)).
					WillReturnRows(rows)
			},
			want: []model.Todo{
				{ID: 9, UserID: 1, Name: "nine", Contents: strPtr("c"), DueDate: &model.Date{Year: 2026, Month: time.April, Day: 1}, Completed: true, CreatedAt: createdAt},
				{ID: 8, UserID: 1, Name: "eight", CreatedAt: createdAt},
			},
		},
		{
			name: "empty page is an empty slice",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM todos WHERE user_id`).
					WithArgs(int64(1), int64(5), int64(10)).
					WillReturnRows(pgxmock.NewRows(todoCols))
			},
			want: []model.Todo{},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM todos WHERE user_id`).
					WithArgs(int64(1), int64(5), int64(10)).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			got, err := NewPgTodoRepository(mock).ListByUser(context.Background(), 1, 5, 10)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgTodoRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	todo := &model.Todo{
		UserID:   4,
		Name:     "buy milk",
		Contents: strPtr("2 liters"),
		DueDate:  &model.Date{Year: 2026, Month: time.May, Day: 2},
	}

	mock.ExpectQuery(`INSERT INTO todos \(user_id, name, contents, due_date, completed\)`).
		WithArgs(int64(4), "buy milk", strPtr("2 liters"), time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(21), createdAt))

	require.NoError(t, NewPgTodoRepository(mock).Create(context.Background(), todo))
	assert.Equal(t, int64(21), todo.ID)
	assert.Equal(t, createdAt, todo.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTodoRepository_FindByIDAndUser(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM todos WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(pgxmock.NewRows(todoCols).AddRow(int64(7), int64(1), "seven", (*string)(nil), (*time.Time)(nil), false, createdAt))
	mock.ExpectQuery(`FROM todos WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(7), int64(2)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPgTodoRepository(mock)
	todo, err := repo.FindByIDAndUser(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "seven", todo.Name)
	assert.Nil(t, todo.DueDate)

	_, err = repo.FindByIDAndUser(context.Background(), 7, 2)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTodoRepository_Update(t *testing.T) {
	todo := &model.Todo{ID: 7, UserID: 1, Name: "renamed", Completed: true}

	t.Run("ownership filtered update", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE todos SET name = \$1, contents = \$2, due_date = \$3, completed = \$4\s+WHERE id = \$5 AND user_id = \$6`).
			WithArgs("renamed", (*string)(nil), nil, true, int64(7), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, NewPgTodoRepository(mock).Update(context.Background(), todo))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row vanished", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE todos`).
			WithArgs("renamed", (*string)(nil), nil, true, int64(7), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, NewPgTodoRepository(mock).Update(context.Background(), todo), common.ErrNotFound)
	})
}

func TestPgTodoRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM todos WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM todos WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(7), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPgTodoRepository(mock)
	assert.NoError(t, repo.Delete(context.Background(), 7, 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 7, 2), common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
