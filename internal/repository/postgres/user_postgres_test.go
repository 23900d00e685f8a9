package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userCols = []string{"id", "email", "name", "password_hash", "provider", "email_verified", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	u := &model.User{
		ID:           "user-uuid",
		Email:        "dana@example.com",
		Name:         "Dana",
		PasswordHash: "bcrypt-hash",
		CreatedAt:    now,
	}

	rows := sqlmock.NewRows(userCols).
		AddRow(u.ID, u.Email, u.Name, u.PasswordHash, "", false, u.CreatedAt)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.Provider, u.EmailVerified, u.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, u)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.False(t, result.EmailVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow("user-id", "dana@example.com", "Dana", "hash", "", true, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("dana@example.com").
			WillReturnRows(rows)

		u, err := repo.FindByEmail(ctx, "dana@example.com")

		assert.NoError(t, err)
		assert.NotNil(t, u)
		assert.True(t, u.EmailVerified)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(ctx, "ghost@example.com")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})
}

func TestUserPostgres_SetEmailVerified(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET email_verified = TRUE WHERE id = ?").
			WithArgs("user-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetEmailVerified(ctx, "user-id"))
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET email_verified = TRUE WHERE id = ?").
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetEmailVerified(ctx, "ghost"), sql.ErrNoRows)
	})
}

func TestUserPostgres_UpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET password_hash = (.+) WHERE id = ?").
		WithArgs("user-id", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdatePassword(ctx, "user-id", "new-hash"))
}
