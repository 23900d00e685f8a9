package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestFolderPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	f := &model.Folder{
		ID:        "folder-uuid",
		OwnerID:   "owner-uuid",
		Name:      "Tax Documents",
		CreatedAt: now,
	}

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).
		AddRow(f.ID, f.OwnerID, f.Name, f.CreatedAt)

	mock.ExpectQuery("INSERT INTO folders").
		WithArgs(f.ID, f.OwnerID, f.Name, f.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, f.ID, result.ID)
	assert.Equal(t, f.OwnerID, result.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).
			AddRow("folder-id", "owner-id", "Receipts", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = (.+) AND owner_id = ?").
			WithArgs("folder-id", "owner-id").
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "owner-id", "folder-id")

		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, "folder-id", f.ID)
	})

	t.Run("not owned", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = (.+) AND owner_id = ?").
			WithArgs("folder-id", "other-owner").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "other-owner", "folder-id")

		assert.Error(t, err)
		assert.Nil(t, f)
	})
}

func TestFolderPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	t.Run("no filter", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM folders WHERE owner_id = ?").
			WithArgs("owner-id").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).
			AddRow("f2", "owner-id", "Newer", time.Now()).
			AddRow("f1", "owner-id", "Older", time.Now().Add(-time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM folders WHERE owner_id = (.+) ORDER BY created_at DESC").
			WithArgs("owner-id").
			WillReturnRows(rows)

		res, err := repo.List(ctx, "owner-id", repository.ListQuery{})

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, "f2", res.Items[0].ID)
	})

	t.Run("search filter", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM folders WHERE owner_id = (.+) AND name ILIKE").
			WithArgs("owner-id", "tax").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).
			AddRow("f1", "owner-id", "Tax Documents", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM folders WHERE owner_id = (.+) AND name ILIKE (.+) ORDER BY created_at DESC").
			WithArgs("owner-id", "tax").
			WillReturnRows(rows)

		res, err := repo.List(ctx, "owner-id", repository.ListQuery{Search: "tax"})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})
}

func TestFolderPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFolderPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM folders WHERE id = (.+) AND owner_id = ?").
			WithArgs("folder-id", "owner-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, "owner-id", "folder-id")
		assert.NoError(t, err)
	})

	t.Run("no owned row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM folders WHERE id = (.+) AND owner_id = ?").
			WithArgs("folder-id", "other-owner").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "other-owner", "folder-id")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
