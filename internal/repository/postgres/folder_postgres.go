package postgres

import (
	"context"
	"database/sql"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

// Create inserts a new folder row and returns the stored record.
func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, name, created_at
	`
	row := r.db.QueryRowContext(ctx, q, f.ID, f.OwnerID, f.Name, f.CreatedAt)
	var out model.Folder
	if err := row.Scan(&out.ID, &out.OwnerID, &out.Name, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single folder owned by the given user.
func (r *FolderPostgres) FindByID(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	const q = `
		SELECT id, owner_id, name, created_at
		FROM folders
		WHERE id = $1 AND owner_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, id, ownerID)
	var f model.Folder
	if err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns the owner's folders newest-first, optionally filtered by a
// case-insensitive substring match on name.
func (r *FolderPostgres) List(ctx context.Context, ownerID string, lq repository.ListQuery) (*repository.ListResult[model.Folder], error) {
	qCount := `SELECT COUNT(*) FROM folders WHERE owner_id = $1`
	qList := `
		SELECT id, owner_id, name, created_at
		FROM folders
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	if lq.Search != "" {
		qCount += ` AND name ILIKE '%' || $2 || '%'`
		qList += ` AND name ILIKE '%' || $2 || '%'`
		args = append(args, lq.Search)
	}
	qList += ` ORDER BY created_at DESC, id DESC`

	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Folder, 0)
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.ListResult[model.Folder]{Items: items, Total: total}, nil
}

// Delete removes an owned folder by ID. Returns sql.ErrNoRows when no owned
// row matched.
func (r *FolderPostgres) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM folders WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
