package postgres

import (
	"context"
	"database/sql"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It stores metadata records only; blobs live in object storage.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, owner_id, folder_id, filename, size, content_type, storage_path, created_at`

func scanFile(row interface{ Scan(...any) error }) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.OwnerID,
		&f.FolderID,
		&f.Filename,
		&f.Size,
		&f.ContentType,
		&f.StoragePath,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file metadata row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, owner_id, folder_id, filename, size, content_type, storage_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.OwnerID,
		f.FolderID,
		f.Filename,
		f.Size,
		f.ContentType,
		f.StoragePath,
		f.CreatedAt,
	)
	return scanFile(row)
}

// FindByID fetches a single file record owned by the given user.
func (r *FilePostgres) FindByID(ctx context.Context, ownerID, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND owner_id = $2`
	return scanFile(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// List returns the owner's file records newest-first. Search filters on
// filename; FolderID narrows the listing to one folder.
func (r *FilePostgres) List(ctx context.Context, ownerID string, lq repository.FileListQuery) (*repository.ListResult[model.File], error) {
	where := ` WHERE owner_id = $1`
	args := []any{ownerID}
	if lq.Search != "" {
		args = append(args, lq.Search)
		where += ` AND filename ILIKE '%' || $2 || '%'`
	}
	if lq.FolderID != nil {
		args = append(args, *lq.FolderID)
		if len(args) == 2 {
			where += ` AND folder_id = $2`
		} else {
			where += ` AND folder_id = $3`
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + fileColumns + ` FROM files` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.ListResult[model.File]{Items: items, Total: total}, nil
}

// CountByOwner counts all of a user's file records across folders.
func (r *FilePostgres) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	const q = `SELECT COUNT(*) FROM files WHERE owner_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountByFolder counts the records referencing a folder.
func (r *FilePostgres) CountByFolder(ctx context.Context, folderID string) (int, error) {
	const q = `SELECT COUNT(*) FROM files WHERE folder_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, folderID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an owned file record by ID. Returns sql.ErrNoRows when no
// owned row matched.
func (r *FilePostgres) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM files WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
