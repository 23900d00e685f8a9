package postgres

import (
	"context"
	"database/sql"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
)

// NotePostgres is a PostgreSQL implementation of repository.NoteRepository.
type NotePostgres struct {
	db *sql.DB
}

// NewNotePostgres creates a new NotePostgres repository.
func NewNotePostgres(db *sql.DB) *NotePostgres {
	return &NotePostgres{db: db}
}

var _ repository.NoteRepository = (*NotePostgres)(nil)

// Create inserts a new note row and returns the stored record.
func (r *NotePostgres) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	const q = `
		INSERT INTO notes (id, owner_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, title, content, created_at
	`
	row := r.db.QueryRowContext(ctx, q, n.ID, n.OwnerID, n.Title, n.Content, n.CreatedAt)
	var out model.Note
	if err := row.Scan(&out.ID, &out.OwnerID, &out.Title, &out.Content, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single note owned by the given user.
func (r *NotePostgres) FindByID(ctx context.Context, ownerID, id string) (*model.Note, error) {
	const q = `
		SELECT id, owner_id, title, content, created_at
		FROM notes
		WHERE id = $1 AND owner_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, id, ownerID)
	var n model.Note
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns the owner's notes newest-first, optionally filtered by a
// case-insensitive substring match on title. Content is not searched.
func (r *NotePostgres) List(ctx context.Context, ownerID string, lq repository.ListQuery) (*repository.ListResult[model.Note], error) {
	qCount := `SELECT COUNT(*) FROM notes WHERE owner_id = $1`
	qList := `
		SELECT id, owner_id, title, content, created_at
		FROM notes
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	if lq.Search != "" {
		qCount += ` AND title ILIKE '%' || $2 || '%'`
		qList += ` AND title ILIKE '%' || $2 || '%'`
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

	items := make([]model.Note, 0)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.ListResult[model.Note]{Items: items, Total: total}, nil
}

// Delete removes an owned note by ID. Returns sql.ErrNoRows when no owned
// row matched.
func (r *NotePostgres) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM notes WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
