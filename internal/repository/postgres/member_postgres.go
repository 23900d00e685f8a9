package postgres

import (
	"context"
	"database/sql"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
)

// MemberPostgres is a PostgreSQL implementation of repository.MemberRepository.
type MemberPostgres struct {
	db *sql.DB
}

// NewMemberPostgres creates a new MemberPostgres repository.
func NewMemberPostgres(db *sql.DB) *MemberPostgres {
	return &MemberPostgres{db: db}
}

var _ repository.MemberRepository = (*MemberPostgres)(nil)

// Create inserts a new member row and returns the stored record.
func (r *MemberPostgres) Create(ctx context.Context, m *model.Member) (*model.Member, error) {
	const q = `
		INSERT INTO members (id, owner_id, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, name, role, created_at
	`
	row := r.db.QueryRowContext(ctx, q, m.ID, m.OwnerID, m.Name, m.Role, m.CreatedAt)
	var out model.Member
	if err := row.Scan(&out.ID, &out.OwnerID, &out.Name, &out.Role, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the owner's members newest-first, optionally filtered by a
// case-insensitive substring match on name.
func (r *MemberPostgres) List(ctx context.Context, ownerID string, lq repository.ListQuery) (*repository.ListResult[model.Member], error) {
	qCount := `SELECT COUNT(*) FROM members WHERE owner_id = $1`
	qList := `
		SELECT id, owner_id, name, role, created_at
		FROM members
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

	items := make([]model.Member, 0)
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.ListResult[model.Member]{Items: items, Total: total}, nil
}

// Delete removes an owned member by ID. Returns sql.ErrNoRows when no owned
// row matched.
func (r *MemberPostgres) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM members WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
