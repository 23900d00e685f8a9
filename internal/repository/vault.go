package repository

import (
	"context"

	"github.com/RajeshPuri/VaultFlow/internal/model"
)

// Every read and delete below is scoped by the owning user's id; listings are
// ordered newest-first (created_at DESC, id DESC) to match what subscribed
// clients render. Deletes return sql.ErrNoRows when no owned row matched.

// FolderRepository defines data access for folders.
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)
	FindByID(ctx context.Context, ownerID, id string) (*model.Folder, error)
	List(ctx context.Context, ownerID string, q ListQuery) (*ListResult[model.Folder], error)
	Delete(ctx context.Context, ownerID, id string) error
}

// FileRepository defines data access for file metadata records.
// The blob itself is handled by the storage layer, never here.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) (*model.File, error)
	FindByID(ctx context.Context, ownerID, id string) (*model.File, error)
	List(ctx context.Context, ownerID string, q FileListQuery) (*ListResult[model.File], error)
	// CountByOwner counts all of a user's file records across folders.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// CountByFolder counts the records referencing a folder.
	CountByFolder(ctx context.Context, folderID string) (int, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// NoteRepository defines data access for notes.
type NoteRepository interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	FindByID(ctx context.Context, ownerID, id string) (*model.Note, error)
	List(ctx context.Context, ownerID string, q ListQuery) (*ListResult[model.Note], error)
	Delete(ctx context.Context, ownerID, id string) error
}

// MemberRepository defines data access for team members.
type MemberRepository interface {
	Create(ctx context.Context, m *model.Member) (*model.Member, error)
	List(ctx context.Context, ownerID string, q ListQuery) (*ListResult[model.Member], error)
	Delete(ctx context.Context, ownerID, id string) error
}
