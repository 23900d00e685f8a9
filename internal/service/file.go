package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
	"github.com/RajeshPuri/VaultFlow/internal/storage"
	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

var (
	ErrReaderNil = errors.New("reader is nil")
	// ErrFileLimitReached means the vault already holds the maximum number
	// of files; the upload is refused before any byte reaches storage.
	ErrFileLimitReached = errors.New("file limit reached")
	ErrFolderNotFound   = errors.New("folder not found")
)

// Presigned download links stay valid for a day.
const downloadURLExpiry = 24 * time.Hour

// FileListResult is the service-level DTO for file listings.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// FileService defines the use cases for handling files: blob upload with
// progress reporting, listing with presigned download URLs, and compensated
// delete.
type FileService interface {
	// Upload streams the content to object storage and saves the metadata
	// record, rolling back storage if the save fails. originalFilename is
	// kept for display; the object key is UUID-based. folderID, when set,
	// must name a folder owned by the same user.
	Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64, folderID *string) (*model.File, error)

	// List returns the owner's files newest-first, optionally filtered by
	// folder and by a case-insensitive substring of the filename.
	List(ctx context.Context, ownerID, search string, folderID *string) (*FileListResult, error)

	// Get returns a single owned file with a presigned download URL.
	Get(ctx context.Context, ownerID, id string) (*model.File, error)

	// Delete removes the metadata record and then the blob. If the blob
	// delete fails the record is restored, so a record never points at a
	// missing blob.
	Delete(ctx context.Context, ownerID, id string) error
}

type fileService struct {
	store    storage.Storage
	files    repository.FileRepository
	folders  repository.FolderRepository
	events   ws.Publisher
	maxFiles int
}

// NewFileService constructs a new FileService. maxFiles caps the number of
// records a single vault may hold.
func NewFileService(store storage.Storage, files repository.FileRepository, folders repository.FolderRepository, events ws.Publisher, maxFiles int) FileService {
	return &fileService{store: store, files: files, folders: folders, events: events, maxFiles: maxFiles}
}

func (s *fileService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64, folderID *string) (*model.File, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	// The cap is enforced before the upload starts, not after.
	count, err := s.files.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= s.maxFiles {
		return nil, ErrFileLimitReached
	}

	if folderID != nil {
		if _, err := s.folders.FindByID(ctx, ownerID, *folderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrFolderNotFound
			}
			return nil, err
		}
	}

	id := uuid.New().String()
	key := filepath.ToSlash(filepath.Join("files", ownerID, id+filepath.Ext(originalFilename)))

	lastPct := -1
	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
		Progress: func(written, total int64) {
			if total <= 0 {
				return
			}
			pct := int(written * 100 / total)
			if pct == lastPct {
				return
			}
			lastPct = pct
			s.events.Publish(ownerID, ws.Event{Type: ws.FileUploadProgress, FileID: id, Progress: pct})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	f := &model.File{
		ID:          id,
		OwnerID:     ownerID,
		FolderID:    folderID,
		Filename:    originalFilename,
		Size:        objInfo.Size,
		ContentType: contentType,
		StoragePath: objInfo.Key,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.files.Create(ctx, f)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.FileCreated, Entity: stored})
	return stored, nil
}

// withDownloadURL attaches a presigned GET URL. Presigning failures leave the
// URL empty rather than failing the read.
func (s *fileService) withDownloadURL(ctx context.Context, f *model.File) {
	if u, err := s.store.PresignGet(ctx, f.StoragePath, downloadURLExpiry); err == nil {
		f.DownloadURL = u
	}
}

func (s *fileService) List(ctx context.Context, ownerID, search string, folderID *string) (*FileListResult, error) {
	res, err := s.files.List(ctx, ownerID, repository.FileListQuery{Search: search, FolderID: folderID})
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		s.withDownloadURL(ctx, &res.Items[i])
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) Get(ctx context.Context, ownerID, id string) (*model.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.files.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.withDownloadURL(ctx, f)
	return f, nil
}

func (s *fileService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	f, err := s.files.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Record first, blob second. If the blob delete fails the record is
	// restored, so a surviving record always has a blob behind it.
	if err := s.files.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		if _, restoreErr := s.files.Create(ctx, f); restoreErr != nil {
			return fmt.Errorf("delete blob failed: %v; restore record failed: %v", err, restoreErr)
		}
		return fmt.Errorf("delete blob: %w", err)
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.FileDeleted, Entity: f})
	return nil
}
