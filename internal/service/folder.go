package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds 255 characters")
	// ErrFolderNotEmpty refuses deletion of a folder that still holds files.
	ErrFolderNotEmpty = errors.New("folder still contains files")
)

// FolderListResult is the service-level DTO for folder listings.
type FolderListResult struct {
	Items []model.Folder `json:"data"`
	Total int            `json:"total"`
}

// FolderService defines the use cases for folders.
type FolderService interface {
	Create(ctx context.Context, ownerID, name string) (*model.Folder, error)
	List(ctx context.Context, ownerID, search string) (*FolderListResult, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type folderService struct {
	folders repository.FolderRepository
	files   repository.FileRepository
	events  ws.Publisher
}

// NewFolderService constructs a new FolderService.
func NewFolderService(folders repository.FolderRepository, files repository.FileRepository, events ws.Publisher) FolderService {
	return &folderService{folders: folders, files: files, events: events}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len(name) > 255 {
		return "", ErrNameTooLong
	}
	return name, nil
}

func (s *folderService) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	stored, err := s.folders.Create(ctx, &model.Folder{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.FolderCreated, Entity: stored})
	return stored, nil
}

func (s *folderService) List(ctx context.Context, ownerID, search string) (*FolderListResult, error) {
	res, err := s.folders.List(ctx, ownerID, repository.ListQuery{Search: search})
	if err != nil {
		return nil, err
	}
	return &FolderListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *folderService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	// Ownership first: the occupancy count is not owner-scoped, so checking
	// it before the lookup would leak whether someone else's folder has files.
	if _, err := s.folders.FindByID(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	n, err := s.files.CountByFolder(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrFolderNotEmpty
	}

	if err := s.folders.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.FolderDeleted, Entity: &model.Folder{ID: id, OwnerID: ownerID}})
	return nil
}
