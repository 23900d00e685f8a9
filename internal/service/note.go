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

var ErrTitleRequired = errors.New("title is required")

// NoteListResult is the service-level DTO for note listings.
type NoteListResult struct {
	Items []model.Note `json:"data"`
	Total int          `json:"total"`
}

// NoteService defines the use cases for notes.
type NoteService interface {
	Create(ctx context.Context, ownerID, title, content string) (*model.Note, error)
	List(ctx context.Context, ownerID, search string) (*NoteListResult, error)
	Get(ctx context.Context, ownerID, id string) (*model.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type noteService struct {
	notes  repository.NoteRepository
	events ws.Publisher
}

// NewNoteService constructs a new NoteService.
func NewNoteService(notes repository.NoteRepository, events ws.Publisher) NoteService {
	return &noteService{notes: notes, events: events}
}

func (s *noteService) Create(ctx context.Context, ownerID, title, content string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	stored, err := s.notes.Create(ctx, &model.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.NoteCreated, Entity: stored})
	return stored, nil
}

func (s *noteService) List(ctx context.Context, ownerID, search string) (*NoteListResult, error) {
	res, err := s.notes.List(ctx, ownerID, repository.ListQuery{Search: search})
	if err != nil {
		return nil, err
	}
	return &NoteListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *noteService) Get(ctx context.Context, ownerID, id string) (*model.Note, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	n, err := s.notes.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.notes.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.NoteDeleted, Entity: &model.Note{ID: id, OwnerID: ownerID}})
	return nil
}
