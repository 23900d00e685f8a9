package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

var ErrInvalidRole = errors.New("role must be Viewer, Editor, or Admin")

// MemberListResult is the service-level DTO for member listings.
type MemberListResult struct {
	Items []model.Member `json:"data"`
	Total int            `json:"total"`
}

// MemberService defines the use cases for team members.
type MemberService interface {
	Create(ctx context.Context, ownerID, name string, role model.Role) (*model.Member, error)
	List(ctx context.Context, ownerID, search string) (*MemberListResult, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type memberService struct {
	members repository.MemberRepository
	events  ws.Publisher
}

// NewMemberService constructs a new MemberService.
func NewMemberService(members repository.MemberRepository, events ws.Publisher) MemberService {
	return &memberService{members: members, events: events}
}

func (s *memberService) Create(ctx context.Context, ownerID, name string, role model.Role) (*model.Member, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	stored, err := s.members.Create(ctx, &model.Member{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.MemberCreated, Entity: stored})
	return stored, nil
}

func (s *memberService) List(ctx context.Context, ownerID, search string) (*MemberListResult, error) {
	res, err := s.members.List(ctx, ownerID, repository.ListQuery{Search: search})
	if err != nil {
		return nil, err
	}
	return &MemberListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *memberService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.members.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.events.Publish(ownerID, ws.Event{Type: ws.MemberDeleted, Entity: &model.Member{ID: id, OwnerID: ownerID}})
	return nil
}
