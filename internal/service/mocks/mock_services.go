package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, tokenStr string) error {
	args := m.Called(ctx, tokenStr)
	return args.Error(0)
}

func (m *MockAuthService) FederatedLogin(ctx context.Context, provider, subject, email, name string) (string, *model.User, error) {
	args := m.Called(ctx, provider, subject, email, name)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	args := m.Called(ctx, tokenStr, newPassword)
	return args.Error(0)
}

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) List(ctx context.Context, ownerID, search string) (*service.FolderListResult, error) {
	args := m.Called(ctx, ownerID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FolderListResult), args.Error(1)
}

func (m *MockFolderService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64, folderID *string) (*model.File, error) {
	args := m.Called(ctx, ownerID, r, originalFilename, contentType, size, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, ownerID, search string, folderID *string) (*service.FileListResult, error) {
	args := m.Called(ctx, ownerID, search, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, ownerID, id string) (*model.File, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Create(ctx context.Context, ownerID, title, content string) (*model.Note, error) {
	args := m.Called(ctx, ownerID, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context, ownerID, search string) (*service.NoteListResult, error) {
	args := m.Called(ctx, ownerID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NoteListResult), args.Error(1)
}

func (m *MockNoteService) Get(ctx context.Context, ownerID, id string) (*model.Note, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) Create(ctx context.Context, ownerID, name string, role model.Role) (*model.Member, error) {
	args := m.Called(ctx, ownerID, name, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberService) List(ctx context.Context, ownerID, search string) (*service.MemberListResult, error) {
	args := m.Called(ctx, ownerID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MemberListResult), args.Error(1)
}

func (m *MockMemberService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}
