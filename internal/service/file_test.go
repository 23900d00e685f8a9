package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/repository"
	repomocks "github.com/RajeshPuri/VaultFlow/internal/repository/mocks"
	"github.com/RajeshPuri/VaultFlow/internal/storage"
	storagemocks "github.com/RajeshPuri/VaultFlow/internal/storage/mocks"
	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

const testMaxFiles = 5

type fileFixture struct {
	store   *storagemocks.MockStorage
	files   *repomocks.MockFileRepository
	folders *repomocks.MockFolderRepository
	events  *recordingPublisher
	svc     FileService
}

func newFileFixture() *fileFixture {
	f := &fileFixture{
		store:   new(storagemocks.MockStorage),
		files:   new(repomocks.MockFileRepository),
		folders: new(repomocks.MockFolderRepository),
		events:  &recordingPublisher{},
	}
	f.svc = NewFileService(f.store, f.files, f.folders, f.events, testMaxFiles)
	return f
}

func TestFileUpload(t *testing.T) {
	t.Run("stores blob then record and publishes created", func(t *testing.T) {
		fx := newFileFixture()
		body := strings.NewReader("hello world")

		fx.files.On("CountByOwner", mock.Anything, "u1").Return(2, nil)
		fx.store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "files/u1/") && strings.HasSuffix(key, ".pdf")
		}), body, mock.Anything).Return(storage.ObjectInfo{Key: "files/u1/abc.pdf", Size: 11}, nil)
		fx.files.On("Create", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
			return f.OwnerID == "u1" && f.Filename == "report.pdf" && f.StoragePath == "files/u1/abc.pdf" && f.Size == 11
		})).Return(&model.File{ID: "f1", OwnerID: "u1", Filename: "report.pdf"}, nil)

		f, err := fx.svc.Upload(context.Background(), "u1", body, "report.pdf", "application/pdf", 11, nil)
		require.NoError(t, err)
		assert.Equal(t, "f1", f.ID)

		created := fx.events.byType(ws.FileCreated)
		require.Len(t, created, 1)
		assert.Equal(t, "u1", created[0].UserID)
	})

	t.Run("refuses upload at the cap before touching storage", func(t *testing.T) {
		fx := newFileFixture()

		fx.files.On("CountByOwner", mock.Anything, "u1").Return(testMaxFiles, nil)

		_, err := fx.svc.Upload(context.Background(), "u1", strings.NewReader("x"), "a.txt", "text/plain", 1, nil)
		assert.ErrorIs(t, err, ErrFileLimitReached)
		fx.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nil reader", func(t *testing.T) {
		fx := newFileFixture()

		_, err := fx.svc.Upload(context.Background(), "u1", nil, "a.txt", "text/plain", 1, nil)
		assert.ErrorIs(t, err, ErrReaderNil)
	})

	t.Run("rejects folder the user does not own", func(t *testing.T) {
		fx := newFileFixture()
		folderID := "d1"

		fx.files.On("CountByOwner", mock.Anything, "u1").Return(0, nil)
		fx.folders.On("FindByID", mock.Anything, "u1", "d1").Return(nil, sql.ErrNoRows)

		_, err := fx.svc.Upload(context.Background(), "u1", strings.NewReader("x"), "a.txt", "text/plain", 1, &folderID)
		assert.ErrorIs(t, err, ErrFolderNotFound)
	})

	t.Run("deletes blob when the record save fails", func(t *testing.T) {
		fx := newFileFixture()
		body := strings.NewReader("hello")

		fx.files.On("CountByOwner", mock.Anything, "u1").Return(0, nil)
		fx.store.On("Put", mock.Anything, mock.Anything, body, mock.Anything).Return(storage.ObjectInfo{Key: "files/u1/abc.txt", Size: 5}, nil)
		fx.files.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))
		fx.store.On("Delete", mock.Anything, mock.Anything).Return(nil)

		_, err := fx.svc.Upload(context.Background(), "u1", body, "a.txt", "text/plain", 5, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db save failed")
		fx.store.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, fx.events.byType(ws.FileCreated))
	})

	t.Run("publishes progress once per percentage step", func(t *testing.T) {
		fx := newFileFixture()
		body := strings.NewReader("data")

		fx.files.On("CountByOwner", mock.Anything, "u1").Return(0, nil)
		fx.store.On("Put", mock.Anything, mock.Anything, body, mock.Anything).
			Run(func(args mock.Arguments) {
				opt := args.Get(3).(storage.PutObjectOptions)
				// Backend drains the stream in chunks; repeated callbacks at
				// the same percentage collapse to one event.
				opt.Progress(50, 100)
				opt.Progress(50, 100)
				opt.Progress(100, 100)
			}).
			Return(storage.ObjectInfo{Key: "files/u1/abc.bin", Size: 100}, nil)
		fx.files.On("Create", mock.Anything, mock.Anything).Return(&model.File{ID: "f1", OwnerID: "u1"}, nil)

		_, err := fx.svc.Upload(context.Background(), "u1", body, "a.bin", "application/octet-stream", 100, nil)
		require.NoError(t, err)

		progress := fx.events.byType(ws.FileUploadProgress)
		require.Len(t, progress, 2)
		assert.Equal(t, 50, progress[0].Event.Progress)
		assert.Equal(t, 100, progress[1].Event.Progress)
		assert.NotEmpty(t, progress[0].Event.FileID)
	})
}

func TestFileList(t *testing.T) {
	t.Run("attaches presigned download URLs", func(t *testing.T) {
		fx := newFileFixture()

		fx.files.On("List", mock.Anything, "u1", repository.FileListQuery{Search: "rep"}).Return(&repository.ListResult[model.File]{
			Items: []model.File{{ID: "f1", StoragePath: "files/u1/abc.pdf"}},
			Total: 1,
		}, nil)
		fx.store.On("PresignGet", mock.Anything, "files/u1/abc.pdf", downloadURLExpiry).Return("https://blobs/abc.pdf?sig=x", nil)

		res, err := fx.svc.List(context.Background(), "u1", "rep", nil)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "https://blobs/abc.pdf?sig=x", res.Items[0].DownloadURL)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("presign failure leaves URL empty", func(t *testing.T) {
		fx := newFileFixture()

		fx.files.On("List", mock.Anything, "u1", repository.FileListQuery{}).Return(&repository.ListResult[model.File]{
			Items: []model.File{{ID: "f1", StoragePath: "files/u1/abc.pdf"}},
			Total: 1,
		}, nil)
		fx.store.On("PresignGet", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("presign failed"))

		res, err := fx.svc.List(context.Background(), "u1", "", nil)
		require.NoError(t, err)
		assert.Empty(t, res.Items[0].DownloadURL)
	})
}

func TestFileDelete(t *testing.T) {
	stored := &model.File{ID: "f1", OwnerID: "u1", StoragePath: "files/u1/abc.pdf"}

	t.Run("removes record then blob", func(t *testing.T) {
		fx := newFileFixture()

		fx.files.On("FindByID", mock.Anything, "u1", "f1").Return(stored, nil)
		fx.files.On("Delete", mock.Anything, "u1", "f1").Return(nil)
		fx.store.On("Delete", mock.Anything, "files/u1/abc.pdf").Return(nil)

		require.NoError(t, fx.svc.Delete(context.Background(), "u1", "f1"))

		deleted := fx.events.byType(ws.FileDeleted)
		require.Len(t, deleted, 1)
		assert.Equal(t, "u1", deleted[0].UserID)
	})

	t.Run("restores record when blob delete fails", func(t *testing.T) {
		fx := newFileFixture()

		fx.files.On("FindByID", mock.Anything, "u1", "f1").Return(stored, nil)
		fx.files.On("Delete", mock.Anything, "u1", "f1").Return(nil)
		fx.store.On("Delete", mock.Anything, "files/u1/abc.pdf").Return(errors.New("storage down"))
		fx.files.On("Create", mock.Anything, stored).Return(stored, nil)

		err := fx.svc.Delete(context.Background(), "u1", "f1")
		require.Error(t, err)
		fx.files.AssertCalled(t, "Create", mock.Anything, stored)
		assert.Empty(t, fx.events.byType(ws.FileDeleted))
	})

	t.Run("not found", func(t *testing.T) {
		fx := newFileFixture()

		fx.files.On("FindByID", mock.Anything, "u1", "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, fx.svc.Delete(context.Background(), "u1", "missing"), ErrNotFound)
	})
}
