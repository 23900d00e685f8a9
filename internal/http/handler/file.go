package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/http/middleware"
	"github.com/RajeshPuri/VaultFlow/internal/service"
)

// limitPayload extends the standard error body with the upsell redirect
// returned when the vault is full.
type limitPayload struct {
	RequestID  string        `json:"request_id"`
	Error      errorEnvelope `json:"error"`
	UpgradeURL string        `json:"upgrade_url"`
}

// UploadFile handles POST /api/v1/files (multipart, field "file", optional
// "folder_id"). upgradeURL is where clients at the file cap are sent.
func UploadFile(svc service.FileService, upgradeURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		var folderID *string
		if v := c.FormValue("folder_id"); v != "" {
			folderID = &v
		}

		stored, err := svc.Upload(c.UserContext(), middleware.UserID(c), f, fh.Filename, ct, fh.Size, folderID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrFileLimitReached):
				return c.Status(fiber.StatusForbidden).JSON(limitPayload{
					RequestID:  requestIDFromCtx(c),
					Error:      errorEnvelope{Code: "FILE_LIMIT_REACHED", Message: "your vault is full"},
					UpgradeURL: upgradeURL,
				})
			case errors.Is(err, service.ErrFolderNotFound):
				return writeError(c, fiber.StatusBadRequest, "FOLDER_NOT_FOUND", "folder not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// ListFiles handles GET /api/v1/files?search=&folder_id=.
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var folderID *string
		if v := c.Query("folder_id"); v != "" {
			folderID = &v
		}

		res, err := svc.List(c.UserContext(), middleware.UserID(c), c.Query("search"), folderID)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetFile handles GET /api/v1/files/:id.
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(f)
	}
}

// DeleteFile handles DELETE /api/v1/files/:id.
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
