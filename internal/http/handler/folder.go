package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/http/middleware"
	"github.com/RajeshPuri/VaultFlow/internal/service"
)

type createFolderRequest struct {
	Name string `json:"name"`
}

// CreateFolder handles POST /api/v1/folders.
func CreateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		f, err := svc.Create(c.UserContext(), middleware.UserID(c), req.Name)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNameRequired):
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
			case errors.Is(err, service.ErrNameTooLong):
				return writeError(c, fiber.StatusBadRequest, "NAME_TOO_LONG", "name exceeds 255 characters")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// ListFolders handles GET /api/v1/folders?search=.
func ListFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), middleware.UserID(c), c.Query("search"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// DeleteFolder handles DELETE /api/v1/folders/:id.
func DeleteFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "folder not found")
			case errors.Is(err, service.ErrFolderNotEmpty):
				return writeError(c, fiber.StatusConflict, "FOLDER_NOT_EMPTY", "folder still contains files")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
