package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/http/middleware"
	"github.com/RajeshPuri/VaultFlow/internal/service"
)

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNote handles POST /api/v1/notes.
func CreateNote(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createNoteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		n, err := svc.Create(c.UserContext(), middleware.UserID(c), req.Title, req.Content)
		if err != nil {
			if errors.Is(err, service.ErrTitleRequired) {
				return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(n)
	}
}

// ListNotes handles GET /api/v1/notes?search=.
func ListNotes(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), middleware.UserID(c), c.Query("search"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetNote handles GET /api/v1/notes/:id.
func GetNote(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "note not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(n)
	}
}

// DeleteNote handles DELETE /api/v1/notes/:id.
func DeleteNote(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "note not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
