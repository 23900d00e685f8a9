package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/http/middleware"
	"github.com/RajeshPuri/VaultFlow/internal/model"
	"github.com/RajeshPuri/VaultFlow/internal/service"
)

type createMemberRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// CreateMember handles POST /api/v1/members.
func CreateMember(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createMemberRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		m, err := svc.Create(c.UserContext(), middleware.UserID(c), req.Name, model.Role(req.Role))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNameRequired):
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
			case errors.Is(err, service.ErrNameTooLong):
				return writeError(c, fiber.StatusBadRequest, "NAME_TOO_LONG", "name exceeds 255 characters")
			case errors.Is(err, service.ErrInvalidRole):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ROLE", "role must be Viewer, Editor, or Admin")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// ListMembers handles GET /api/v1/members?search=.
func ListMembers(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), middleware.UserID(c), c.Query("search"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// DeleteMember handles DELETE /api/v1/members/:id.
func DeleteMember(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "member not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
