package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/middleware"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/services"
)

type UserHandler struct {
	dir         *services.UserDirectory
	suggestions *services.SuggestionService
}

func NewUserHandler(dir *services.UserDirectory, suggestions *services.SuggestionService) *UserHandler {
	return &UserHandler{dir: dir, suggestions: suggestions}
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	user, err := h.dir.FindByUsername(c.Context(), middleware.Username(c))
	if err != nil {
		return err
	}
	return c.JSON(models.OK("User profile retrieved successfully", fiber.Map{"user": user}))
}

func (h *UserHandler) GetUserProfile(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}

	user, err := h.dir.FindByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(models.OK("User profile retrieved successfully", fiber.Map{"user": user}))
}

func (h *UserHandler) GetSuggestions(c *fiber.Ctx) error {
	suggestions, err := h.suggestions.Suggest(c.Context(), middleware.Username(c))
	if err != nil {
		return err
	}
	return c.JSON(models.OK("Suggestions retrieved successfully", fiber.Map{"suggestions": suggestions}))
}
