package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/middleware"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/services"
)

type AdminHandler struct {
	svc *services.AdminService
}

func NewAdminHandler(svc *services.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type adminPairReq struct {
	User1ID string `json:"user1Id"`
	User2ID string `json:"user2Id"`
	Mutual  *bool  `json:"mutual"`
}

func (r *adminPairReq) ids() (primitive.ObjectID, primitive.ObjectID, error) {
	id1, err := primitive.ObjectIDFromHex(r.User1ID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	id2, err := primitive.ObjectIDFromHex(r.User2ID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return id1, id2, nil
}

// mutual defaults to true when omitted.
func (r *adminPairReq) mutual() bool {
	return r.Mutual == nil || *r.Mutual
}

func (h *AdminHandler) MakeBuddy(c *fiber.Ctx) error {
	var req adminPairReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	id1, id2, err := req.ids()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}

	if err := h.svc.MakeBuddy(c.Context(), middleware.Username(c), id1, id2); err != nil {
		return err
	}
	return c.JSON(models.OK("Users successfully set as primary buddies", nil))
}

type adminUserReq struct {
	UserID string `json:"userId"`
}

func (h *AdminHandler) RemoveBuddy(c *fiber.Ctx) error {
	var req adminUserReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	id, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}

	if err := h.svc.RemoveBuddy(c.Context(), middleware.Username(c), id); err != nil {
		return err
	}
	return c.JSON(models.OK("Buddy relationship successfully removed", nil))
}

func (h *AdminHandler) AddToBuddies(c *fiber.Ctx) error {
	var req adminPairReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	id1, id2, err := req.ids()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}

	if err := h.svc.AddToBuddies(c.Context(), middleware.Username(c), id1, id2, req.mutual()); err != nil {
		return err
	}
	return c.JSON(models.OK("User relationship added to buddies list", nil))
}

func (h *AdminHandler) RemoveFromBuddies(c *fiber.Ctx) error {
	var req adminPairReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	id1, id2, err := req.ids()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}

	if err := h.svc.RemoveFromBuddies(c.Context(), middleware.Username(c), id1, id2, req.mutual()); err != nil {
		return err
	}
	return c.JSON(models.OK("User removed from buddies list", nil))
}
