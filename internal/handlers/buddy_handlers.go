package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/middleware"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/services"
)

type BuddyHandler struct {
	svc *services.BuddyService
}

func NewBuddyHandler(svc *services.BuddyService) *BuddyHandler {
	return &BuddyHandler{svc: svc}
}

type sendRequestReq struct {
	UserID string             `json:"userId"`
	Type   models.RequestType `json:"type"`
}

func (h *BuddyHandler) SendRequest(c *fiber.Ctx) error {
	var req sendRequestReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	receiverID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}

	request, err := h.svc.SendRequest(c.Context(), middleware.Username(c), receiverID, req.Type)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OK("Request sent successfully", fiber.Map{"request": request}))
}

type requestActionReq struct {
	RequestID string `json:"requestId"`
}

func (h *BuddyHandler) parseRequestID(c *fiber.Ctx) (primitive.ObjectID, error) {
	var req requestActionReq
	if err := c.BodyParser(&req); err != nil {
		return primitive.NilObjectID, c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	id, err := primitive.ObjectIDFromHex(req.RequestID)
	if err != nil {
		return primitive.NilObjectID, c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid request id"))
	}
	return id, nil
}

func (h *BuddyHandler) AcceptRequest(c *fiber.Ctx) error {
	id, err := h.parseRequestID(c)
	if err != nil || id.IsZero() {
		return err
	}
	if err := h.svc.AcceptRequest(c.Context(), middleware.Username(c), id); err != nil {
		return err
	}
	return c.JSON(models.OK("Request accepted successfully", nil))
}

func (h *BuddyHandler) RejectRequest(c *fiber.Ctx) error {
	id, err := h.parseRequestID(c)
	if err != nil || id.IsZero() {
		return err
	}
	if err := h.svc.RejectRequest(c.Context(), middleware.Username(c), id); err != nil {
		return err
	}
	return c.JSON(models.OK("Request rejected successfully", nil))
}

func (h *BuddyHandler) CancelRequest(c *fiber.Ctx) error {
	id, err := h.parseRequestID(c)
	if err != nil || id.IsZero() {
		return err
	}
	if err := h.svc.CancelRequest(c.Context(), middleware.Username(c), id); err != nil {
		return err
	}
	return c.JSON(models.OK("Request cancelled successfully", nil))
}

func (h *BuddyHandler) ListSent(c *fiber.Ctx) error {
	requests, err := h.svc.ListSent(c.Context(), middleware.Username(c))
	if err != nil {
		return err
	}
	return c.JSON(models.OK("Sent requests retrieved successfully", fiber.Map{"requests": requests}))
}

func (h *BuddyHandler) ListReceived(c *fiber.Ctx) error {
	requests, err := h.svc.ListReceived(c.Context(), middleware.Username(c))
	if err != nil {
		return err
	}
	return c.JSON(models.OK("Received requests retrieved successfully", fiber.Map{"requests": requests}))
}

func (h *BuddyHandler) RemoveBuddy(c *fiber.Ctx) error {
	if err := h.svc.RemoveBuddy(c.Context(), middleware.Username(c)); err != nil {
		return err
	}
	return c.JSON(models.OK("Buddy removed successfully", nil))
}

type userTargetReq struct {
	UserID string `json:"userId"`
}

func (h *BuddyHandler) parseUserID(c *fiber.Ctx) (primitive.ObjectID, error) {
	var req userTargetReq
	if err := c.BodyParser(&req); err != nil {
		return primitive.NilObjectID, c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}
	id, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return primitive.NilObjectID, c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid user id"))
	}
	return id, nil
}

func (h *BuddyHandler) ToggleBlock(c *fiber.Ctx) error {
	id, err := h.parseUserID(c)
	if err != nil || id.IsZero() {
		return err
	}
	blocked, err := h.svc.ToggleBlock(c.Context(), middleware.Username(c), id)
	if err != nil {
		return err
	}
	if blocked {
		return c.JSON(models.OK("User blocked successfully", nil))
	}
	return c.JSON(models.OK("User unblocked successfully", nil))
}

func (h *BuddyHandler) RemoveFromBuddies(c *fiber.Ctx) error {
	id, err := h.parseUserID(c)
	if err != nil || id.IsZero() {
		return err
	}
	if err := h.svc.RemoveFromBuddies(c.Context(), middleware.Username(c), id); err != nil {
		return err
	}
	return c.JSON(models.OK("User removed from buddies successfully", nil))
}
