package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JaiminPatel345/make-my-buddy/internal/middleware"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
	"github.com/JaiminPatel345/make-my-buddy/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
	dir *services.UserDirectory
}

func NewAuthHandler(svc *services.AuthService, dir *services.UserDirectory) *AuthHandler {
	return &AuthHandler{svc: svc, dir: dir}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}

	user, err := h.svc.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OK("Created successfully", fiber.Map{"user": user}))
}

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}

	user, tok, err := h.svc.Login(c.Context(), req.Identifier, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(models.OK("Login successful", fiber.Map{"user": user, "token": tok}))
}

type verifyOTPReq struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}

	user, tok, err := h.svc.VerifyOTP(c.Context(), req.Username, req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(models.OK("OTP verified", fiber.Map{"user": user, "token": tok}))
}

type resendOTPReq struct {
	Username string `json:"username"`
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}

	if err := h.svc.ResendOTP(c.Context(), req.Username); err != nil {
		return err
	}
	return c.JSON(models.OK("OTP sent", nil))
}

type updateProfileReq struct {
	Name      *string      `json:"name"`
	Goal      *models.Goal `json:"goal"`
	Interests []string     `json:"interests"`
	Avatar    *string      `json:"avatar"`
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Invalid body"))
	}

	user, err := h.dir.UpdateProfile(c.Context(), middleware.Username(c), repository.ProfileUpdate{
		Name:      req.Name,
		Goal:      req.Goal,
		Interests: req.Interests,
		Avatar:    req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(models.OK("User updated successfully", fiber.Map{"user": user}))
}
