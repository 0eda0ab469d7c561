package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JaiminPatel345/make-my-buddy/internal/handlers"
)

// Handlers groups everything Setup needs to register the API surface.
type Handlers struct {
	Auth  *handlers.AuthHandler
	User  *handlers.UserHandler
	Buddy *handlers.BuddyHandler
	Admin *handlers.AdminHandler
}

func Setup(app *fiber.App, h Handlers, auth fiber.Handler, adminOnly fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/verify-otp", h.Auth.VerifyOTP)
	authGroup.Post("/resend-otp", h.Auth.ResendOTP)
	authGroup.Put("/update-profile", auth, h.Auth.UpdateProfile)

	user := api.Group("/user", auth)
	user.Get("/me", h.User.GetMyProfile)
	user.Get("/:userId", h.User.GetUserProfile)

	request := api.Group("/buddy-request", auth)
	request.Post("/send", h.Buddy.SendRequest)
	request.Post("/accept", h.Buddy.AcceptRequest)
	request.Post("/reject", h.Buddy.RejectRequest)
	request.Post("/cancel", h.Buddy.CancelRequest)
	request.Get("/sent", h.Buddy.ListSent)
	request.Get("/received", h.Buddy.ListReceived)

	buddy := api.Group("/buddy", auth)
	buddy.Post("/remove", h.Buddy.RemoveBuddy)
	buddy.Post("/toggle-block", h.Buddy.ToggleBlock)
	buddy.Get("/suggestions", h.User.GetSuggestions)

	buddies := api.Group("/buddies", auth)
	buddies.Post("/remove", h.Buddy.RemoveFromBuddies)

	admin := api.Group("/admin", auth, adminOnly)
	admin.Post("/make-buddy", h.Admin.MakeBuddy)
	admin.Post("/remove-buddy", h.Admin.RemoveBuddy)
	admin.Post("/add-to-buddies", h.Admin.AddToBuddies)
	admin.Post("/remove-from-buddies", h.Admin.RemoveFromBuddies)
}
