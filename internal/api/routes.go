package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)

	app.Get("/login", handler.ShowLoginPage)
	app.Get("/register", handler.ShowRegisterPage)
	app.Get("/", handler.AuthRequired, handler.ShowDashboard)
	app.Get("/dashboard", handler.AuthRequired, handler.ShowDashboard)

	clients := app.Group("/clients", handler.AuthRequired)
	clients.Get("", handler.ShowClients)
	clients.Get("/new", handler.ShowNewClient)
	clients.Get("/:id", handler.ShowClient)
	clients.Get("/:id/edit", handler.ShowEditClient)

	app.Get("/tarot", handler.AuthRequired, handler.ShowTarot)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.loginLimiter, handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	clients := api.Group("/clients", handler.AuthRequired)
	clients.Get("/search", handler.SearchClients)
	clients.Post("", handler.CreateClient)
	clients.Post("/:id", handler.UpdateClient)
	clients.Post("/:id/notes", handler.UpdateClientNotes)
	clients.Post("/:id/delete", handler.DeleteClient)
	clients.Delete("/:id", handler.DeleteClient)
	clients.Get("/:id/profiles", handler.ListProfiles)
	clients.Post("/:id/profiles", handler.CreateProfile)
	clients.Get("/:id/tarot", handler.ListClientSessions)
	clients.Post("/:id/tarot", handler.CreateTarotSession)
	clients.Get("/:id/permissions", handler.ListPermissions)
	clients.Post("/:id/permissions", handler.GrantPermission)

	profiles := api.Group("/profiles", handler.AuthRequired)
	profiles.Post("/:id", handler.UpdateProfile)
	profiles.Post("/:id/interpretation", handler.UpdateProfileInterpretation)
	profiles.Post("/:id/delete", handler.DeleteProfile)
	profiles.Delete("/:id", handler.DeleteProfile)

	tarot := api.Group("/tarot", handler.AuthRequired)
	tarot.Post("/:id", handler.UpdateTarotSession)
	tarot.Post("/:id/interpretation", handler.UpdateTarotInterpretation)
	tarot.Post("/:id/delete", handler.DeleteTarotSession)
	tarot.Delete("/:id", handler.DeleteTarotSession)

	permissions := api.Group("/permissions", handler.AuthRequired)
	permissions.Post("/:id", handler.UpdatePermission)
	permissions.Post("/:id/toggle-edit", handler.TogglePermissionEdit)
	permissions.Post("/:id/delete", handler.RevokePermission)
	permissions.Delete("/:id", handler.RevokePermission)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
