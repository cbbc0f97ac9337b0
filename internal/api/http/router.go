package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HowsAir/server-sub001/internal/api/http/handlers"
	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Stations *handlers.StationsHandler
	Verify   *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	// Email verification precedes registration: the register handler
	// compares the token's email against the body.
	authGroup.Post("/email/code", cfg.Auth.RequestEmailVerification)
	authGroup.Post("/email/confirm", cfg.Auth.ConfirmEmailVerification)
	authGroup.Post("/register", cfg.Verify.RequireEmailVerificationToken, cfg.Auth.Register)

	authGroup.Post("/password/forgot", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/code", cfg.Auth.ValidateResetCode)
	authGroup.Put("/password/reset", cfg.Verify.RequirePasswordResetToken, cfg.Auth.CompletePasswordReset)
	authGroup.Put("/password/change", cfg.Verify.RequireSession, cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.Verify.RequireSession)
	users.Get("/me", cfg.Users.Profile)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)

	stations := app.Group("/stations", cfg.Verify.RequireSession)
	stations.Get("/markers", auth.RequireRole(domain.RoleUser, domain.RoleAdmin), cfg.Stations.Markers)
	stations.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Stations.Create)
	stations.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Stations.Update)
	stations.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Stations.Delete)
}
