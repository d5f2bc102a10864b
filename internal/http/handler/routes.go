package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"infolock/internal/http/middleware"
	"infolock/internal/service"
)

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a trivial liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
//
// Route groups:
// - /health, /healthz: unauthenticated probes
// - /api/auth/*: unauthenticated register/login
// - /api/documents/share/:token (GET): public token-based access
// - everything else under /api/documents: bearer-token protected
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	authSvc service.AuthService,
	docSvc service.DocumentService,
	shareSvc service.ShareService,
	tokens middleware.TokenValidator,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/api/auth")
	auth.Post("/register", Register(authSvc))
	auth.Post("/login", Login(authSvc))

	docs := app.Group("/api/documents")

	// The share view route must be registered before the auth guard so tokens
	// work without a session.
	docs.Get("/share/:token", ViewSharedDocument(shareSvc))

	docs.Use(middleware.BearerAuth(tokens))

	docs.Post("/upload", UploadDocument(docSvc))
	docs.Get("/", ListDocuments(docSvc))
	docs.Get("/category/:category", ListDocumentsByCategory(docSvc))
	docs.Get("/download/:id", DownloadDocument(docSvc))
	docs.Get("/view/:id", ViewDocument(docSvc))

	docs.Post("/share", CreateShareLink(shareSvc))
	docs.Delete("/share/:token", DeactivateShareLink(shareSvc))
	docs.Get("/:id/is-public", IsDocumentPublic(shareSvc))
	docs.Put("/:id/toggle-public", ToggleDocumentPublic(shareSvc))

	docs.Get("/:id", GetDocument(docSvc))
	docs.Put("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
}
