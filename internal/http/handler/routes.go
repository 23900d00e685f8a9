package handler

import (
	"database/sql"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/RajeshPuri/VaultFlow/internal/http/middleware"
	"github.com/RajeshPuri/VaultFlow/internal/service"
	"github.com/RajeshPuri/VaultFlow/internal/token"
	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

// Services bundles the use-case layer for route registration.
type Services struct {
	Auth    service.AuthService
	Folders service.FolderService
	Files   service.FileService
	Notes   service.NoteService
	Members service.MemberService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers stay
// thin; all business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, tokens *token.Manager, hub *ws.Hub, svcs Services, upgradeURL string) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/auth")
	auth.Post("/register", Register(svcs.Auth))
	auth.Post("/login", Login(svcs.Auth))
	auth.Get("/verify", VerifyEmail(svcs.Auth))
	auth.Post("/federated", FederatedLogin(svcs.Auth))
	auth.Post("/password-reset", RequestPasswordReset(svcs.Auth))
	auth.Post("/password-reset/confirm", ConfirmPasswordReset(svcs.Auth))

	// Everything under /api/v1 is owner-scoped; RequireAuth resolves the
	// owner from the access token.
	api := app.Group("/api/v1", middleware.RequireAuth(tokens))

	api.Post("/folders", CreateFolder(svcs.Folders))
	api.Get("/folders", ListFolders(svcs.Folders))
	api.Delete("/folders/:id", DeleteFolder(svcs.Folders))

	api.Post("/files", UploadFile(svcs.Files, upgradeURL))
	api.Get("/files", ListFiles(svcs.Files))
	api.Get("/files/:id", GetFile(svcs.Files))
	api.Delete("/files/:id", DeleteFile(svcs.Files))

	api.Post("/notes", CreateNote(svcs.Notes))
	api.Get("/notes", ListNotes(svcs.Notes))
	api.Get("/notes/:id", GetNote(svcs.Notes))
	api.Delete("/notes/:id", DeleteNote(svcs.Notes))

	api.Post("/members", CreateMember(svcs.Members))
	api.Get("/members", ListMembers(svcs.Members))
	api.Delete("/members/:id", DeleteMember(svcs.Members))

	// Live snapshot stream. The same access token guards the upgrade; browser
	// clients pass it as ?token=.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", middleware.RequireAuth(tokens), websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.UserIDLocalKey).(string)
		hub.HandleConnection(&ws.Client{UserID: userID, Conn: conn})
	}))
}
