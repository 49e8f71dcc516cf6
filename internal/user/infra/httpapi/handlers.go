package httpapi

import (
	"github.com/artsense/artsense-server/internal/auth"
	"github.com/artsense/artsense-server/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes account and token endpoints.
type Handler struct {
	users  domain.UserRepository
	issuer *auth.TokenIssuer
}

func NewHandler(users domain.UserRepository, issuer *auth.TokenIssuer) *Handler {
	return &Handler{users: users, issuer: issuer}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	requireAuth := auth.RequireAuth(h.issuer)
	requireAdmin := auth.RequireAdmin(h.users)

	app.Post("/jwt", h.issueToken)
	app.Get("/users", requireAuth, requireAdmin, h.listUsers)
	app.Post("/users", h.registerUser)
	app.Get("/users/admin/:email", requireAuth, h.checkAdmin)
	app.Patch("/users/admin/:id", requireAuth, requireAdmin, h.promoteToAdmin)
	app.Delete("/users/:id", requireAuth, requireAdmin, h.deleteUser)
}

type tokenRequest struct {
	Email string `json:"email"`
}

func (h *Handler) issueToken(c *fiber.Ctx) error {
	var body tokenRequest
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}
	token, err := h.issuer.Issue(body.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}
	return c.JSON(fiber.Map{"token": token})
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list users"})
	}
	return c.JSON(users)
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// registerUser creates the account unless the email is already taken, in
// which case it answers like the original frontend expects instead of
// erroring.
func (h *Handler) registerUser(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}

	existing, err := h.users.GetByEmail(c.Context(), body.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to look up user"})
	}
	if existing != nil {
		return c.JSON(fiber.Map{"message": "user already exists", "insertedId": nil})
	}

	user := domain.NewUser(body.Email, body.Name)
	if err := h.users.Create(c.Context(), user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create user"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"insertedId": user.ID})
}

// checkAdmin reports whether the given email holds the admin role. A caller
// may only ask about itself.
func (h *Handler) checkAdmin(c *fiber.Ctx) error {
	email := c.Params("email")
	if auth.CallerEmail(c) != email {
		return c.JSON(fiber.Map{"admin": false})
	}
	user, err := h.users.GetByEmail(c.Context(), email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to look up user"})
	}
	return c.JSON(fiber.Map{"admin": user != nil && user.IsAdmin()})
}

func (h *Handler) promoteToAdmin(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if err := h.users.PromoteToAdmin(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to promote user"})
	}
	return c.JSON(fiber.Map{"modified": true})
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if err := h.users.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete user"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
