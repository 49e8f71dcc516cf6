package httpapi

import (
	"github.com/artsense/artsense-server/internal/auth"
	"github.com/artsense/artsense-server/internal/catalog/domain"
	userdomain "github.com/artsense/artsense-server/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handler exposes the catalog CRUD: photos, events, inquiries and auction lot
// listings. Writes that curate the catalog are admin-only, matching the
// storefront's expectations.
type Handler struct {
	photos    domain.PhotoRepository
	events    domain.EventRepository
	inquiries domain.InquiryRepository
	listings  domain.LotListingRepository
	users     userdomain.UserRepository
	issuer    *auth.TokenIssuer
}

func NewHandler(
	photos domain.PhotoRepository,
	events domain.EventRepository,
	inquiries domain.InquiryRepository,
	listings domain.LotListingRepository,
	users userdomain.UserRepository,
	issuer *auth.TokenIssuer,
) *Handler {
	return &Handler{
		photos:    photos,
		events:    events,
		inquiries: inquiries,
		listings:  listings,
		users:     users,
		issuer:    issuer,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	requireAuth := auth.RequireAuth(h.issuer)
	requireAdmin := auth.RequireAdmin(h.users)

	app.Get("/photo", h.listPhotos)
	app.Get("/photoCount", h.countPhotos)
	app.Get("/photo/:id", h.getPhoto)
	app.Post("/photo", requireAuth, requireAdmin, h.createPhoto)

	app.Get("/event", h.listEvents)
	app.Post("/event", requireAuth, requireAdmin, h.createEvent)

	app.Get("/inquire", h.listInquiries)
	app.Post("/inquire", h.createInquiry)
	app.Delete("/inquire/:id", requireAuth, requireAdmin, h.deleteInquiry)

	app.Get("/auction", h.listLotListings)
	app.Get("/auction/:id", h.getLotListing)
	app.Post("/auction", requireAuth, requireAdmin, h.createLotListing)
}

func (h *Handler) listPhotos(c *fiber.Ctx) error {
	photos, err := h.photos.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list photos"})
	}
	return c.JSON(photos)
}

func (h *Handler) countPhotos(c *fiber.Ctx) error {
	count, err := h.photos.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count photos"})
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *Handler) getPhoto(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid photo id"})
	}
	photo, err := h.photos.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load photo"})
	}
	if photo == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "photo not found"})
	}
	return c.JSON(photo)
}

type photoRequest struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ImageURL    string `json:"image_url"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func (h *Handler) createPhoto(c *fiber.Ctx) error {
	var body photoRequest
	if err := c.BodyParser(&body); err != nil || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	price := decimal.Zero
	if body.Price != "" {
		parsed, err := decimal.NewFromString(body.Price)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price"})
		}
		price = parsed
	}
	photo := &domain.Photo{
		ID:          uuid.New(),
		Title:       body.Title,
		Artist:      body.Artist,
		ImageURL:    body.ImageURL,
		Price:       price,
		Description: body.Description,
	}
	if err := h.photos.Create(c.Context(), photo); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create photo"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"insertedId": photo.ID})
}

func (h *Handler) listEvents(c *fiber.Ctx) error {
	events, err := h.events.ListNewestFirst(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list events"})
	}
	return c.JSON(events)
}

type eventRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (h *Handler) createEvent(c *fiber.Ctx) error {
	var body eventRequest
	if err := c.BodyParser(&body); err != nil || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	event := &domain.Event{
		ID:          uuid.New(),
		Title:       body.Title,
		Location:    body.Location,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	}
	if err := h.events.Create(c.Context(), event); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create event"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"insertedId": event.ID})
}

func (h *Handler) listInquiries(c *fiber.Ctx) error {
	inquiries, err := h.inquiries.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list inquiries"})
	}
	return c.JSON(inquiries)
}

type inquiryRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) createInquiry(c *fiber.Ctx) error {
	var body inquiryRequest
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and message are required"})
	}
	inquiry := &domain.Inquiry{
		ID:      uuid.New(),
		Email:   body.Email,
		Message: body.Message,
	}
	if err := h.inquiries.Create(c.Context(), inquiry); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create inquiry"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"insertedId": inquiry.ID})
}

func (h *Handler) deleteInquiry(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inquiry id"})
	}
	if err := h.inquiries.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete inquiry"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (h *Handler) listLotListings(c *fiber.Ctx) error {
	listings, err := h.listings.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list auction lots"})
	}
	return c.JSON(listings)
}

func (h *Handler) getLotListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lot id"})
	}
	listing, err := h.listings.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load auction lot"})
	}
	if listing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction lot not found"})
	}
	return c.JSON(listing)
}

type lotListingRequest struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ImageURL    string `json:"image_url"`
	Estimate    string `json:"estimate"`
	Description string `json:"description"`
}

func (h *Handler) createLotListing(c *fiber.Ctx) error {
	var body lotListingRequest
	if err := c.BodyParser(&body); err != nil || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	listing := &domain.LotListing{
		ID:          uuid.New(),
		Title:       body.Title,
		Artist:      body.Artist,
		ImageURL:    body.ImageURL,
		Estimate:    body.Estimate,
		Description: body.Description,
	}
	if err := h.listings.Create(c.Context(), listing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create auction lot"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"insertedId": listing.ID})
}
