package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Photo is a gallery item for sale.
type Photo struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Artist      string          `json:"artist"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Event is a gallery event announcement. CreatedAt is server-assigned and
// drives the newest-first listing.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Inquiry is a visitor message about a piece.
type Inquiry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// LotListing is the catalog entry for an auction lot: title, artist,
// estimate. The live bidding state lives in the bidding module; the listing's
// id, as a string, is the opaque lotId used there.
type LotListing struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	ImageURL    string    `json:"image_url"`
	Estimate    string    `json:"estimate"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type PhotoRepository interface {
	List(ctx context.Context) ([]*Photo, error)
	Count(ctx context.Context) (int64, error)
	// GetByID returns nil, nil when the photo does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	Create(ctx context.Context, photo *Photo) error
}

type EventRepository interface {
	ListNewestFirst(ctx context.Context) ([]*Event, error)
	Create(ctx context.Context, event *Event) error
}

type InquiryRepository interface {
	List(ctx context.Context) ([]*Inquiry, error)
	Create(ctx context.Context, inquiry *Inquiry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LotListingRepository interface {
	List(ctx context.Context) ([]*LotListing, error)
	// GetByID returns nil, nil when the listing does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*LotListing, error)
	Create(ctx context.Context, listing *LotListing) error
}
