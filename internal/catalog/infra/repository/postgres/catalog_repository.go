package postgres

import (
	"context"
	"errors"

	"github.com/artsense/artsense-server/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PhotoRepository implements domain.PhotoRepository.
type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

func scanPhoto(row pgx.Row) (*domain.Photo, error) {
	photo := &domain.Photo{}
	var price string
	err := row.Scan(&photo.ID, &photo.Title, &photo.Artist, &photo.ImageURL, &price, &photo.Description, &photo.CreatedAt)
	if err != nil {
		return nil, err
	}
	photo.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return photo, nil
}

const photoColumns = `id, title, artist, image_url, price::TEXT, description, created_at`

func (r *PhotoRepository) List(ctx context.Context) ([]*domain.Photo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+photoColumns+` FROM photos ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*domain.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM photos`).Scan(&count)
	return count, err
}

func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	photo, err := scanPhoto(r.pool.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return photo, nil
}

func (r *PhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	query := `
        INSERT INTO photos (id, title, artist, image_url, price, description)
        VALUES ($1, $2, $3, $4, $5::NUMERIC, $6)
    `
	_, err := r.pool.Exec(ctx, query,
		photo.ID, photo.Title, photo.Artist, photo.ImageURL, photo.Price.String(), photo.Description)
	return err
}

// EventRepository implements domain.EventRepository.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) ListNewestFirst(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT id, title, location, description, image_url, created_at FROM events ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		if err := rows.Scan(&event.ID, &event.Title, &event.Location, &event.Description, &event.ImageURL, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `INSERT INTO events (id, title, location, description, image_url) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, event.ID, event.Title, event.Location, event.Description, event.ImageURL)
	return err
}

// InquiryRepository implements domain.InquiryRepository.
type InquiryRepository struct {
	pool *pgxpool.Pool
}

func NewInquiryRepository(pool *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{pool: pool}
}

func (r *InquiryRepository) List(ctx context.Context) ([]*domain.Inquiry, error) {
	query := `SELECT id, email, message, created_at FROM inquiries ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []*domain.Inquiry
	for rows.Next() {
		inquiry := &domain.Inquiry{}
		if err := rows.Scan(&inquiry.ID, &inquiry.Email, &inquiry.Message, &inquiry.CreatedAt); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, rows.Err()
}

func (r *InquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	query := `INSERT INTO inquiries (id, email, message) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, inquiry.ID, inquiry.Email, inquiry.Message)
	return err
}

func (r *InquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	return err
}

// LotListingRepository implements domain.LotListingRepository.
type LotListingRepository struct {
	pool *pgxpool.Pool
}

func NewLotListingRepository(pool *pgxpool.Pool) *LotListingRepository {
	return &LotListingRepository{pool: pool}
}

const listingColumns = `id, title, artist, image_url, estimate, description, created_at`

func scanListing(row pgx.Row) (*domain.LotListing, error) {
	listing := &domain.LotListing{}
	err := row.Scan(&listing.ID, &listing.Title, &listing.Artist, &listing.ImageURL,
		&listing.Estimate, &listing.Description, &listing.CreatedAt)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *LotListingRepository) List(ctx context.Context) ([]*domain.LotListing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM lot_listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.LotListing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func (r *LotListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LotListing, error) {
	listing, err := scanListing(r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM lot_listings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return listing, nil
}

func (r *LotListingRepository) Create(ctx context.Context, listing *domain.LotListing) error {
	query := `
        INSERT INTO lot_listings (id, title, artist, image_url, estimate, description)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.pool.Exec(ctx, query,
		listing.ID, listing.Title, listing.Artist, listing.ImageURL, listing.Estimate, listing.Description)
	return err
}
