package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/journeyverse/backend/internal/domain"
)

type BookingRepository interface {
	// CreateWithDetails persists the booking header, its items and its
	// travelers as one transaction. Either all rows commit or none do.
	CreateWithDetails(ctx context.Context, booking *domain.Booking, items []domain.BookingItem, travelers []domain.Traveler) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingItem, error)
	ListTravelers(ctx context.Context, bookingID uuid.UUID) ([]domain.Traveler, error)
	// TransitionStatus moves a pending booking to the given status. It
	// reports false without error when the booking was not pending, which
	// makes duplicate webhook deliveries safe.
	TransitionStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_reference, user_id, total_amount, contact_email, contact_phone, travel_date, special_requests, status, created_at, updated_at`

func (r *PGBookingRepository) CreateWithDetails(ctx context.Context, booking *domain.Booking, items []domain.BookingItem, travelers []domain.Traveler) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, booking_reference, user_id, total_amount, contact_email, contact_phone, travel_date, special_requests, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.Reference, booking.UserID, booking.TotalAmount, booking.ContactEmail,
		nullable(booking.ContactPhone), booking.TravelDate, nullable(booking.SpecialRequests), booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i := range items {
		items[i].BookingID = booking.ID
		if _, err := tx.Exec(ctx, `INSERT INTO booking_items (id, booking_id, item_type, item_name, item_description, provider, external_id, quantity, unit_price, total_price, item_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			items[i].ID, items[i].BookingID, items[i].Type, items[i].Name, nullable(items[i].Description),
			items[i].Provider, nullable(items[i].ExternalID), items[i].Quantity, items[i].UnitPrice,
			items[i].TotalPrice, items[i].ItemData); err != nil {
			return err
		}
	}

	for i := range travelers {
		travelers[i].BookingID = booking.ID
		if _, err := tx.Exec(ctx, `INSERT INTO booking_travelers (id, booking_id, first_name, last_name, email, phone, date_of_birth, passport_number, nationality, traveler_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			travelers[i].ID, travelers[i].BookingID, travelers[i].FirstName, travelers[i].LastName,
			nullable(travelers[i].Email), nullable(travelers[i].Phone), travelers[i].DateOfBirth,
			nullable(travelers[i].PassportNumber), nullable(travelers[i].Nationality), travelers[i].Type); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ListItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, item_type, item_name, COALESCE(item_description, ''), provider, COALESCE(external_id, ''), quantity, unit_price, total_price, item_data
		FROM booking_items WHERE booking_id=$1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BookingItem
	for rows.Next() {
		var it domain.BookingItem
		if err := rows.Scan(&it.ID, &it.BookingID, &it.Type, &it.Name, &it.Description, &it.Provider, &it.ExternalID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.ItemData); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGBookingRepository) ListTravelers(ctx context.Context, bookingID uuid.UUID) ([]domain.Traveler, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, first_name, last_name, COALESCE(email, ''), COALESCE(phone, ''), date_of_birth, COALESCE(passport_number, ''), COALESCE(nationality, ''), traveler_type
		FROM booking_travelers WHERE booking_id=$1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var travelers []domain.Traveler
	for rows.Next() {
		var t domain.Traveler
		if err := rows.Scan(&t.ID, &t.BookingID, &t.FirstName, &t.LastName, &t.Email, &t.Phone, &t.DateOfBirth, &t.PassportNumber, &t.Nationality, &t.Type); err != nil {
			return nil, err
		}
		travelers = append(travelers, t)
	}
	return travelers, rows.Err()
}

func (r *PGBookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`,
		status, id, domain.BookingStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var phone, requests *string
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.TotalAmount, &b.ContactEmail, &phone, &b.TravelDate, &requests, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if phone != nil {
		b.ContactPhone = *phone
	}
	if requests != nil {
		b.SpecialRequests = *requests
	}
	return &b, nil
}

// nullable maps an empty string to SQL NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ BookingRepository = (*PGBookingRepository)(nil)
