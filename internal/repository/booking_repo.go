package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, user_id, equipment_id, coach_id, booking_type, start_time, end_time,
	status, token_cost, parent_booking_id, cancellation_reason, check_in_at, check_out_at,
	created_at, updated_at`

type CreateBookingInput struct {
	UserID          int64
	EquipmentID     *int64
	CoachID         *int64
	BookingType     string
	StartTime       time.Time
	EndTime         time.Time
	TokenCost       int
	ParentBookingID *int64
}

type BookingListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.EquipmentID,
		&b.CoachID,
		&b.BookingType,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.TokenCost,
		&b.ParentBookingID,
		&b.CancellationReason,
		&b.CheckInAt,
		&b.CheckOutAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := fmt.Sprintf(`
		INSERT INTO bookings (user_id, equipment_id, coach_id, booking_type, start_time, end_time, token_cost, parent_booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, bookingColumns)

	return scanBooking(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.EquipmentID,
		input.CoachID,
		input.BookingType,
		input.StartTime,
		input.EndTime,
		input.TokenCost,
		input.ParentBookingID,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, error) {
	actorColumn := "user_id"
	if filter.Role == models.RoleCoach {
		actorColumn = "coach_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "end_time > NOW()")
	case "past":
		whereParts = append(whereParts, "end_time <= NOW()")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE %s
		ORDER BY start_time ASC, id ASC
	`, bookingColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ListChildren returns the cascade children of a coach-session booking in
// creation order.
func (r *BookingRepository) ListChildren(ctx context.Context, parentID int64) ([]models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE parent_booking_id = $1
		ORDER BY id ASC
	`, bookingColumns)

	rows, err := r.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, *b)
	}
	return children, rows.Err()
}

func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus))
}

// CancelIfCurrent transitions a booking to cancelled only if it still holds
// the status the caller observed, recording the reason.
func (r *BookingRepository) CancelIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus string,
	reason string,
) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = 'cancelled', cancellation_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, reason))
}

func (r *BookingRepository) SetCheckIn(ctx context.Context, bookingID int64, at time.Time) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET check_in_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed' AND check_in_at IS NULL
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, at))
}

func (r *BookingRepository) SetCheckOut(ctx context.Context, bookingID int64, at time.Time) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET check_out_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed' AND check_in_at IS NOT NULL AND check_out_at IS NULL
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, at))
}

// ListExpired returns bookings still pending or confirmed whose scheduled
// end has passed. The sweep re-checks each status with a conditional update,
// so this read does not need to lock anything.
func (r *BookingRepository) ListExpired(ctx context.Context, asOf time.Time, limit int) ([]models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE status IN ('pending', 'confirmed') AND end_time <= $1
		ORDER BY end_time ASC, id ASC
		LIMIT $2
	`, bookingColumns)

	rows, err := r.db.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// HasCoachConflict reports whether any non-cancelled booking of the coach
// overlaps [start, end). The caller must hold the coach's advisory lock for
// the check-then-insert to be race free.
func (r *BookingRepository) HasCoachConflict(
	ctx context.Context,
	coachID int64,
	start time.Time,
	end time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE coach_id = $1
			  AND status NOT IN ('cancelled', 'no_show')
			  AND start_time < $3
			  AND end_time > $2
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, coachID, start, end).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}
