package repository

import (
	"context"
	"time"
)

// SlotRow is one availability window of the materialized grid. Times of day
// travel as "HH:MM:SS" strings to keep the TIME column mapping explicit.
type SlotRow struct {
	ID        int64
	StartTime string
	EndTime   string
	IsBooked  bool
}

type SlotRepository struct {
	db DBTX
}

func NewSlotRepository(db DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

// GenerateDay materializes one row per hourly window of the equipment's day.
// It is idempotent: the unique index on (equipment_id, slot_date, start_time)
// absorbs re-runs, so the lazy callers and a warmup job can both invoke it.
func (r *SlotRepository) GenerateDay(
	ctx context.Context,
	equipmentID int64,
	date time.Time,
	openHour int,
	closeHour int,
) error {
	query := `
		INSERT INTO equipment_time_slots (equipment_id, slot_date, start_time, end_time)
		SELECT $1, $2::date, make_time(h, 0, 0), make_time(h + 1, 0, 0)
		FROM generate_series($3::int, $4::int - 1) AS h
		ON CONFLICT (equipment_id, slot_date, start_time) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, equipmentID, date.Format("2006-01-02"), openHour, closeHour)
	return err
}

// Reserve flips one window to booked with a single conditional update. A
// false return means the row exists but another booking already holds it;
// existence is checked separately by the caller.
func (r *SlotRepository) Reserve(
	ctx context.Context,
	equipmentID int64,
	date time.Time,
	startTime string,
	userID int64,
	bookingID int64,
	coachSession bool,
) (bool, error) {
	query := `
		UPDATE equipment_time_slots
		SET is_booked = TRUE,
		    booked_by_user_id = $4,
		    booking_id = $5,
		    is_coach_session = $6,
		    booked_at = NOW()
		WHERE equipment_id = $1
		  AND slot_date = $2::date
		  AND start_time = $3::time
		  AND is_booked = FALSE
	`
	tag, err := r.db.Exec(ctx, query, equipmentID, date.Format("2006-01-02"), startTime, userID, bookingID, coachSession)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) Exists(
	ctx context.Context,
	equipmentID int64,
	date time.Time,
	startTime string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM equipment_time_slots
			WHERE equipment_id = $1
			  AND slot_date = $2::date
			  AND start_time = $3::time
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, equipmentID, date.Format("2006-01-02"), startTime).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ReleaseByBooking clears every window a booking holds. Used on
// cancellation; returns how many windows were freed.
func (r *SlotRepository) ReleaseByBooking(ctx context.Context, bookingID int64) (int64, error) {
	query := `
		UPDATE equipment_time_slots
		SET is_booked = FALSE,
		    booked_by_user_id = NULL,
		    booking_id = NULL,
		    is_coach_session = FALSE,
		    booked_at = NULL
		WHERE booking_id = $1
	`
	tag, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) ListDay(
	ctx context.Context,
	equipmentID int64,
	date time.Time,
) ([]SlotRow, error) {
	query := `
		SELECT id, start_time::text, end_time::text, is_booked
		FROM equipment_time_slots
		WHERE equipment_id = $1 AND slot_date = $2::date
		ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, equipmentID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]SlotRow, 0)
	for rows.Next() {
		var s SlotRow
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.IsBooked); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
