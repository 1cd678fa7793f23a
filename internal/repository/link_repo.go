package repository

import (
	"context"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
)

type CreateLinkInput struct {
	CoachBookingID     int64
	EquipmentBookingID *int64
	EquipmentID        int64
	PlanExerciseID     *int64
	Notes              *string
}

type LinkRepository struct {
	db DBTX
}

func NewLinkRepository(db DBTX) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Create(ctx context.Context, input CreateLinkInput) (*models.CoachSessionEquipment, error) {
	query := `
		INSERT INTO coach_session_equipment (coach_booking_id, equipment_booking_id, equipment_id, plan_exercise_id, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, coach_booking_id, equipment_booking_id, equipment_id, plan_exercise_id, approved_by_coach, notes, created_at
	`
	var link models.CoachSessionEquipment
	err := r.db.QueryRow(
		ctx,
		query,
		input.CoachBookingID,
		input.EquipmentBookingID,
		input.EquipmentID,
		input.PlanExerciseID,
		input.Notes,
	).Scan(
		&link.ID,
		&link.CoachBookingID,
		&link.EquipmentBookingID,
		&link.EquipmentID,
		&link.PlanExerciseID,
		&link.ApprovedByCoach,
		&link.Notes,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *LinkRepository) ListByCoachBooking(ctx context.Context, coachBookingID int64) ([]models.CoachSessionEquipment, error) {
	query := `
		SELECT id, coach_booking_id, equipment_booking_id, equipment_id, plan_exercise_id, approved_by_coach, notes, created_at
		FROM coach_session_equipment
		WHERE coach_booking_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, coachBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]models.CoachSessionEquipment, 0)
	for rows.Next() {
		var link models.CoachSessionEquipment
		if err := rows.Scan(
			&link.ID,
			&link.CoachBookingID,
			&link.EquipmentBookingID,
			&link.EquipmentID,
			&link.PlanExerciseID,
			&link.ApprovedByCoach,
			&link.Notes,
			&link.CreatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Approve records the coach's confirmation of an auto-selected equipment row.
func (r *LinkRepository) Approve(ctx context.Context, linkID int64) (*models.CoachSessionEquipment, error) {
	query := `
		UPDATE coach_session_equipment
		SET approved_by_coach = TRUE
		WHERE id = $1
		RETURNING id, coach_booking_id, equipment_booking_id, equipment_id, plan_exercise_id, approved_by_coach, notes, created_at
	`
	var link models.CoachSessionEquipment
	err := r.db.QueryRow(ctx, query, linkID).Scan(
		&link.ID,
		&link.CoachBookingID,
		&link.EquipmentBookingID,
		&link.EquipmentID,
		&link.PlanExerciseID,
		&link.ApprovedByCoach,
		&link.Notes,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}
