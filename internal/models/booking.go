package models

import "time"

const (
	BookingTypeEquipment    = "equipment"
	BookingTypeCoachSession = "coach_session"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no_show"
)

// Booking reserves either a piece of equipment or a coach's time for one
// user over [StartTime, EndTime). Cascade children are equipment bookings
// with ParentBookingID pointing at the owning coach-session booking.
// Bookings are never deleted; cancellation keeps the row for audit.
type Booking struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	EquipmentID        *int64     `json:"equipment_id,omitempty"`
	CoachID            *int64     `json:"coach_id,omitempty"`
	BookingType        string     `json:"booking_type"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	TokenCost          int        `json:"token_cost"`
	ParentBookingID    *int64     `json:"parent_booking_id,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CheckInAt          *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt         *time.Time `json:"check_out_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BookingDetail bundles a booking with its cascade children and the
// equipment links recorded for a coach session.
type BookingDetail struct {
	Booking
	Children []Booking               `json:"children,omitempty"`
	Links    []CoachSessionEquipment `json:"equipment_links,omitempty"`
}

// CoachSessionEquipment links a coach-session booking to an equipment
// booking auto-reserved for it. EquipmentBookingID is nil when the
// reservation could not be made; the row then records the shortfall.
type CoachSessionEquipment struct {
	ID                 int64     `json:"id"`
	CoachBookingID     int64     `json:"coach_booking_id"`
	EquipmentBookingID *int64    `json:"equipment_booking_id,omitempty"`
	EquipmentID        int64     `json:"equipment_id"`
	PlanExerciseID     *int64    `json:"plan_exercise_id,omitempty"`
	ApprovedByCoach    bool      `json:"approved_by_coach"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
