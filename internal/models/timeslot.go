package models

import "time"

// EquipmentTimeSlot is the atomic unit of equipment availability: one row
// per (equipment, date, window), generated ahead of time so reservation is
// a single conditional update against the unique index rather than an
// overlap scan.
type EquipmentTimeSlot struct {
	ID             int64      `json:"id"`
	EquipmentID    int64      `json:"equipment_id"`
	SlotDate       time.Time  `json:"slot_date"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	IsBooked       bool       `json:"is_booked"`
	BookedByUserID *int64     `json:"booked_by_user_id,omitempty"`
	BookingID      *int64     `json:"booking_id,omitempty"`
	IsCoachSession bool       `json:"is_coach_session"`
	CreatedAt      time.Time  `json:"created_at"`
	BookedAt       *time.Time `json:"booked_at,omitempty"`
}

// AvailabilityWindow is one entry of the availability listing.
type AvailabilityWindow struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Free      bool   `json:"free"`
}
