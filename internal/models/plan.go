package models

import "time"

const (
	PlanTypeWorkout   = "workout"
	PlanTypeNutrition = "nutrition"
)

const (
	PlanSourceAI     = "ai"
	PlanSourceCoach  = "coach"
	PlanSourceHybrid = "hybrid"
)

const (
	PlanStatusDraft         = "draft"
	PlanStatusPendingReview = "pending_review"
	PlanStatusApproved      = "approved"
	PlanStatusRejected      = "rejected"
	PlanStatusActive        = "active"
	PlanStatusArchived      = "archived"
)

// Plan carries the approval-status facet of a workout/nutrition plan. The
// plan's content lives elsewhere; only the gate that decides whether it may
// become active, and the tokens spent generating it, are tracked here.
type Plan struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	PlanType       string     `json:"plan_type"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	TokensSpent    int        `json:"tokens_spent"`
	ReviewerID     *int64     `json:"reviewer_id,omitempty"`
	ReviewComments *string    `json:"review_comments,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PlanExercise is one line of a plan's exercise sequence, optionally bound
// to the equipment it requires. The coach-session cascade reads these to
// decide which equipment to auto-reserve.
type PlanExercise struct {
	ID          int64  `json:"id"`
	PlanID      int64  `json:"plan_id"`
	Name        string `json:"name"`
	EquipmentID *int64 `json:"equipment_id,omitempty"`
	Position    int    `json:"position"`
}
