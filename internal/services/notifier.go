package services

import (
	"context"
	"log"
)

// Notifier is the seam to the delivery component (push/email/etc.), which
// lives outside this service. Implementations must not block the calling
// operation on delivery.
type Notifier interface {
	BookingCancelled(ctx context.Context, userID int64, bookingID int64, reason string)
	CascadeShortfall(ctx context.Context, coachID int64, bookingID int64, equipmentID int64, detail string)
	PlanReviewed(ctx context.Context, userID int64, planID int64, status string)
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that only logs. Used until a real
// delivery backend is wired in.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) BookingCancelled(_ context.Context, userID int64, bookingID int64, reason string) {
	log.Printf("notify user %d: booking %d cancelled (%s)", userID, bookingID, reason)
}

func (logNotifier) CascadeShortfall(_ context.Context, coachID int64, bookingID int64, equipmentID int64, detail string) {
	log.Printf("notify coach %d: session %d could not reserve equipment %d: %s", coachID, bookingID, equipmentID, detail)
}

func (logNotifier) PlanReviewed(_ context.Context, userID int64, planID int64, status string) {
	log.Printf("notify user %d: plan %d is now %s", userID, planID, status)
}
