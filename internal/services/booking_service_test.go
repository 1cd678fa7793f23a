package services

import (
	"testing"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
)

func TestCanAccessBookingByRole(t *testing.T) {
	coachID := int64(7)
	booking := &models.Booking{ID: 1, UserID: 42, CoachID: &coachID}

	if !canAccessBooking(models.RoleMember, 42, booking) {
		t.Fatal("owner should access their own booking")
	}
	if canAccessBooking(models.RoleMember, 43, booking) {
		t.Fatal("another member should not access the booking")
	}
	if !canAccessBooking(models.RoleCoach, 7, booking) {
		t.Fatal("assigned coach should access the booking")
	}
	if canAccessBooking(models.RoleCoach, 8, booking) {
		t.Fatal("unrelated coach should not access the booking")
	}
	if !canAccessBooking(models.RoleReceptionist, 99, booking) {
		t.Fatal("receptionist should access any booking")
	}
	if !canAccessBooking(models.RoleAdmin, 99, booking) {
		t.Fatal("admin should access any booking")
	}
	if canAccessBooking("stranger", 42, booking) {
		t.Fatal("unknown role should be denied")
	}
}

func TestCanAccessBookingCoachWithoutAssignment(t *testing.T) {
	booking := &models.Booking{ID: 2, UserID: 42}
	if canAccessBooking(models.RoleCoach, 7, booking) {
		t.Fatal("coach should not access an equipment booking with no coach")
	}
}
