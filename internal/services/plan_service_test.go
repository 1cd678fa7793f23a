package services

import (
	"errors"
	"testing"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
)

func TestEntryStatusGatesAITouchedPlans(t *testing.T) {
	cases := map[string]string{
		models.PlanSourceAI:     models.PlanStatusPendingReview,
		models.PlanSourceHybrid: models.PlanStatusPendingReview,
		models.PlanSourceCoach:  models.PlanStatusApproved,
	}
	for source, want := range cases {
		got, err := entryStatus(source)
		if err != nil {
			t.Fatalf("entryStatus(%q): %v", source, err)
		}
		if got != want {
			t.Fatalf("entryStatus(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestEntryStatusRejectsUnknownSource(t *testing.T) {
	if _, err := entryStatus("oracle"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestActivationLockKeyIsDeterministic(t *testing.T) {
	first := activationLockKey(42, models.PlanTypeWorkout)
	second := activationLockKey(42, models.PlanTypeWorkout)
	if first != second {
		t.Fatalf("same inputs produced different keys: %d vs %d", first, second)
	}
}

func TestActivationLockKeySeparatesUsersAndTypes(t *testing.T) {
	base := activationLockKey(42, models.PlanTypeWorkout)
	if activationLockKey(43, models.PlanTypeWorkout) == base {
		t.Fatal("different users collided on the same lock key")
	}
	if activationLockKey(42, models.PlanTypeNutrition) == base {
		t.Fatal("different plan types collided on the same lock key")
	}
}
