package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanService gates whether a workout/nutrition plan may become active.
// AI-sourced plans always pass through human review; activation is
// serialized per (user, plan type) so exactly one plan of a type is active
// at any instant.
type PlanService struct {
	db       *pgxpool.Pool
	tokens   *TokenService
	notifier Notifier
}

func NewPlanService(db *pgxpool.Pool, tokens *TokenService, notifier Notifier) *PlanService {
	return &PlanService{db: db, tokens: tokens, notifier: notifier}
}

type CreatePlanInput struct {
	UserID    int64
	PlanType  string
	Source    string
	TokenCost int
}

// entryStatus decides where a freshly generated plan enters the state
// machine: anything touched by AI needs the review gate, coach-authored
// plans are pre-approved by their author.
func entryStatus(source string) (string, error) {
	switch source {
	case models.PlanSourceAI, models.PlanSourceHybrid:
		return models.PlanStatusPendingReview, nil
	case models.PlanSourceCoach:
		return models.PlanStatusApproved, nil
	default:
		return "", ErrInvalidInput
	}
}

// Create persists the plan facet and debits the generation cost up front.
// The cost is spent regardless of the eventual review outcome; a rejected
// plan does not refund it.
func (s *PlanService) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	if input.UserID <= 0 || input.TokenCost < 0 {
		return nil, ErrInvalidInput
	}
	if input.PlanType != models.PlanTypeWorkout && input.PlanType != models.PlanTypeNutrition {
		return nil, ErrInvalidInput
	}
	status, err := entryStatus(input.Source)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	plan, err := repository.NewPlanRepository(tx).Create(ctx, repository.CreatePlanInput{
		UserID:      input.UserID,
		PlanType:    input.PlanType,
		Source:      input.Source,
		Status:      status,
		TokensSpent: input.TokenCost,
	})
	if err != nil {
		return nil, err
	}

	if input.TokenCost > 0 {
		if _, err := s.tokens.Debit(ctx, tx, input.UserID, input.TokenCost, models.TransactionTypeDeduction, &plan.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return plan, nil
}

// Review approves or rejects a plan awaiting review. Rejection is terminal
// for the plan instance and keeps the tokens already spent.
func (s *PlanService) Review(
	ctx context.Context,
	reviewerID int64,
	role string,
	planID int64,
	approve bool,
	comments string,
) (*models.Plan, error) {
	if role != models.RoleCoach && role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	next := models.PlanStatusRejected
	if approve {
		next = models.PlanStatusApproved
	}

	var commentsPtr *string
	if trimmed := strings.TrimSpace(comments); trimmed != "" {
		commentsPtr = &trimmed
	}

	plan, err := repository.NewPlanRepository(s.db).Review(ctx, planID, next, reviewerID, commentsPtr, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.notifier.PlanReviewed(ctx, plan.UserID, plan.ID, plan.Status)
	return plan, nil
}

// Activate promotes an approved plan to active, archiving whatever plan of
// the same type was active before. The advisory lock on (user, type) makes
// archive-then-activate atomic against a concurrent activation.
func (s *PlanService) Activate(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error) {
	planRepo := repository.NewPlanRepository(s.db)
	plan, err := planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleMember && plan.UserID != actorID {
		return nil, ErrForbidden
	}
	if plan.Status != models.PlanStatusApproved {
		return nil, ErrInvalidTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", activationLockKey(plan.UserID, plan.PlanType)); err != nil {
		return nil, err
	}

	txPlanRepo := repository.NewPlanRepository(tx)
	if _, err := txPlanRepo.ArchiveActive(ctx, plan.UserID, plan.PlanType); err != nil {
		return nil, err
	}

	activated, err := txPlanRepo.UpdateStatusIfCurrent(ctx, planID, models.PlanStatusApproved, models.PlanStatusActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return activated, nil
}

// Deactivate archives an active plan without a successor.
func (s *PlanService) Deactivate(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error) {
	plan, err := repository.NewPlanRepository(s.db).GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleMember && plan.UserID != actorID {
		return nil, ErrForbidden
	}

	archived, err := repository.NewPlanRepository(s.db).UpdateStatusIfCurrent(ctx, planID, models.PlanStatusActive, models.PlanStatusArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return archived, nil
}

func (s *PlanService) Get(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error) {
	plan, err := repository.NewPlanRepository(s.db).GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleMember && plan.UserID != actorID {
		return nil, ErrForbidden
	}
	return plan, nil
}

func (s *PlanService) ListForUser(ctx context.Context, userID int64) ([]models.Plan, error) {
	return repository.NewPlanRepository(s.db).ListByUser(ctx, userID)
}

// activationLockKey folds (user, plan type) into the advisory-lock keyspace.
func activationLockKey(userID int64, planType string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(planType))
	return int64(h.Sum64()>>1) ^ (userID << 8)
}
