package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/jackc/pgx/v5"
)

const planColumns = `id, user_id, plan_type, source, status, tokens_spent,
	reviewer_id, review_comments, reviewed_at, created_at, updated_at`

type CreatePlanInput struct {
	UserID      int64
	PlanType    string
	Source      string
	Status      string
	TokensSpent int
}

type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row pgx.Row) (*models.Plan, error) {
	var p models.Plan
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.PlanType,
		&p.Source,
		&p.Status,
		&p.TokensSpent,
		&p.ReviewerID,
		&p.ReviewComments,
		&p.ReviewedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	query := fmt.Sprintf(`
		INSERT INTO plans (user_id, plan_type, source, status, tokens_spent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, planColumns)
	return scanPlan(r.db.QueryRow(ctx, query, input.UserID, input.PlanType, input.Source, input.Status, input.TokensSpent))
}

func (r *PlanRepository) GetByID(ctx context.Context, planID int64) (*models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1`, planColumns)
	return scanPlan(r.db.QueryRow(ctx, query, planID))
}

func (r *PlanRepository) ListByUser(ctx context.Context, userID int64) ([]models.Plan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM plans
		WHERE user_id = $1
		ORDER BY id DESC
	`, planColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	planID int64,
	currentStatus string,
	nextStatus string,
) (*models.Plan, error) {
	query := fmt.Sprintf(`
		UPDATE plans
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, planColumns)
	return scanPlan(r.db.QueryRow(ctx, query, planID, currentStatus, nextStatus))
}

// Review moves a plan out of pending_review, recording who decided and why.
func (r *PlanRepository) Review(
	ctx context.Context,
	planID int64,
	nextStatus string,
	reviewerID int64,
	comments *string,
	at time.Time,
) (*models.Plan, error) {
	query := fmt.Sprintf(`
		UPDATE plans
		SET status = $2, reviewer_id = $3, review_comments = $4, reviewed_at = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_review'
		RETURNING %s
	`, planColumns)
	return scanPlan(r.db.QueryRow(ctx, query, planID, nextStatus, reviewerID, comments, at))
}

// ArchiveActive retires whatever plan of this type is currently active for
// the user. Returns the number of plans archived (0 or 1 given the partial
// unique index).
func (r *PlanRepository) ArchiveActive(ctx context.Context, userID int64, planType string) (int64, error) {
	query := `
		UPDATE plans
		SET status = 'archived', updated_at = NOW()
		WHERE user_id = $1 AND plan_type = $2 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, userID, planType)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListExercises returns the plan's exercise lines in sequence order. The
// cascade consumes these to find required equipment.
func (r *PlanRepository) ListExercises(ctx context.Context, planID int64) ([]models.PlanExercise, error) {
	query := `
		SELECT id, plan_id, name, equipment_id, position
		FROM plan_exercises
		WHERE plan_id = $1
		ORDER BY position ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.PlanExercise, 0)
	for rows.Next() {
		var ex models.PlanExercise
		if err := rows.Scan(&ex.ID, &ex.PlanID, &ex.Name, &ex.EquipmentID, &ex.Position); err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}
