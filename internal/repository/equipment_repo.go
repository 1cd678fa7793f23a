package repository

import (
	"context"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
)

type EquipmentRepository struct {
	db DBTX
}

func NewEquipmentRepository(db DBTX) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*models.Equipment, error) {
	query := `
		SELECT id, name, category, token_rate_per_hour, is_active, created_at
		FROM equipment
		WHERE id = $1
	`
	var eq models.Equipment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&eq.ID,
		&eq.Name,
		&eq.Category,
		&eq.TokenRatePerHour,
		&eq.IsActive,
		&eq.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *EquipmentRepository) ListActive(ctx context.Context) ([]models.Equipment, error) {
	query := `
		SELECT id, name, category, token_rate_per_hour, is_active, created_at
		FROM equipment
		WHERE is_active = TRUE
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Equipment, 0)
	for rows.Next() {
		var eq models.Equipment
		if err := rows.Scan(
			&eq.ID,
			&eq.Name,
			&eq.Category,
			&eq.TokenRatePerHour,
			&eq.IsActive,
			&eq.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, eq)
	}
	return items, rows.Err()
}
