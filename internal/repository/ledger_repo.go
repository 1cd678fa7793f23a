package repository

import (
	"context"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
)

type AppendEntryInput struct {
	UserID          int64
	Amount          int
	TransactionType string
	ReferenceID     *int64
	PaymentRef      *string
	BalanceBefore   int
	BalanceAfter    int
}

type LedgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts one immutable entry. Entries are never updated or deleted;
// the balance_after = balance_before + amount check rides in the schema.
func (r *LedgerRepository) Append(ctx context.Context, input AppendEntryInput) (*models.TokenTransaction, error) {
	query := `
		INSERT INTO token_transactions (user_id, amount, transaction_type, reference_id, payment_ref, balance_before, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, amount, transaction_type, reference_id, payment_ref, balance_before, balance_after, created_at
	`
	var entry models.TokenTransaction
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.Amount,
		input.TransactionType,
		input.ReferenceID,
		input.PaymentRef,
		input.BalanceBefore,
		input.BalanceAfter,
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.TransactionType,
		&entry.ReferenceID,
		&entry.PaymentRef,
		&entry.BalanceBefore,
		&entry.BalanceAfter,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LedgerRepository) ListByUser(
	ctx context.Context,
	userID int64,
	limit int,
	offset int,
) ([]models.TokenTransaction, error) {
	query := `
		SELECT id, user_id, amount, transaction_type, reference_id, payment_ref, balance_before, balance_after, created_at
		FROM token_transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.TokenTransaction, 0)
	for rows.Next() {
		var entry models.TokenTransaction
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.TransactionType,
			&entry.ReferenceID,
			&entry.PaymentRef,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *LedgerRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM token_transactions WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}

func (r *LedgerRepository) GetPackage(ctx context.Context, packageID int64) (*models.TokenPackage, error) {
	query := `
		SELECT id, name, tokens, price_cents, is_active, created_at
		FROM token_packages
		WHERE id = $1
	`
	var pkg models.TokenPackage
	err := r.db.QueryRow(ctx, query, packageID).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Tokens,
		&pkg.PriceCents,
		&pkg.IsActive,
		&pkg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
