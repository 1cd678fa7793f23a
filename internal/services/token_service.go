package services

import (
	"context"
	"errors"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenService owns the append-only ledger. Debit and Credit run against
// the caller's transaction handle so booking creation can fold the ledger
// write into its own unit of work; the user-row lock taken inside makes
// balance_before always the true predecessor balance.
type TokenService struct {
	db *pgxpool.Pool
}

func NewTokenService(db *pgxpool.Pool) *TokenService {
	return &TokenService{db: db}
}

// Debit appends a negative entry. Fails with ErrInsufficientBalance when
// amount exceeds the current balance; nothing is written in that case.
func (s *TokenService) Debit(
	ctx context.Context,
	q repository.DBTX,
	userID int64,
	amount int,
	transactionType string,
	referenceID *int64,
) (*models.TokenTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidInput
	}
	userRepo := repository.NewUserRepository(q)
	ledgerRepo := repository.NewLedgerRepository(q)

	balance, err := userRepo.GetBalanceForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if amount > balance {
		return nil, ErrInsufficientBalance
	}

	entry, err := ledgerRepo.Append(ctx, repository.AppendEntryInput{
		UserID:          userID,
		Amount:          -amount,
		TransactionType: transactionType,
		ReferenceID:     referenceID,
		BalanceBefore:   balance,
		BalanceAfter:    balance - amount,
	})
	if err != nil {
		return nil, err
	}
	if err := userRepo.SetBalance(ctx, userID, entry.BalanceAfter); err != nil {
		return nil, err
	}
	return entry, nil
}

// Credit appends a positive entry. Refund credits always succeed.
func (s *TokenService) Credit(
	ctx context.Context,
	q repository.DBTX,
	userID int64,
	amount int,
	transactionType string,
	referenceID *int64,
	paymentRef *string,
) (*models.TokenTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidInput
	}
	userRepo := repository.NewUserRepository(q)
	ledgerRepo := repository.NewLedgerRepository(q)

	balance, err := userRepo.GetBalanceForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	entry, err := ledgerRepo.Append(ctx, repository.AppendEntryInput{
		UserID:          userID,
		Amount:          amount,
		TransactionType: transactionType,
		ReferenceID:     referenceID,
		PaymentRef:      paymentRef,
		BalanceBefore:   balance,
		BalanceAfter:    balance + amount,
	})
	if err != nil {
		return nil, err
	}
	if err := userRepo.SetBalance(ctx, userID, entry.BalanceAfter); err != nil {
		return nil, err
	}
	return entry, nil
}

// Purchase credits a token package to a member's balance. Typically driven
// by reception after an offline payment; the payment reference is generated
// when the gateway did not supply one.
func (s *TokenService) Purchase(
	ctx context.Context,
	userID int64,
	packageID int64,
	paymentRef string,
) (*models.TokenTransaction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	pkg, err := repository.NewLedgerRepository(tx).GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrInvalidInput
	}

	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}

	entry, err := s.Credit(ctx, tx, userID, pkg.Tokens, models.TransactionTypePurchase, &pkg.ID, &paymentRef)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

type LedgerPage struct {
	Balance int                       `json:"balance"`
	Entries []models.TokenTransaction `json:"entries"`
	Meta    models.PaginationMeta     `json:"meta"`
}

// History returns the user's balance with a page of entries, newest first.
func (s *TokenService) History(ctx context.Context, userID int64, page, limit int) (*LedgerPage, error) {
	userRepo := repository.NewUserRepository(s.db)
	ledgerRepo := repository.NewLedgerRepository(s.db)

	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	entries, err := ledgerRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := ledgerRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &LedgerPage{
		Balance: user.TokenBalance,
		Entries: entries,
		Meta: models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}
