package models

import "time"

const (
	TransactionTypePurchase  = "purchase"
	TransactionTypeDeduction = "deduction"
	TransactionTypeRefund    = "refund"
	TransactionTypeBonus     = "bonus"
)

// TokenTransaction is one immutable ledger entry. BalanceAfter is always
// BalanceBefore + Amount; the current balance of a user is the BalanceAfter
// of their most recent entry, mirrored on users.token_balance.
type TokenTransaction struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Amount          int       `json:"amount"`
	TransactionType string    `json:"transaction_type"`
	ReferenceID     *int64    `json:"reference_id,omitempty"`
	PaymentRef      *string   `json:"payment_ref,omitempty"`
	BalanceBefore   int       `json:"balance_before"`
	BalanceAfter    int       `json:"balance_after"`
	CreatedAt       time.Time `json:"created_at"`
}

type TokenPackage struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Tokens     int       `json:"tokens"`
	PriceCents int       `json:"price_cents"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
