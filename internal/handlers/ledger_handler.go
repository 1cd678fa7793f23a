package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type tokenApplicationService interface {
	Purchase(ctx context.Context, userID, packageID int64, paymentRef string) (*models.TokenTransaction, error)
	History(ctx context.Context, userID int64, page, limit int) (*services.LedgerPage, error)
}

type LedgerHandler struct {
	service tokenApplicationService
}

func NewLedgerHandler(service *services.TokenService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

type purchaseTokensRequest struct {
	UserID     int64  `json:"user_id"`
	PackageID  int64  `json:"package_id"`
	PaymentRef string `json:"payment_ref"`
}

// GetOwnLedger returns the caller's balance and transaction history.
func (h *LedgerHandler) GetOwnLedger(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return h.ledgerFor(c, userID)
}

// GetUserLedger lets front-desk staff inspect a member's ledger.
func (h *LedgerHandler) GetUserLedger(c *fiber.Ctx) error {
	role := actorRole(c)
	if role != models.RoleReceptionist && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	return h.ledgerFor(c, userID)
}

func (h *LedgerHandler) ledgerFor(c *fiber.Ctx, userID int64) error {
	page, limit := parsePageParams(c)
	ledger, err := h.service.History(c.Context(), userID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"balance":      ledger.Balance,
		"transactions": ledger.Entries,
		"meta":         ledger.Meta,
	})
}

// PurchaseTokens records a front-desk token sale and credits the member.
func (h *LedgerHandler) PurchaseTokens(c *fiber.Ctx) error {
	role := actorRole(c)
	if role != models.RoleReceptionist && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req purchaseTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID <= 0 || req.PackageID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and package_id are required"})
	}

	entry, err := h.service.Purchase(c.Context(), req.UserID, req.PackageID, strings.TrimSpace(req.PaymentRef))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction": entry})
}
