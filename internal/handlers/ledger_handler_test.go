package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubTokenService struct {
	purchaseResult *models.TokenTransaction
	purchaseErr    error
	historyResult  *services.LedgerPage
	historyErr     error

	lastUserID     int64
	lastPackageID  int64
	lastPaymentRef string
	lastPage       int
	lastLimit      int
}

func (s *stubTokenService) Purchase(_ context.Context, userID, packageID int64, paymentRef string) (*models.TokenTransaction, error) {
	s.lastUserID = userID
	s.lastPackageID = packageID
	s.lastPaymentRef = paymentRef
	return s.purchaseResult, s.purchaseErr
}

func (s *stubTokenService) History(_ context.Context, userID int64, page, limit int) (*services.LedgerPage, error) {
	s.lastUserID = userID
	s.lastPage = page
	s.lastLimit = limit
	return s.historyResult, s.historyErr
}

func newLedgerTestApp(handler *LedgerHandler, role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/v1/ledger", handler.GetOwnLedger)
	app.Get("/api/v1/ledger/:userId", handler.GetUserLedger)
	app.Post("/api/v1/tokens/purchase", handler.PurchaseTokens)
	return app
}

func TestGetOwnLedgerReturnsBalanceAndEntries(t *testing.T) {
	service := &stubTokenService{
		historyResult: &services.LedgerPage{
			Balance: 120,
			Entries: []models.TokenTransaction{{ID: 1, UserID: 42, Amount: -10}},
			Meta:    models.PaginationMeta{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
		},
	}
	handler := &LedgerHandler{service: service}
	app := newLedgerTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", service.lastUserID)
	}

	var body struct {
		Balance int `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Balance != 120 {
		t.Fatalf("expected balance 120, got %d", body.Balance)
	}
}

func TestGetOwnLedgerClampsPageParams(t *testing.T) {
	service := &stubTokenService{historyResult: &services.LedgerPage{}}
	handler := &LedgerHandler{service: service}
	app := newLedgerTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger?page=0&limit=500", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastPage != 1 {
		t.Fatalf("expected page clamped to 1, got %d", service.lastPage)
	}
	if service.lastLimit != maxPageLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageLimit, service.lastLimit)
	}
}

func TestGetUserLedgerForbiddenForMembers(t *testing.T) {
	handler := &LedgerHandler{service: &stubTokenService{}}
	app := newLedgerTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/43", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetUserLedgerAllowsReceptionist(t *testing.T) {
	service := &stubTokenService{historyResult: &services.LedgerPage{Balance: 30}}
	handler := &LedgerHandler{service: service}
	app := newLedgerTestApp(handler, "receptionist", "99")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected lookup for user 42, got %d", service.lastUserID)
	}
}

func TestPurchaseTokensForbiddenForMembers(t *testing.T) {
	handler := &LedgerHandler{service: &stubTokenService{}}
	app := newLedgerTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/purchase", strings.NewReader(`{"user_id":42,"package_id":1}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestPurchaseTokensRecordsSale(t *testing.T) {
	service := &stubTokenService{
		purchaseResult: &models.TokenTransaction{ID: 9, UserID: 42, Amount: 100},
	}
	handler := &LedgerHandler{service: service}
	app := newLedgerTestApp(handler, "receptionist", "99")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/purchase", strings.NewReader(`{
		"user_id": 42,
		"package_id": 3,
		"payment_ref": "pos-20260315-0012"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 || service.lastPackageID != 3 {
		t.Fatalf("unexpected purchase args user=%d package=%d", service.lastUserID, service.lastPackageID)
	}
	if service.lastPaymentRef != "pos-20260315-0012" {
		t.Fatalf("unexpected payment ref %q", service.lastPaymentRef)
	}
}

func TestPurchaseTokensValidatesBody(t *testing.T) {
	handler := &LedgerHandler{service: &stubTokenService{}}
	app := newLedgerTestApp(handler, "admin", "1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/purchase", strings.NewReader(`{"package_id":3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
