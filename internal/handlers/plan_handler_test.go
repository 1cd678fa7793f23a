package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubPlanService struct {
	createResult     *models.Plan
	createErr        error
	reviewResult     *models.Plan
	reviewErr        error
	transitionResult *models.Plan
	transitionErr    error
	getResult        *models.Plan
	getErr           error
	listResult       []models.Plan
	listErr          error

	lastCreateInput services.CreatePlanInput
	lastReviewerID  int64
	lastRole        string
	lastPlanID      int64
	lastApprove     bool
	lastComments    string
	lastActorID     int64
}

func (s *stubPlanService) Create(_ context.Context, input services.CreatePlanInput) (*models.Plan, error) {
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubPlanService) Review(_ context.Context, reviewerID int64, role string, planID int64, approve bool, comments string) (*models.Plan, error) {
	s.lastReviewerID = reviewerID
	s.lastRole = role
	s.lastPlanID = planID
	s.lastApprove = approve
	s.lastComments = comments
	return s.reviewResult, s.reviewErr
}

func (s *stubPlanService) Activate(_ context.Context, actorID int64, role string, planID int64) (*models.Plan, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastPlanID = planID
	return s.transitionResult, s.transitionErr
}

func (s *stubPlanService) Deactivate(_ context.Context, actorID int64, role string, planID int64) (*models.Plan, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastPlanID = planID
	return s.transitionResult, s.transitionErr
}

func (s *stubPlanService) Get(_ context.Context, actorID int64, role string, planID int64) (*models.Plan, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastPlanID = planID
	return s.getResult, s.getErr
}

func (s *stubPlanService) ListForUser(_ context.Context, userID int64) ([]models.Plan, error) {
	s.lastActorID = userID
	return s.listResult, s.listErr
}

func newPlanTestApp(handler *PlanHandler, role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/plans", handler.CreatePlan)
	app.Get("/api/v1/plans", handler.ListPlans)
	app.Get("/api/v1/plans/:id", handler.GetPlan)
	app.Post("/api/v1/plans/:id/approve", handler.ApprovePlan)
	app.Post("/api/v1/plans/:id/reject", handler.RejectPlan)
	app.Post("/api/v1/plans/:id/activate", handler.ActivatePlan)
	return app
}

func TestCreatePlanDefaultsMemberToAISource(t *testing.T) {
	service := &stubPlanService{
		createResult: &models.Plan{ID: 5, UserID: 42, Status: models.PlanStatusPendingReview},
	}
	handler := &PlanHandler{service: service}
	app := newPlanTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(`{
		"plan_type": "workout",
		"token_cost": 25
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
	if service.lastCreateInput.UserID != 42 {
		t.Fatalf("expected plan for user 42, got %d", service.lastCreateInput.UserID)
	}
	if service.lastCreateInput.Source != models.PlanSourceAI {
		t.Fatalf("expected ai source, got %q", service.lastCreateInput.Source)
	}
	if service.lastCreateInput.TokenCost != 25 {
		t.Fatalf("expected token cost 25, got %d", service.lastCreateInput.TokenCost)
	}
}

func TestCreatePlanMemberCannotClaimCoachSource(t *testing.T) {
	handler := &PlanHandler{service: &stubPlanService{}}
	app := newPlanTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(`{
		"plan_type": "workout",
		"source": "coach"
	}`))
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

func TestCreatePlanCoachAuthorsForMember(t *testing.T) {
	service := &stubPlanService{
		createResult: &models.Plan{ID: 6, UserID: 42, Status: models.PlanStatusApproved},
	}
	handler := &PlanHandler{service: service}
	app := newPlanTestApp(handler, "coach", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(`{
		"user_id": 42,
		"plan_type": "nutrition"
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
	if service.lastCreateInput.UserID != 42 {
		t.Fatalf("expected plan for user 42, got %d", service.lastCreateInput.UserID)
	}
	if service.lastCreateInput.Source != models.PlanSourceCoach {
		t.Fatalf("expected coach source, got %q", service.lastCreateInput.Source)
	}
}

func TestCreatePlanCoachRequiresUserID(t *testing.T) {
	handler := &PlanHandler{service: &stubPlanService{}}
	app := newPlanTestApp(handler, "coach", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(`{"plan_type": "workout"}`))
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

func TestRejectPlanForwardsComments(t *testing.T) {
	service := &stubPlanService{
		reviewResult: &models.Plan{ID: 5, Status: models.PlanStatusRejected},
	}
	handler := &PlanHandler{service: service}
	app := newPlanTestApp(handler, "coach", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/5/reject", strings.NewReader(`{"comments":"deadlift volume is unsafe"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastApprove {
		t.Fatal("expected a rejection")
	}
	if service.lastPlanID != 5 || service.lastReviewerID != 7 {
		t.Fatalf("unexpected review args plan=%d reviewer=%d", service.lastPlanID, service.lastReviewerID)
	}
	if service.lastComments != "deadlift volume is unsafe" {
		t.Fatalf("unexpected comments %q", service.lastComments)
	}
}

func TestApprovePlanMapsInvalidTransition(t *testing.T) {
	service := &stubPlanService{reviewErr: services.ErrInvalidTransition}
	handler := &PlanHandler{service: service}
	app := newPlanTestApp(handler, "coach", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/5/approve", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestActivatePlanPassesActor(t *testing.T) {
	service := &stubPlanService{
		transitionResult: &models.Plan{ID: 5, UserID: 42, Status: models.PlanStatusActive},
	}
	handler := &PlanHandler{service: service}
	app := newPlanTestApp(handler, "member", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/5/activate", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastPlanID != 5 {
		t.Fatalf("unexpected args actor=%d plan=%d", service.lastActorID, service.lastPlanID)
	}
}
