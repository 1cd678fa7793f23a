package handlers

import (
	"context"
	"strings"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type planApplicationService interface {
	Create(ctx context.Context, input services.CreatePlanInput) (*models.Plan, error)
	Review(ctx context.Context, reviewerID int64, role string, planID int64, approve bool, comments string) (*models.Plan, error)
	Activate(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error)
	Deactivate(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error)
	Get(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Plan, error)
}

type PlanHandler struct {
	service planApplicationService
}

func NewPlanHandler(service *services.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

type createPlanRequest struct {
	UserID    int64  `json:"user_id"`
	PlanType  string `json:"plan_type"`
	Source    string `json:"source"`
	TokenCost int    `json:"token_cost"`
}

type reviewPlanRequest struct {
	Comments string `json:"comments"`
}

// CreatePlan registers a new plan. Members request plans for themselves;
// coaches may author plans on behalf of a member.
func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role := actorRole(c)

	var req createPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.CreatePlanInput{
		PlanType:  strings.TrimSpace(req.PlanType),
		Source:    strings.TrimSpace(req.Source),
		TokenCost: req.TokenCost,
	}

	switch role {
	case models.RoleMember:
		input.UserID = actorID
		if input.Source == "" {
			input.Source = models.PlanSourceAI
		}
		if input.Source == models.PlanSourceCoach {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
	case models.RoleCoach, models.RoleAdmin:
		if req.UserID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}
		input.UserID = req.UserID
		if input.Source == "" {
			input.Source = models.PlanSourceCoach
		}
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	plan, err := h.service.Create(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	plans, err := h.service.ListForUser(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	planID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}
	plan, err := h.service.Get(c.Context(), userID, actorRole(c), planID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) ApprovePlan(c *fiber.Ctx) error {
	return h.review(c, true)
}

func (h *PlanHandler) RejectPlan(c *fiber.Ctx) error {
	return h.review(c, false)
}

func (h *PlanHandler) review(c *fiber.Ctx, approve bool) error {
	reviewerID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	planID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	var req reviewPlanRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	plan, err := h.service.Review(c.Context(), reviewerID, actorRole(c), planID, approve, req.Comments)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) ActivatePlan(c *fiber.Ctx) error {
	return h.transition(c, h.service.Activate)
}

func (h *PlanHandler) DeactivatePlan(c *fiber.Ctx) error {
	return h.transition(c, h.service.Deactivate)
}

func (h *PlanHandler) transition(
	c *fiber.Ctx,
	fn func(ctx context.Context, actorID int64, role string, planID int64) (*models.Plan, error),
) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	planID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}
	plan, err := fn(c.Context(), actorID, actorRole(c), planID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}
