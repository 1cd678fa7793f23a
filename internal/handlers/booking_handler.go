package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type bookingApplicationService interface {
	CreateEquipmentBooking(ctx context.Context, userID int64, input services.CreateEquipmentBookingInput) (*models.BookingDetail, error)
	CreateCoachSessionBooking(ctx context.Context, userID int64, input services.CreateCoachSessionBookingInput) (*models.BookingDetail, error)
	Cancel(ctx context.Context, actorID int64, role string, bookingID int64, reason string) (*models.BookingDetail, error)
	Confirm(ctx context.Context, actorID int64, role string, bookingID int64) (*models.BookingDetail, error)
	CheckIn(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error)
	CheckOut(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error)
	Get(ctx context.Context, actorID int64, role string, bookingID int64) (*models.BookingDetail, error)
	List(ctx context.Context, actorID int64, role string, filter repository.BookingListFilter) ([]models.Booking, error)
	ApproveLink(ctx context.Context, actorID int64, role string, linkID int64) (*models.CoachSessionEquipment, error)
}

type availabilityService interface {
	Availability(ctx context.Context, equipmentID int64, date time.Time) ([]models.AvailabilityWindow, error)
}

type BookingHandler struct {
	service      bookingApplicationService
	availability availabilityService
}

func NewBookingHandler(service *services.BookingService, slots *services.SlotService) *BookingHandler {
	return &BookingHandler{service: service, availability: slots}
}

type createBookingRequest struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	PlanID     *int64 `json:"plan_id"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleMember {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_time must be a valid RFC3339 timestamp"})
	}
	endTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndTime))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be a valid RFC3339 timestamp"})
	}

	var detail *models.BookingDetail
	switch strings.TrimSpace(req.TargetType) {
	case "equipment":
		detail, err = h.service.CreateEquipmentBooking(c.Context(), userID, services.CreateEquipmentBookingInput{
			EquipmentID: req.TargetID,
			StartTime:   startTime,
			EndTime:     endTime,
		})
	case "coach":
		detail, err = h.service.CreateCoachSessionBooking(c.Context(), userID, services.CreateCoachSessionBookingInput{
			CoachID:   req.TargetID,
			StartTime: startTime,
			EndTime:   endTime,
			PlanID:    req.PlanID,
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_type must be equipment or coach"})
	}
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	bookings, err := h.service.List(c.Context(), userID, actorRole(c), repository.BookingListFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: timeframe,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	detail, err := h.service.Get(c.Context(), userID, actorRole(c), bookingID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req cancelBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required"})
	}

	detail, err := h.service.Cancel(c.Context(), userID, actorRole(c), bookingID, reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) ConfirmBooking(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	detail, err := h.service.Confirm(c.Context(), userID, actorRole(c), bookingID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) CheckIn(c *fiber.Ctx) error {
	return h.stamp(c, true)
}

func (h *BookingHandler) CheckOut(c *fiber.Ctx) error {
	return h.stamp(c, false)
}

func (h *BookingHandler) stamp(c *fiber.Ctx, checkIn bool) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var booking *models.Booking
	if checkIn {
		booking, err = h.service.CheckIn(c.Context(), userID, actorRole(c), bookingID)
	} else {
		booking, err = h.service.CheckOut(c.Context(), userID, actorRole(c), bookingID)
	}
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) GetAvailability(c *fiber.Ctx) error {
	equipmentID, err := strconv.ParseInt(strings.TrimSpace(c.Query("equipment_id")), 10, 64)
	if err != nil || equipmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "equipment_id is required"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("date")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	windows, err := h.availability.Availability(c.Context(), equipmentID, date)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"equipment_id": equipmentID, "date": date.Format("2006-01-02"), "slots": windows})
}

func (h *BookingHandler) ApproveEquipmentLink(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	linkID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid link id"})
	}

	link, err := h.service.ApproveLink(c.Context(), userID, actorRole(c), linkID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"link": link})
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
