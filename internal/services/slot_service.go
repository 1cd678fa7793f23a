package services

import (
	"context"
	"fmt"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Window width is fixed: the grid materializes hourly rows, so every
// booking must cover whole hours.
const slotWindowMinutes = 60

// slotWindow is one discretized bucket of a day, with times of day rendered
// the way the TIME columns store them.
type slotWindow struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

// windowsForRange discretizes [start, end) into hourly windows. The range
// must be in the future is the caller's concern; here we enforce alignment:
// whole hours, a single calendar date, and gym opening hours.
func windowsForRange(start, end time.Time, openHour, closeHour int) ([]slotWindow, error) {
	start = start.UTC()
	end = end.UTC()

	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}
	if start.Minute() != 0 || start.Second() != 0 || end.Minute() != 0 || end.Second() != 0 {
		return nil, fmt.Errorf("%w: times must align to %d-minute slot boundaries", ErrInvalidInput, slotWindowMinutes)
	}
	startDate := start.Truncate(24 * time.Hour)
	endDate := end.Add(-time.Second).Truncate(24 * time.Hour)
	if !startDate.Equal(endDate) {
		return nil, fmt.Errorf("%w: booking must start and end on the same day", ErrInvalidInput)
	}
	if start.Hour() < openHour || end.Hour() > closeHour || (end.Hour() == 0 && closeHour != 24) {
		return nil, fmt.Errorf("%w: outside opening hours %02d:00-%02d:00", ErrInvalidInput, openHour, closeHour)
	}

	windows := make([]slotWindow, 0, end.Hour()-start.Hour())
	for h := start.Hour(); h < end.Hour(); h++ {
		windows = append(windows, slotWindow{
			Date:      startDate,
			StartTime: fmt.Sprintf("%02d:00:00", h),
			EndTime:   fmt.Sprintf("%02d:00:00", h+1),
		})
	}
	return windows, nil
}

type SlotService struct {
	db            *pgxpool.Pool
	slotRepo      *repository.SlotRepository
	equipmentRepo *repository.EquipmentRepository
	openHour      int
	closeHour     int
}

func NewSlotService(
	db *pgxpool.Pool,
	slotRepo *repository.SlotRepository,
	equipmentRepo *repository.EquipmentRepository,
	openHour int,
	closeHour int,
) *SlotService {
	return &SlotService{
		db:            db,
		slotRepo:      slotRepo,
		equipmentRepo: equipmentRepo,
		openHour:      openHour,
		closeHour:     closeHour,
	}
}

// EnsureDay generates the equipment's grid for the date if it does not
// exist yet. Safe to call from every booking and availability path.
func (s *SlotService) EnsureDay(ctx context.Context, equipmentID int64, date time.Time) error {
	return s.slotRepo.GenerateDay(ctx, equipmentID, date, s.openHour, s.closeHour)
}

// GenerateAll warms the grid for every active equipment on the given date.
// The background runner calls this daily so availability reads never pay
// the generation cost.
func (s *SlotService) GenerateAll(ctx context.Context, date time.Time) error {
	items, err := s.equipmentRepo.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, eq := range items {
		if err := s.slotRepo.GenerateDay(ctx, eq.ID, date, s.openHour, s.closeHour); err != nil {
			return fmt.Errorf("generate slots for equipment %d: %w", eq.ID, err)
		}
	}
	return nil
}

// Availability lists the day's windows with their booked state.
func (s *SlotService) Availability(
	ctx context.Context,
	equipmentID int64,
	date time.Time,
) ([]models.AvailabilityWindow, error) {
	eq, err := s.equipmentRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, ErrEquipmentNotFound
	}
	if !eq.IsActive {
		return nil, ErrEquipmentNotFound
	}

	if err := s.EnsureDay(ctx, equipmentID, date); err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListDay(ctx, equipmentID, date)
	if err != nil {
		return nil, err
	}

	windows := make([]models.AvailabilityWindow, 0, len(slots))
	for _, slot := range slots {
		windows = append(windows, models.AvailabilityWindow{
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Free:      !slot.IsBooked,
		})
	}
	return windows, nil
}
