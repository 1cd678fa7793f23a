package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sweepBatchSize = 200

// SweepService finalizes bookings whose scheduled end has passed: a
// checked-in booking completes, one never attended becomes a no-show. It
// also keeps the slot grid warm a day ahead. Failures on individual
// bookings are logged and skipped so one bad row never stalls the sweep.
type SweepService struct {
	db       *pgxpool.Pool
	slots    *SlotService
	interval time.Duration

	lastWarmDate string
}

func NewSweepService(db *pgxpool.Pool, slots *SlotService, interval time.Duration) *SweepService {
	return &SweepService{db: db, slots: slots, interval: interval}
}

// Run loops until the context is cancelled. Start it with `go`.
func (s *SweepService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.warmGrid(ctx)
			if err := s.SweepOnce(ctx, time.Now().UTC()); err != nil {
				log.Printf("booking sweep: %v", err)
			}
		}
	}
}

func (s *SweepService) warmGrid(ctx context.Context) {
	today := time.Now().UTC().Format("2006-01-02")
	if s.lastWarmDate == today {
		return
	}
	for _, date := range []time.Time{time.Now().UTC(), time.Now().UTC().Add(24 * time.Hour)} {
		if err := s.slots.GenerateAll(ctx, date); err != nil {
			log.Printf("slot grid warmup: %v", err)
			return
		}
	}
	s.lastWarmDate = today
}

// SweepOnce applies terminal transitions to every expired booking it can
// see. Each transition is an optimistic conditional update, so a
// cancellation racing the sweep simply wins and the sweep moves on.
func (s *SweepService) SweepOnce(ctx context.Context, asOf time.Time) error {
	bookingRepo := repository.NewBookingRepository(s.db)

	expired, err := bookingRepo.ListExpired(ctx, asOf, sweepBatchSize)
	if err != nil {
		return err
	}

	for _, booking := range expired {
		// Cascade children are settled together with their parent.
		if booking.ParentBookingID != nil {
			continue
		}
		if err := s.finalize(ctx, bookingRepo, booking); err != nil {
			log.Printf("sweep booking %d: %v", booking.ID, err)
		}
	}
	return nil
}

func (s *SweepService) finalize(
	ctx context.Context,
	bookingRepo *repository.BookingRepository,
	booking models.Booking,
) error {
	next := models.BookingStatusNoShow
	if booking.CheckInAt != nil {
		next = models.BookingStatusCompleted
	}

	if _, err := bookingRepo.UpdateStatusIfCurrent(ctx, booking.ID, booking.Status, next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil // raced with a cancellation or another sweep
		}
		return err
	}

	if booking.BookingType != models.BookingTypeCoachSession {
		return nil
	}

	children, err := bookingRepo.ListChildren(ctx, booking.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.Status != models.BookingStatusPending && child.Status != models.BookingStatusConfirmed {
			continue
		}
		if _, err := bookingRepo.UpdateStatusIfCurrent(ctx, child.ID, child.Status, next); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("sweep cascade child %d: %v", child.ID, err)
		}
	}
	return nil
}
