package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YoussefEssam74/intellifit-backend/internal/models"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingService drives the reservation lifecycle. Creation folds slot
// reservation and the token debit into one transaction so no caller can
// observe a half-applied booking; cancellation releases every held window
// and refunds in the same unit of work.
type BookingService struct {
	db           *pgxpool.Pool
	tokens       *TokenService
	notifier     Notifier
	openHour     int
	closeHour    int
	checkInGrace time.Duration
}

func NewBookingService(
	db *pgxpool.Pool,
	tokens *TokenService,
	notifier Notifier,
	openHour int,
	closeHour int,
	checkInGrace time.Duration,
) *BookingService {
	return &BookingService{
		db:           db,
		tokens:       tokens,
		notifier:     notifier,
		openHour:     openHour,
		closeHour:    closeHour,
		checkInGrace: checkInGrace,
	}
}

type CreateEquipmentBookingInput struct {
	EquipmentID int64
	StartTime   time.Time
	EndTime     time.Time
}

type CreateCoachSessionBookingInput struct {
	CoachID   int64
	StartTime time.Time
	EndTime   time.Time
	PlanID    *int64
}

func (s *BookingService) CreateEquipmentBooking(
	ctx context.Context,
	userID int64,
	input CreateEquipmentBookingInput,
) (*models.BookingDetail, error) {
	if input.EquipmentID <= 0 {
		return nil, ErrInvalidInput
	}
	if input.StartTime.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, fmt.Errorf("%w: cannot book in the past", ErrInvalidInput)
	}
	windows, err := windowsForRange(input.StartTime, input.EndTime, s.openHour, s.closeHour)
	if err != nil {
		return nil, err
	}

	equipment, err := repository.NewEquipmentRepository(s.db).GetByID(ctx, input.EquipmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	if !equipment.IsActive {
		return nil, ErrEquipmentNotFound
	}

	cost := equipment.TokenRatePerHour * len(windows)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	booking, err := s.reserveEquipment(ctx, tx, userID, equipment.ID, input.StartTime.UTC(), input.EndTime.UTC(), windows, cost, nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.BookingDetail{Booking: *booking}, nil
}

// reserveEquipment inserts a pending equipment booking, claims every
// covered window with a conditional update, and debits the cost. Runs
// inside the caller's transaction: any failed window aborts the whole
// reservation, so slots claimed earlier in the loop and the booking row
// roll back together and tokens are never debited on a conflict.
func (s *BookingService) reserveEquipment(
	ctx context.Context,
	tx pgx.Tx,
	userID int64,
	equipmentID int64,
	start time.Time,
	end time.Time,
	windows []slotWindow,
	cost int,
	parentBookingID *int64,
) (*models.Booking, error) {
	slotRepo := repository.NewSlotRepository(tx)
	bookingRepo := repository.NewBookingRepository(tx)

	if err := slotRepo.GenerateDay(ctx, equipmentID, windows[0].Date, s.openHour, s.closeHour); err != nil {
		return nil, err
	}

	booking, err := bookingRepo.Create(ctx, repository.CreateBookingInput{
		UserID:          userID,
		EquipmentID:     &equipmentID,
		BookingType:     models.BookingTypeEquipment,
		StartTime:       start,
		EndTime:         end,
		TokenCost:       cost,
		ParentBookingID: parentBookingID,
	})
	if err != nil {
		return nil, err
	}

	coachOwned := parentBookingID != nil
	for _, window := range windows {
		reserved, err := slotRepo.Reserve(ctx, equipmentID, window.Date, window.StartTime, userID, booking.ID, coachOwned)
		if err != nil {
			return nil, err
		}
		if !reserved {
			exists, err := slotRepo.Exists(ctx, equipmentID, window.Date, window.StartTime)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, ErrSlotNotFound
			}
			return nil, ErrSlotConflict
		}
	}

	if cost > 0 {
		if _, err := s.tokens.Debit(ctx, tx, userID, cost, models.TransactionTypeDeduction, &booking.ID); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

func (s *BookingService) CreateCoachSessionBooking(
	ctx context.Context,
	userID int64,
	input CreateCoachSessionBookingInput,
) (*models.BookingDetail, error) {
	if input.CoachID <= 0 || input.CoachID == userID {
		return nil, ErrInvalidInput
	}
	if input.StartTime.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, fmt.Errorf("%w: cannot book in the past", ErrInvalidInput)
	}
	windows, err := windowsForRange(input.StartTime, input.EndTime, s.openHour, s.closeHour)
	if err != nil {
		return nil, err
	}

	coach, err := repository.NewUserRepository(s.db).GetByID(ctx, input.CoachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if coach.Role != models.RoleCoach || coach.HourlyRateTokens == nil || *coach.HourlyRateTokens <= 0 {
		return nil, ErrCoachNotFound
	}

	cost := *coach.HourlyRateTokens * len(windows)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bookingRepo := repository.NewBookingRepository(tx)

	// The coach calendar has no materialized grid; the advisory lock
	// serializes all bookings for this coach so the overlap check and the
	// insert behave as one atomic claim.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.CoachID); err != nil {
		return nil, err
	}

	hasConflict, err := bookingRepo.HasCoachConflict(ctx, input.CoachID, input.StartTime.UTC(), input.EndTime.UTC())
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrSlotConflict
	}

	booking, err := bookingRepo.Create(ctx, repository.CreateBookingInput{
		UserID:      userID,
		CoachID:     &input.CoachID,
		BookingType: models.BookingTypeCoachSession,
		StartTime:   input.StartTime.UTC(),
		EndTime:     input.EndTime.UTC(),
		TokenCost:   cost,
	})
	if err != nil {
		return nil, err
	}

	if cost > 0 {
		if _, err := s.tokens.Debit(ctx, tx, userID, cost, models.TransactionTypeDeduction, &booking.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail := &models.BookingDetail{Booking: *booking}
	if input.PlanID != nil {
		detail.Children, detail.Links = s.cascadeEquipment(ctx, booking, *input.PlanID, windows)
	}
	return detail, nil
}

// cascadeEquipment auto-reserves the equipment the session's exercise plan
// requires, one child booking per distinct equipment item. A child that
// cannot be reserved does not fail the committed parent; the shortfall is
// recorded on the link row and the coach is notified to resolve it.
func (s *BookingService) cascadeEquipment(
	ctx context.Context,
	parent *models.Booking,
	planID int64,
	windows []slotWindow,
) ([]models.Booking, []models.CoachSessionEquipment) {
	exercises, err := repository.NewPlanRepository(s.db).ListExercises(ctx, planID)
	if err != nil {
		s.notifier.CascadeShortfall(ctx, *parent.CoachID, parent.ID, 0, fmt.Sprintf("load exercise plan %d: %v", planID, err))
		return nil, nil
	}

	children := make([]models.Booking, 0)
	links := make([]models.CoachSessionEquipment, 0)
	seen := make(map[int64]bool)

	for _, exercise := range exercises {
		if exercise.EquipmentID == nil || seen[*exercise.EquipmentID] {
			continue
		}
		seen[*exercise.EquipmentID] = true

		exerciseID := exercise.ID
		child, link, err := s.reserveCascadeChild(ctx, parent, *exercise.EquipmentID, &exerciseID, windows)
		if err != nil {
			note := err.Error()
			shortfall, linkErr := repository.NewLinkRepository(s.db).Create(ctx, repository.CreateLinkInput{
				CoachBookingID: parent.ID,
				EquipmentID:    *exercise.EquipmentID,
				PlanExerciseID: &exerciseID,
				Notes:          &note,
			})
			if linkErr == nil {
				links = append(links, *shortfall)
			}
			s.notifier.CascadeShortfall(ctx, *parent.CoachID, parent.ID, *exercise.EquipmentID, note)
			continue
		}
		children = append(children, *child)
		links = append(links, *link)
	}
	return children, links
}

func (s *BookingService) reserveCascadeChild(
	ctx context.Context,
	parent *models.Booking,
	equipmentID int64,
	planExerciseID *int64,
	windows []slotWindow,
) (*models.Booking, *models.CoachSessionEquipment, error) {
	equipment, err := repository.NewEquipmentRepository(s.db).GetByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrEquipmentNotFound
		}
		return nil, nil, err
	}
	if !equipment.IsActive {
		return nil, nil, ErrEquipmentNotFound
	}

	cost := equipment.TokenRatePerHour * len(windows)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	parentID := parent.ID
	child, err := s.reserveEquipment(ctx, tx, parent.UserID, equipmentID, parent.StartTime, parent.EndTime, windows, cost, &parentID)
	if err != nil {
		return nil, nil, err
	}

	link, err := repository.NewLinkRepository(tx).Create(ctx, repository.CreateLinkInput{
		CoachBookingID:     parent.ID,
		EquipmentBookingID: &child.ID,
		EquipmentID:        equipmentID,
		PlanExerciseID:     planExerciseID,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return child, link, nil
}

// Cancel releases every window the booking holds, refunds its cost, and
// does the same for every cascade child. Only pending and confirmed
// bookings can be cancelled, and cascade children never directly.
func (s *BookingService) Cancel(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
	reason string,
) (*models.BookingDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bookingRepo := repository.NewBookingRepository(tx)
	slotRepo := repository.NewSlotRepository(tx)

	booking, err := bookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}
	if booking.ParentBookingID != nil {
		return nil, ErrCascadeChildImmutable
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, ErrInvalidTransition
	}

	children, err := bookingRepo.ListChildren(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	cancelledChildren := make([]models.Booking, 0, len(children))
	for _, child := range children {
		if child.Status != models.BookingStatusPending && child.Status != models.BookingStatusConfirmed {
			cancelledChildren = append(cancelledChildren, child)
			continue
		}
		if _, err := slotRepo.ReleaseByBooking(ctx, child.ID); err != nil {
			return nil, err
		}
		updated, err := bookingRepo.CancelIfCurrent(ctx, child.ID, child.Status, reason)
		if err != nil {
			return nil, err
		}
		if child.TokenCost > 0 {
			childID := child.ID
			if _, err := s.tokens.Credit(ctx, tx, child.UserID, child.TokenCost, models.TransactionTypeRefund, &childID, nil); err != nil {
				return nil, err
			}
		}
		cancelledChildren = append(cancelledChildren, *updated)
	}

	if booking.BookingType == models.BookingTypeEquipment {
		if _, err := slotRepo.ReleaseByBooking(ctx, booking.ID); err != nil {
			return nil, err
		}
	}

	cancelled, err := bookingRepo.CancelIfCurrent(ctx, booking.ID, booking.Status, reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	if booking.TokenCost > 0 {
		refID := booking.ID
		if _, err := s.tokens.Credit(ctx, tx, booking.UserID, booking.TokenCost, models.TransactionTypeRefund, &refID, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.BookingCancelled(ctx, cancelled.UserID, cancelled.ID, reason)
	return &models.BookingDetail{Booking: *cancelled, Children: cancelledChildren}, nil
}

// Confirm moves a pending booking (and any pending cascade children) to
// confirmed. Coaches confirm their own sessions; reception can confirm any.
func (s *BookingService) Confirm(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.BookingDetail, error) {
	booking, err := repository.NewBookingRepository(s.db).GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleMember {
		return nil, ErrForbidden
	}
	if role == models.RoleCoach && (booking.CoachID == nil || *booking.CoachID != actorID) {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bookingRepo := repository.NewBookingRepository(tx)
	confirmed, err := bookingRepo.UpdateStatusIfCurrent(ctx, bookingID, models.BookingStatusPending, models.BookingStatusConfirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	children, err := bookingRepo.ListChildren(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Status != models.BookingStatusPending {
			continue
		}
		if _, err := bookingRepo.UpdateStatusIfCurrent(ctx, child.ID, models.BookingStatusPending, models.BookingStatusConfirmed); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, confirmed.UserID, models.RoleMember, confirmed.ID)
}

func (s *BookingService) CheckIn(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error) {
	return s.stamp(ctx, actorID, role, bookingID, true)
}

func (s *BookingService) CheckOut(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error) {
	return s.stamp(ctx, actorID, role, bookingID, false)
}

func (s *BookingService) stamp(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
	checkIn bool,
) (*models.Booking, error) {
	bookingRepo := repository.NewBookingRepository(s.db)
	booking, err := bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleMember && booking.UserID != actorID {
		return nil, ErrForbidden
	}
	if role == models.RoleCoach {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	if now.Before(booking.StartTime.Add(-s.checkInGrace)) || now.After(booking.EndTime.Add(s.checkInGrace)) {
		return nil, ErrInvalidTransition
	}

	var updated *models.Booking
	if checkIn {
		updated, err = bookingRepo.SetCheckIn(ctx, bookingID, now)
	} else {
		updated, err = bookingRepo.SetCheckOut(ctx, bookingID, now)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) Get(ctx context.Context, actorID int64, role string, bookingID int64) (*models.BookingDetail, error) {
	bookingRepo := repository.NewBookingRepository(s.db)
	booking, err := bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}

	detail := &models.BookingDetail{Booking: *booking}
	if booking.BookingType == models.BookingTypeCoachSession {
		detail.Children, err = bookingRepo.ListChildren(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		detail.Links, err = repository.NewLinkRepository(s.db).ListByCoachBooking(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (s *BookingService) List(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.BookingListFilter,
) ([]models.Booking, error) {
	return repository.NewBookingRepository(s.db).List(ctx, repository.BookingListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
}

// ApproveLink records the coach's sign-off on an auto-reserved equipment row.
func (s *BookingService) ApproveLink(ctx context.Context, actorID int64, role string, linkID int64) (*models.CoachSessionEquipment, error) {
	if role != models.RoleCoach && role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return repository.NewLinkRepository(s.db).Approve(ctx, linkID)
}

func canAccessBooking(role string, actorID int64, booking *models.Booking) bool {
	switch role {
	case models.RoleMember:
		return booking.UserID == actorID
	case models.RoleCoach:
		return booking.CoachID != nil && *booking.CoachID == actorID
	case models.RoleReceptionist, models.RoleAdmin:
		return true
	default:
		return false
	}
}
