package routes

import (
	"github.com/YoussefEssam74/intellifit-backend/internal/config"
	"github.com/YoussefEssam74/intellifit-backend/internal/handlers"
	"github.com/YoussefEssam74/intellifit-backend/internal/middleware"
	"github.com/YoussefEssam74/intellifit-backend/internal/repository"
	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services and handlers onto the app.
// It also returns the sweep runner so main can start it alongside the
// HTTP server.
func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) *services.SweepService {
	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)

	notifier := services.NewLogNotifier()
	tokenService := services.NewTokenService(db)
	slotService := services.NewSlotService(db, slotRepo, equipmentRepo, cfg.GymOpenHour, cfg.GymCloseHour)
	bookingService := services.NewBookingService(db, tokenService, notifier, cfg.GymOpenHour, cfg.GymCloseHour, cfg.CheckInGrace)
	planService := services.NewPlanService(db, tokenService, notifier)
	sweepService := services.NewSweepService(db, slotService, cfg.SweepInterval)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	bookingHandler := handlers.NewBookingHandler(bookingService, slotService)
	ledgerHandler := handlers.NewLedgerHandler(tokenService)
	planHandler := handlers.NewPlanHandler(planService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	authProtected.Get("/availability", bookingHandler.GetAvailability)

	bookings := authProtected.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/confirm", bookingHandler.ConfirmBooking)
	bookings.Post("/:id/cancel", bookingHandler.CancelBooking)
	bookings.Post("/:id/checkin", bookingHandler.CheckIn)
	bookings.Post("/:id/checkout", bookingHandler.CheckOut)

	links := authProtected.Group("/session-equipment")
	links.Post("/:id/approve", bookingHandler.ApproveEquipmentLink)

	authProtected.Get("/ledger", ledgerHandler.GetOwnLedger)
	authProtected.Get("/ledger/:userId", ledgerHandler.GetUserLedger)

	tokens := authProtected.Group("/tokens")
	tokens.Post("/purchase", ledgerHandler.PurchaseTokens)

	plans := authProtected.Group("/plans")
	plans.Post("", planHandler.CreatePlan)
	plans.Get("", planHandler.ListPlans)
	plans.Get("/:id", planHandler.GetPlan)
	plans.Post("/:id/approve", planHandler.ApprovePlan)
	plans.Post("/:id/reject", planHandler.RejectPlan)
	plans.Post("/:id/activate", planHandler.ActivatePlan)
	plans.Post("/:id/deactivate", planHandler.DeactivatePlan)

	return sweepService
}
