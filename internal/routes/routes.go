package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	"github.com/CityCareHQ/hospital-scheduler/internal/cache"
	"github.com/CityCareHQ/hospital-scheduler/internal/config"
	"github.com/CityCareHQ/hospital-scheduler/internal/handlers"
	infraRepo "github.com/CityCareHQ/hospital-scheduler/internal/infra/repository"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	ucBooking "github.com/CityCareHQ/hospital-scheduler/internal/usecase/booking"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	cc *cache.Cache,
	sweepUC *ucBooking.SweepLocks,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// USE CASES (BOOKING PROTOCOL)
	// ======================================================
	listSlotsUC := ucBooking.NewListOpenSlots(bookingRepo)
	lockSlotUC := ucBooking.NewLockSlot(bookingRepo, auditDispatcher)
	confirmUC := ucBooking.NewConfirmBooking(bookingRepo, auditDispatcher)
	cancelUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	prescriptionHandler := handlers.NewPrescriptionHandler(db, auditDispatcher)
	adminHandler := handlers.NewAdminHandler(db, auditDispatcher)

	bookingHandler := handlers.NewBookingHandler(
		db,
		cc,
		listSlotsUC,
		lockSlotUC,
		confirmUC,
		cancelUC,
		sweepUC,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/doctors", doctorHandler.List)
		api.GET("/doctors/:id", doctorHandler.Get)
		api.GET("/doctors/:id/slots", bookingHandler.Slots)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/dashboard", authHandler.Dashboard)

			// ------------------------------
			// BOOKING PROTOCOL
			// ------------------------------
			secured.POST("/slots/lock",
				middleware.RequireRole(models.RolePatient),
				bookingHandler.Lock)
			secured.POST("/appointments/confirm",
				middleware.RequireRole(models.RolePatient),
				bookingHandler.Confirm)
			secured.POST("/appointments/:id/cancel",
				middleware.RequireRole(models.RolePatient, models.RoleAdmin),
				bookingHandler.Cancel)
			secured.GET("/appointments/my",
				middleware.RequireRole(models.RolePatient),
				bookingHandler.MyAppointments)

			// ------------------------------
			// DOCTOR
			// ------------------------------
			doctor := secured.Group("/doctor")
			doctor.Use(middleware.RequireRole(models.RoleDoctor))
			{
				doctor.GET("/appointments", doctorHandler.Appointments)
				doctor.GET("/availability", doctorHandler.GetAvailability)
				doctor.POST("/availability", doctorHandler.UpdateAvailability)
			}

			// ------------------------------
			// PATIENT
			// ------------------------------
			patient := secured.Group("/patient")
			patient.Use(middleware.RequireRole(models.RolePatient))
			{
				patient.GET("/profile", patientHandler.GetProfile)
				patient.PUT("/profile", patientHandler.UpdateProfile)
			}

			secured.GET("/prescriptions/my",
				middleware.RequireRole(models.RolePatient),
				prescriptionHandler.My)
			secured.POST("/prescriptions",
				middleware.RequireRole(models.RoleDoctor),
				prescriptionHandler.Create)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/doctors", adminHandler.AddDoctor)
				admin.GET("/appointments", adminHandler.Appointments)
				admin.POST("/slots/sweep", bookingHandler.Sweep)
				admin.GET("/audit-logs", adminHandler.AuditLogs)
			}
		}
	}
}
